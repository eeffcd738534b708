package sector

import (
	"context"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
)

type fakeSectorRepo struct {
	sectors map[string]sector.Sector
	nextID  int
}

func newFakeSectorRepo(sectors ...sector.Sector) *fakeSectorRepo {
	r := &fakeSectorRepo{sectors: make(map[string]sector.Sector)}
	for _, s := range sectors {
		r.sectors[s.ID] = s
	}
	return r
}

func (f *fakeSectorRepo) Create(_ context.Context, s sector.Sector) (sector.Sector, error) {
	f.nextID++
	s.ID = "new-" + string(rune('a'+f.nextID))
	f.sectors[s.ID] = s
	return s, nil
}

func (f *fakeSectorRepo) GetByID(_ context.Context, id string) (sector.Sector, error) {
	s, ok := f.sectors[id]
	if !ok {
		return sector.Sector{}, sector.ErrSectorNotFound
	}
	return s, nil
}

func (f *fakeSectorRepo) List(_ context.Context, _ sector.SectorFilter) ([]sector.Sector, error) {
	var out []sector.Sector
	for _, s := range f.sectors {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSectorRepo) Update(_ context.Context, s sector.Sector) error {
	if _, ok := f.sectors[s.ID]; !ok {
		return sector.ErrSectorNotFound
	}
	f.sectors[s.ID] = s
	return nil
}

func (f *fakeSectorRepo) Delete(_ context.Context, id string) error {
	delete(f.sectors, id)
	return nil
}

func (f *fakeSectorRepo) CountChildren(_ context.Context, id string) (int, error) {
	n := 0
	for _, s := range f.sectors {
		if s.ParentID != nil && *s.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (f *fakeSectorRepo) ExistsByCode(_ context.Context, code string, excludeID *string) (bool, error) {
	for _, s := range f.sectors {
		if s.Code == code && (excludeID == nil || *excludeID != s.ID) {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListByRoles(_ context.Context, roles []user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func ptr(s string) *string { return &s }

func (f *fakeUserRepo) ListBySectorID(_ context.Context, sectorID string) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.SectorID != nil && *u.SectorID == sectorID {
			out = append(out, u)
		}
	}
	return out, nil
}
