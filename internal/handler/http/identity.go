package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

// identity is the caller as described by the access token claims.
type identity struct {
	UserID   string
	Role     user.Role
	SectorID *string
}

func identityFromContext(r *http.Request) (identity, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return identity{}, false
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return identity{}, false
	}
	id := identity{UserID: userID}
	if role, ok := claims["role"].(string); ok {
		id.Role = user.Role(role)
	}
	if sectorID, ok := claims["sector_id"].(string); ok && sectorID != "" {
		id.SectorID = &sectorID
	}
	return id, true
}

func (id identity) can(p user.Permission) bool {
	return user.HasPermission(id.Role, p)
}

// canAccess allows a user's own data, or anyone else's with the wider permission.
func (id identity) canAccess(targetUserID string, viewAll user.Permission) bool {
	return targetUserID == id.UserID || id.can(viewAll)
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

func optionalQuery(r *http.Request, key string) *string {
	if val := r.URL.Query().Get(key); val != "" {
		return &val
	}
	return nil
}

// idParam reads an id path parameter. A malformed id is a validation error.
func idParam(r *http.Request, key string) (string, error) {
	id := chi.URLParam(r, key)
	return id, validator.UUID(key, id)
}

// userParam reads {userId}; "me" or an empty value selects the caller.
func userParam(r *http.Request, caller identity) (string, error) {
	userID := chi.URLParam(r, "userId")
	if userID == "" || userID == "me" {
		return caller.UserID, nil
	}
	return userID, validator.UUID("userId", userID)
}

// idQuery reads an optional id filter from the query string.
func idQuery(r *http.Request, key string) (*string, error) {
	val := optionalQuery(r, key)
	if val == nil {
		return nil, nil
	}
	return val, validator.UUID(key, *val)
}

// bodyIDs validates id fields of a request body by json name. Nil and empty
// values are left to the request's own validation.
func bodyIDs(fields map[string]*string) error {
	var errs []error
	for field, v := range fields {
		if v != nil && *v != "" {
			errs = append(errs, validator.UUID(field, *v))
		}
	}
	return validator.Merge(errs...)
}

// dateRangeQuery parses the required start/end and optional as_of query parameters.
func dateRangeQuery(r *http.Request) (start, end time.Time, asOf *time.Time, err error) {
	var errs validator.ValidationErrors
	q := r.URL.Query()

	start, okStart := validator.IsValidDate(q.Get("start"))
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start", Message: "start must be in YYYY-MM-DD format"})
	}
	end, okEnd := validator.IsValidDate(q.Get("end"))
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end", Message: "end must be in YYYY-MM-DD format"})
	}
	if raw := q.Get("as_of"); raw != "" {
		d, ok := validator.IsValidDate(raw)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "as_of", Message: "as_of must be in YYYY-MM-DD format"})
		} else {
			asOf = &d
		}
	}

	if len(errs) > 0 {
		return time.Time{}, time.Time{}, nil, errs
	}
	return start, end, asOf, nil
}
