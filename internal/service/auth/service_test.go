package auth

import (
	"context"
	"testing"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/auth"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/jwt"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
)

type memUsers struct {
	byID map[string]user.User
}

func (m memUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m memUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (m memUsers) ListByRoles(context.Context, []user.Role) ([]user.User, error) {
	return nil, nil
}

type storedToken struct {
	userID  string
	revoked bool
	session auth.SessionTrackingRequest
}

type memTokens struct {
	tokens map[string]*storedToken
}

func (m *memTokens) CreateRefreshToken(_ context.Context, userID, token string, _ int64, session auth.SessionTrackingRequest) error {
	m.tokens[token] = &storedToken{userID: userID, session: session}
	return nil
}

func (m *memTokens) IsRefreshTokenRevoked(_ context.Context, token string) (string, bool, error) {
	t, ok := m.tokens[token]
	if !ok {
		return "", true, nil
	}
	return t.userID, t.revoked, nil
}

func (m *memTokens) RevokeRefreshToken(_ context.Context, token string) error {
	if t, ok := m.tokens[token]; ok {
		t.revoked = true
	}
	return nil
}

func hash(t *testing.T, password string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(h)
	return &s
}

func newTestService(t *testing.T) (auth.AuthService, *memTokens) {
	t.Helper()
	sector := "nucleo"
	users := memUsers{byID: map[string]user.User{
		"maria": {ID: "maria", Email: "maria@sefaz.pe.gov.br", PasswordHash: hash(t, "password123"), Role: user.RoleServidor, SectorID: &sector, Active: true},
		"joao":  {ID: "joao", Email: "joao@sefaz.pe.gov.br", PasswordHash: hash(t, "password123"), Role: user.RoleServidor, Active: false},
	}}
	tokens := &memTokens{tokens: make(map[string]*storedToken)}
	svc := NewAuthService(users, tokens, jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp, false))
	return svc, tokens
}

func TestLogin(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "maria@sefaz.pe.gov.br", Password: "password123"}, auth.SessionTrackingRequest{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.Contains(t, tokens.tokens, resp.RefreshToken)
	assert.Equal(t, "10.0.0.1", tokens.tokens[resp.RefreshToken].session.IPAddress)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []auth.LoginRequest{
		{Email: "maria@sefaz.pe.gov.br", Password: "wrong"},
		{Email: "ninguem@sefaz.pe.gov.br", Password: "password123"},
		{Email: "joao@sefaz.pe.gov.br", Password: "password123"},
	}
	for _, c := range cases {
		_, err := svc.Login(ctx, c, auth.SessionTrackingRequest{})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials, c.Email)
	}

	_, err := svc.Login(ctx, auth.LoginRequest{Email: "not-an-email"}, auth.SessionTrackingRequest{})
	var errs validator.ValidationErrors
	assert.ErrorAs(t, err, &errs)
}

func TestRefreshAndLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "maria@sefaz.pe.gov.br", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "maria@sefaz.pe.gov.br", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLogout_EmptyToken(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.Logout(context.Background(), ""), auth.ErrInvalidToken)
}

func (m memUsers) ListBySectorID(context.Context, string) ([]user.User, error) {
	return nil, nil
}
