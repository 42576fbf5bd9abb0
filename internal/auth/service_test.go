package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/tortaquiz/internal/auth/jwt"
)

func newTestService(t *testing.T, secret string, password string) *Service {
	t.Helper()
	hash := ""
	if password != "" {
		var err error
		hash, err = HashPassword(password)
		require.NoError(t, err)
	}
	return NewService(ServiceOptions{
		TokenConfig:  jwt.TokenConfig{Secret: []byte(secret), TTL: time.Hour},
		PasswordHash: hash,
	}, zerolog.Nop())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, len(hash) > 20) // bcrypt hashes are long
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("testpassword123")

	err := VerifyPassword(hash, "testpassword123")
	assert.NoError(t, err)

	err = VerifyPassword(hash, "wrongpassword")
	assert.Equal(t, ErrInvalidPassword, err)
}

func TestPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
	assert.Equal(t, ErrPasswordTooShort, err)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t, "secret", "torta-na-cara")

	resp, err := svc.Login(LoginRequest{Password: "torta-na-cara"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, claims.Role)

	_, err = svc.Login(LoginRequest{Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabled(t *testing.T) {
	assert.False(t, newTestService(t, "", "torta-na-cara").Enabled())
	assert.False(t, newTestService(t, "secret", "").Enabled())

	_, err := newTestService(t, "", "torta-na-cara").Login(LoginRequest{Password: "torta-na-cara"})
	assert.ErrorIs(t, err, ErrAdminDisabled)
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestService(t, "secret", "torta-na-cara")
	resp, err := svc.IssueToken()
	require.NoError(t, err)

	var sawClaims bool
	h := RequireAdmin(svc, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Basic abc", http.StatusUnauthorized},
		{"Bearer garbage", http.StatusUnauthorized},
		{"Bearer " + resp.AccessToken, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/admin/questions/used", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "header %q", tc.header)
	}
	assert.True(t, sawClaims)
}

func TestRequireAdminWhenDisabled(t *testing.T) {
	h := RequireAdmin(newTestService(t, "", ""), zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/admin/questions/used", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	h := NewHTTPHandlers(newTestService(t, "secret", "torta-na-cara"), zerolog.Nop())

	post := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/v1/admin/login", strings.NewReader(body)))
		return rec
	}

	rec := post(`{"password":"torta-na-cara"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token"`)

	assert.Equal(t, http.StatusUnauthorized, post(`{"password":"nope-nope"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{bad`).Code)
}
