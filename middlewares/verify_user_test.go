package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/utils"
)

var testSecret = []byte("middleware-secret-at-least-32-bytes!!")

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", claims.Username)
		w.WriteHeader(http.StatusOK)
	})
}

func tokenFor(t *testing.T, ts *utils.TokenService, admin bool) string {
	t.Helper()
	tok, err := ts.CreateToken(models.User{ID: uuid.New(), Username: "alice", IsAdmin: admin}, 20)
	require.NoError(t, err)
	return tok
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkUser", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: utils.AuthCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	ts := utils.NewTokenService(testSecret, time.Hour)
	gate := NewAuthGate(ts)
	h := gate.AuthMiddleware(okHandler(t))

	t.Run("no cookie", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	})

	t.Run("valid", func(t *testing.T) {
		rec := serve(h, tokenFor(t, ts, false))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Header().Get("X-User"))
	})

	t.Run("tampered", func(t *testing.T) {
		tok := tokenFor(t, ts, false)
		tampered := tok[:len(tok)-2] + "xx"
		assert.Equal(t, http.StatusForbidden, serve(h, tampered).Code)
	})

	t.Run("other secret", func(t *testing.T) {
		other := utils.NewTokenService([]byte("some-other-secret-of-32-bytes-or-more"), time.Hour)
		assert.Equal(t, http.StatusForbidden, serve(h, tokenFor(t, other, false)).Code)
	})

	t.Run("expired", func(t *testing.T) {
		past := utils.NewTokenService(testSecret, time.Hour)
		past.SetClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
		assert.Equal(t, http.StatusForbidden, serve(h, tokenFor(t, past, false)).Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	ts := utils.NewTokenService(testSecret, time.Hour)
	h := NewAuthGate(ts).Admin(okHandler(t))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, tokenFor(t, ts, false)).Code)
	assert.Equal(t, http.StatusOK, serve(h, tokenFor(t, ts, true)).Code)
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	h := NewAuthGate(utils.NewTokenService(testSecret, time.Hour)).RequireAdmin(http.NotFoundHandler())
	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
}
