package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravigill3969/textgen-quota/models"
)

var secret = []byte("jwt-test-secret-at-least-32-bytes-long")

func TestCreateAndParseToken(t *testing.T) {
	ts := NewTokenService(secret, time.Hour)
	user := models.User{ID: uuid.New(), Username: "alice", IsAdmin: true}

	tok, err := ts.CreateToken(user, 7)
	require.NoError(t, err)

	claims, err := ts.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserUUID())
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, 7, claims.APICalls)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokensAreDeterministicPerSecond(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ts := NewTokenService(secret, time.Hour)
	ts.SetClock(func() time.Time { return now })
	user := models.User{ID: uuid.New(), Username: "alice"}

	a, err := ts.CreateToken(user, 20)
	require.NoError(t, err)
	b, err := ts.CreateToken(user, 20)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseTokenFailures(t *testing.T) {
	now := time.Now()
	ts := NewTokenService(secret, time.Hour)
	user := models.User{ID: uuid.New(), Username: "alice"}

	t.Run("expired", func(t *testing.T) {
		old := NewTokenService(secret, time.Hour)
		old.SetClock(func() time.Time { return now.Add(-2 * time.Hour) })
		tok, err := old.CreateToken(user, 1)
		require.NoError(t, err)

		_, err = ts.ParseToken(tok)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.ErrorIs(t, err, ErrToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := NewTokenService([]byte("another-secret-another-secret-12345"), time.Hour).CreateToken(user, 1)
		require.NoError(t, err)

		_, err = ts.ParseToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		claims := &Claims{
			UserID: user.ID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
		require.NoError(t, err)

		_, err = ts.ParseToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := &Claims{
			UserID:           user.ID.String(),
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
		}
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ts.ParseToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ts.ParseToken("abc.def.ghi")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing expiry", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: user.ID.String()}).SignedString(secret)
		require.NoError(t, err)

		_, err = ts.ParseToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestAuthCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetAuthCookie(rec, "tok", time.Hour, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, AuthCookieName, c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
}
