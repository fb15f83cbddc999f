package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ravigill3969/textgen-quota/utils"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

type AuthGate struct {
	Tokens *utils.TokenService
}

func NewAuthGate(tokens *utils.TokenService) *AuthGate {
	return &AuthGate{Tokens: tokens}
}

// AuthMiddleware admits requests carrying a valid authToken cookie and puts
// the decoded claims on the request context.
func (a *AuthGate) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(utils.AuthCookieName)
		if err != nil || cookie.Value == "" {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := a.Tokens.ParseToken(cookie.Value)
		if err != nil {
			slog.InfoContext(r.Context(), "auth failed", "path", r.URL.Path, "error", err)
			utils.RespondError(w, http.StatusForbidden, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run inside AuthMiddleware.
func (a *AuthGate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !claims.IsAdmin {
			utils.RespondError(w, http.StatusForbidden, "Forbidden: admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Admin is AuthMiddleware followed by RequireAdmin.
func (a *AuthGate) Admin(next http.Handler) http.Handler {
	return a.AuthMiddleware(a.RequireAdmin(next))
}

func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}
