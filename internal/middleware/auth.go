package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ksrami99/video-tube/internal/auth/token"
	"github.com/ksrami99/video-tube/internal/httpx"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

type AuthMiddleware struct {
	tokens *token.Issuer
}

func NewAuthMiddleware(tokens *token.Issuer) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := accessTokenFrom(r)
		if raw == "" {
			httpx.WriteError(w, httpx.E(httpx.KindAuthentication, "unauthorized request"))
			return
		}

		claims, err := a.tokens.Parse(raw)
		if err != nil {
			httpx.WriteError(w, httpx.E(httpx.KindAuthentication, "invalid access token"))
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessTokenFrom reads the access token cookie, falling back to an
// Authorization: Bearer header.
func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(httpx.AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
