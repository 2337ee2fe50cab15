package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"documentum/internal/auth"
	"documentum/internal/httputil"
)

// PublicPaths are served without a token. Entries ending in "/" match
// every path below them.
var PublicPaths = []string{
	"/health",
	"/api/auth/providers",
	"/api/auth/login",
	"/api/auth/oauth/",
}

// AuthMiddleware validates the bearer token and puts the user id on the
// request context
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			// Extract token from "Bearer <token>"
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				httputil.RespondError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims, err := verifier.VerifyToken(tokenParts[1])
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			next.ServeHTTP(w, httputil.WithSessionID(r, claims.SessionID))
		})
	}
}

func isPublic(path string) bool {
	for _, p := range PublicPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}
