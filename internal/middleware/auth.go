package middleware

import (
	"context"
	"net/http"

	"github.com/sportlink-dev/sportlink/internal/jwt"
	"github.com/sportlink-dev/sportlink/internal/logger"
	"github.com/sportlink-dev/sportlink/internal/utils"
)

// Key to store the session in the request context
type key int

const sessionKey key = 0

func Auth(jwtService jwt.JwtService, adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessCookie, err := r.Cookie("accessToken")
			if err == http.ErrNoCookie {
				http.Error(w, "Please sign in", http.StatusUnauthorized)
				return
			} else if err != nil {
				logger.Log.Error("failed to read access cookie", "error", err)
				http.Error(w, "Invalid cookie", http.StatusInternalServerError)
				return
			}

			session, err := jwtService.DecodeToken(accessCookie.Value)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}

			if adminOnly && !session.Admin {
				http.Error(w, "Access denied. Only for admin", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func NeedAuth(jwtService jwt.JwtService) func(http.Handler) http.Handler {
	return Auth(jwtService, false)
}

func AdminOnly(jwtService jwt.JwtService) func(http.Handler) http.Handler {
	return Auth(jwtService, true)
}

// GetSessionFromContext returns the session stored by Auth, or nil.
func GetSessionFromContext(r *http.Request) *jwt.Session {
	session, ok := r.Context().Value(sessionKey).(*jwt.Session)
	if !ok {
		return nil
	}
	return session
}
