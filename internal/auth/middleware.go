package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/inamate/rim/internal/middleware"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware requires a valid token and stores its subject in the request
// context. The token comes from a bearer Authorization header or, for
// browsers opening a websocket, from the token query parameter.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, msg := tokenFrom(r)
		if msg != "" {
			middleware.WriteError(w, http.StatusUnauthorized, msg)
			return
		}

		userID, err := s.ValidateToken(token)
		if err != nil {
			middleware.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFrom returns the request's token, or a message saying why there is
// none. A present header wins over the query parameter.
func tokenFrom(r *http.Request) (token, msg string) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" || token == "" {
			return "", "invalid authorization format"
		}
		return token, ""
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, ""
	}
	return "", "missing token"
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
