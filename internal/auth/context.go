package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/VitaminP8/forum/internal/apperr"
)

type contextKey string

const userIDKey = contextKey("userID")

// Resolver maps a bearer token to the id of the user it was issued to.
type Resolver interface {
	Resolve(ctx context.Context, token string) (uint, error)
}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the authenticated user id stored by the middleware.
func GetUserIDFromContext(ctx context.Context) (uint, error) {
	val := ctx.Value(userIDKey)
	id, ok := val.(uint)
	if !ok {
		return 0, errors.New("user ID not found in context")
	}
	return id, nil
}

// Middleware resolves the bearer token, if any, and puts the user id into the request context.
// Requests without a usable token pass through anonymously; routes that need a user check for it.
// Resolver failures other than apperr.ErrUnauthenticated are handed to onError.
func Middleware(resolver Resolver, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := resolver.Resolve(r.Context(), tokenStr)
			if errors.Is(err, apperr.ErrUnauthenticated) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
