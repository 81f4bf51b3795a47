package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"notes-server/internal/domain"
	"notes-server/pkg/response"

	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

const credentialsDetail = "Could not validate credentials"

// Resolver maps a bearer token to the active user it belongs to.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token. Every
// authentication failure looks the same to the caller.
func AuthMiddleware(resolver Resolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.Unauthorized(w, response.CodeUnauthorized, credentialsDetail)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrInactiveAccount) {
					response.Unauthorized(w, response.CodeUnauthorized, credentialsDetail)
					return
				}
				log.Error("failed to resolve identity", zap.Error(err), zap.String("path", r.URL.Path))
				response.InternalError(w, "Internal server error")
				return
			}

			setRequestUser(r.Context(), user.ID)
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

func GetUserID(r *http.Request) string {
	if user := UserFromContext(r.Context()); user != nil {
		return user.ID
	}
	return ""
}

// WithUser returns a context carrying user, as AuthMiddleware would.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
