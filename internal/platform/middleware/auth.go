package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"domcart/pkg/apierrors"
	"domcart/pkg/httputil"
)

// TokenValidator validates a bearer token and yields the user it belongs to.
type TokenValidator interface {
	Validate(tokenString string) (userID string, err error)
}

type contextKeyUserID struct{}

// GetUserID retrieves the authenticated user ID from the context, "" when
// the request never passed RequireAuth.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(contextKeyUserID{}).(string)
	return userID
}

// WithUserID injects a user ID, for tests and internal callers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUserID{}, userID)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token's user ID in the request context for handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized: missing bearer token",
					"request_id", GetRequestID(ctx),
				)
				httputil.WriteError(w, apierrors.New(apierrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			userID, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized: invalid token",
					"request_id", GetRequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, apierrors.New(apierrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(ctx, userID)))
		})
	}
}
