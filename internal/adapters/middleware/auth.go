package middleware

import (
	"context"
	"errors"
	"net/http"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
	"gitlab.com/timkado/api/staff-auth-service/pkg/contextkeys"
)

const authorizationHeader = "Authorization"

// SessionAuthenticator checks a bearer credential.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, credential string) (*domain.AuthenticatedSession, error)
}

// BearerAuthMiddleware rejects requests without a valid, active bearer session.
// On success the session and its subject are stored in the request context.
func BearerAuthMiddleware(auth SessionAuthenticator, logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := r.Header.Get(authorizationHeader)
			if credential == "" {
				logger.Warn(r.Context(), "Bearer authentication failed: header missing", "path", r.URL.Path)
				domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Authorization is required", "Provide a bearer token in the Authorization header.").WriteJSON(w, http.StatusUnauthorized)
				return
			}

			session, err := auth.Authenticate(r.Context(), credential)
			if err != nil {
				var status int
				var resp domain.ErrorResponse
				switch {
				case errors.Is(err, domain.ErrTokenExpired):
					status, resp = http.StatusUnauthorized, domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Token has expired", "")
				case errors.Is(err, domain.ErrSessionRevoked):
					status, resp = http.StatusUnauthorized, domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Session is no longer active", "")
				case errors.Is(err, domain.ErrTokenInvalid):
					status, resp = http.StatusUnauthorized, domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Token is invalid", "")
				default:
					logger.Error(r.Context(), "Bearer authentication failed unexpectedly", "path", r.URL.Path, "error", err.Error())
					status, resp = http.StatusInternalServerError, domain.NewErrorResponse(domain.ErrCodeInternal, "Authentication failed", "")
				}
				if status == http.StatusUnauthorized {
					logger.Warn(r.Context(), "Bearer authentication failed", "path", r.URL.Path, "error", err.Error())
				}
				resp.WriteJSON(w, status)
				return
			}

			ctx := context.WithValue(r.Context(), contextkeys.AuthSessionKey, session)
			ctx = context.WithValue(ctx, contextkeys.UserIDKey, session.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session stored by BearerAuthMiddleware.
func SessionFromContext(ctx context.Context) (*domain.AuthenticatedSession, bool) {
	s, ok := ctx.Value(contextkeys.AuthSessionKey).(*domain.AuthenticatedSession)
	return s, ok && s != nil
}
