package middleware

import (
	"context"
	"net/http"

	"github.com/poornima-canteen/canteen-backend/api/responses"
	"github.com/poornima-canteen/canteen-backend/api/validators"
	"github.com/poornima-canteen/canteen-backend/internal/identity"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// Authenticator is the slice of the identity service the middleware needs.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.Identity, string, error)
}

// Auth validates a bearer token, confirms the session is live, and seeds
// the request context with the identity.
func Auth(auth Authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := validators.BearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ident, accessID, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithIdentity(r.Context(), ident, accessID)
			if logg != nil {
				ctx = logg.WithRole(logg.WithSubjectID(ctx, ident.SubjectID), string(ident.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
