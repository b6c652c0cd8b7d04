package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/poornima-canteen/canteen-backend/api/responses"
	"github.com/poornima-canteen/canteen-backend/internal/identity"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// Notifier delivers the visible denial notice when a signed-in caller is
// refused a privileged view.
type Notifier interface {
	Push(ctx context.Context, subjectID, message string) error
}

// RequireRole enforces an access tier. Anonymous callers get a 401 carrying
// the sign-in redirect and the destination they were headed to; signed-in
// callers without the tier get a 403 pointing back at the standard landing
// view, with a denial notification queued for them.
func RequireRole(required identity.Role, notify Notifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := IdentityFromContext(r.Context())
			decision := identity.Decide(ident, required, r.URL.Path)
			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if ident == nil {
				err := pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to continue").
					WithDetails(map[string]any{
						"redirect_to": decision.RedirectTo,
						"destination": decision.Destination,
					})
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			if notify != nil {
				if err := notify.Push(r.Context(), ident.SubjectID, "You do not have access to that page."); err != nil && logg != nil {
					logg.Warn(r.Context(), fmt.Sprintf("denial notification dropped: %v", err))
				}
			}
			err := pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role").
				WithDetails(map[string]any{"redirect_to": decision.RedirectTo})
			responses.WriteError(r.Context(), logg, w, err)
		})
	}
}
