package identity

import (
	"context"
	"strings"

	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
)

// Profile is what a federated provider asserts about a signed-in person.
type Profile struct {
	SubjectID   string
	Email       string
	DisplayName string
}

// Provider turns a popup authorization code into a verified profile.
type Provider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// mapProviderError translates provider failures into coded errors the
// rest of the service understands.
func mapProviderError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "access_denied"), strings.Contains(msg, "popup_closed"):
		return pkgerrors.Wrap(pkgerrors.CodePopupDismissed, err, "sign-in popup closed")
	case strings.Contains(msg, "account-exists"), strings.Contains(msg, "different-credential"):
		return pkgerrors.Wrap(pkgerrors.CodeAccountConflict, err, "conflicting account for email")
	case strings.Contains(msg, "too-many-requests"), strings.Contains(msg, "too many requests"), strings.Contains(msg, "429"):
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, "too many sign-in attempts, try again later")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "identity provider error")
	}
}
