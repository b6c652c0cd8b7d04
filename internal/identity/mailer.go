package identity

import (
	"context"
	"fmt"

	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// Mailer delivers the sign-in link to the requested address.
type Mailer interface {
	SendSignInLink(ctx context.Context, email, link string) error
}

// LogMailer writes links to the log instead of sending mail. Dev only.
type LogMailer struct {
	logg *logger.Logger
}

// NewLogMailer builds the dev mailer.
func NewLogMailer(logg *logger.Logger) *LogMailer {
	return &LogMailer{logg: logg}
}

func (m *LogMailer) SendSignInLink(ctx context.Context, email, link string) error {
	if m.logg != nil {
		m.logg.Info(ctx, fmt.Sprintf("sign-in link for %s: %s", email, link))
	}
	return nil
}
