package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/poornima-canteen/canteen-backend/pkg/config"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
)

// Notification is a short-lived message for one principal. Notifications
// are fire-and-forget: delivered once on the next drain, or expired.
type Notification struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Ring is the slice of the redis client backing the notification queue.
type Ring interface {
	LPush(ctx context.Context, key string, ttl time.Duration, values ...any) error
	DrainList(ctx context.Context, key string) ([]string, error)
	NotificationKey(subjectID string) string
}

// Service queues and drains per-principal notifications.
type Service interface {
	Push(ctx context.Context, subjectID, message string) error
	Drain(ctx context.Context, subjectID string) ([]Notification, error)
}

type service struct {
	ring Ring
	ttl  time.Duration
	now  func() time.Time
}

// NewService wires the notification service.
func NewService(ring Ring, cfg config.NotifyConfig) (Service, error) {
	if ring == nil {
		return nil, errors.New("notify service requires a ring")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{ring: ring, ttl: ttl, now: time.Now}, nil
}

func (s *service) Push(ctx context.Context, subjectID, message string) error {
	if subjectID == "" || message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subject and message are required")
	}
	payload, err := json.Marshal(Notification{Message: message, CreatedAt: s.now().UTC()})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding notification")
	}
	if err := s.ring.LPush(ctx, s.ring.NotificationKey(subjectID), s.ttl, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queueing notification")
	}
	return nil
}

// Drain returns pending notifications oldest first and empties the queue.
func (s *service) Drain(ctx context.Context, subjectID string) ([]Notification, error) {
	values, err := s.ring.DrainList(ctx, s.ring.NotificationKey(subjectID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "draining notifications")
	}
	if len(values) == 0 {
		return nil, nil
	}

	// LPush prepends, so the raw list is newest first.
	out := make([]Notification, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		var note Notification
		if err := json.Unmarshal([]byte(values[i]), &note); err != nil {
			continue
		}
		out = append(out, note)
	}
	return out, nil
}
