package controllers

import (
	"net/http"

	"github.com/poornima-canteen/canteen-backend/api/middleware"
	"github.com/poornima-canteen/canteen-backend/api/responses"
	notifysvc "github.com/poornima-canteen/canteen-backend/internal/notify"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// NotificationsDrain returns and clears the caller's pending notifications.
func NotificationsDrain(svc notifysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := middleware.SubjectIDFromContext(r.Context())
		notes, err := svc.Drain(r.Context(), subjectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"notifications": notes})
	}
}
