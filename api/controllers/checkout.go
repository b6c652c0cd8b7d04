package controllers

import (
	"net/http"

	"github.com/poornima-canteen/canteen-backend/api/middleware"
	"github.com/poornima-canteen/canteen-backend/api/responses"
	"github.com/poornima-canteen/canteen-backend/api/validators"
	checkoutsvc "github.com/poornima-canteen/canteen-backend/internal/checkout"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// CheckoutBegin opens a provider order for the caller's cart and returns
// the widget options.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := middleware.IdentityFromContext(r.Context())
		options, err := svc.Begin(r.Context(), ident)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, options)
	}
}

// CheckoutConfirm verifies the widget's success callback and settles the order.
func CheckoutConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutsvc.ConfirmInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subjectID := middleware.SubjectIDFromContext(r.Context())
		result, err := svc.Confirm(r.Context(), subjectID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutDismiss records a closed widget; the cart is untouched.
func CheckoutDismiss(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := middleware.SubjectIDFromContext(r.Context())
		if err := svc.Dismiss(r.Context(), subjectID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "dismissed"})
	}
}
