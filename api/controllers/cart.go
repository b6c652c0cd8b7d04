package controllers

import (
	"net/http"

	"github.com/poornima-canteen/canteen-backend/api/middleware"
	"github.com/poornima-canteen/canteen-backend/api/responses"
	"github.com/poornima-canteen/canteen-backend/api/validators"
	cartsvc "github.com/poornima-canteen/canteen-backend/internal/cart"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// CartFetch returns the caller's cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := middleware.SubjectIDFromContext(r.Context())
		snap, err := svc.Snapshot(r.Context(), subjectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartAdd adds units of a catalog item, merging into an existing line.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartsvc.AddInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subjectID := middleware.SubjectIDFromContext(r.Context())
		snap, err := svc.Add(r.Context(), subjectID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartSetQuantity pins a line to an absolute quantity.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartsvc.SetQuantityInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subjectID := middleware.SubjectIDFromContext(r.Context())
		snap, err := svc.SetQuantity(r.Context(), subjectID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartRemoveItem deletes exactly one line, addressed by id and name.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := r.URL.Query().Get("id")
		name := r.URL.Query().Get("name")
		if itemID == "" || name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "id and name query parameters are required"))
			return
		}

		subjectID := middleware.SubjectIDFromContext(r.Context())
		snap, err := svc.Remove(r.Context(), subjectID, itemID, name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjectID := middleware.SubjectIDFromContext(r.Context())
		if err := svc.Clear(r.Context(), subjectID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
