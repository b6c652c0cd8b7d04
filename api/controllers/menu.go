package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/poornima-canteen/canteen-backend/api/responses"
	"github.com/poornima-canteen/canteen-backend/api/validators"
	menusvc "github.com/poornima-canteen/canteen-backend/internal/menu"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

// MenuList returns every section with its items, in display order.
func MenuList(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "menu service unavailable"))
			return
		}

		sections, err := svc.Menu(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"sections": sections})
	}
}

// ManageSectionCreate adds a catalog section. Privileged only.
func ManageSectionCreate(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload menusvc.AddSectionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		section, err := svc.AddSection(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, section)
	}
}

// ManageSectionDelete removes a section and its items. Privileged only.
func ManageSectionDelete(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sectionID := chi.URLParam(r, "sectionId")
		if err := svc.DeleteSection(r.Context(), sectionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": sectionID})
	}
}

// ManageItemCreate adds an item under a section. Privileged only.
func ManageItemCreate(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload menusvc.AddItemInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.SectionID = chi.URLParam(r, "sectionId")
		if payload.SectionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "section id is required"))
			return
		}

		item, err := svc.AddItem(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ManageItemDelete removes one item. Privileged only.
func ManageItemDelete(svc menusvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sectionID := chi.URLParam(r, "sectionId")
		itemID := chi.URLParam(r, "itemId")
		if err := svc.DeleteItem(r.Context(), sectionID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": itemID})
	}
}
