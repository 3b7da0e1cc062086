package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roadcasehq/merchtable-backend/api/middleware"
	"github.com/roadcasehq/merchtable-backend/api/responses"
	"github.com/roadcasehq/merchtable-backend/api/validators"
	sessionsvc "github.com/roadcasehq/merchtable-backend/internal/session"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

type sessionItemRequest struct {
	MerchandiseID string `json:"merchandise_id" validate:"required,uuid"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
}

type sessionResponse struct {
	Items      []sessionsvc.EnrichedItem `json:"items"`
	TotalCents int64                     `json:"total_cents"`
}

func buildSessionResponse(items []sessionsvc.EnrichedItem) sessionResponse {
	var total int64
	for _, item := range items {
		total += item.SubtotalCents
	}
	return sessionResponse{Items: items, TotalCents: total}
}

func sessionUserID(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
		return "", false
	}
	return userID, true
}

// SessionGet returns the caller's pending sale with live prices.
func SessionGet(svc sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r, logg, w)
		if !ok {
			return
		}
		items, err := svc.Items(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildSessionResponse(items))
	}
}

// SessionAdd puts an item into the pending sale, overwriting the
// quantity if it is already there.
func SessionAdd(svc sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r, logg, w)
		if !ok {
			return
		}

		var payload sessionItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Add(r.Context(), userID, payload.MerchandiseID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Items(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildSessionResponse(items))
	}
}

type sessionQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// SessionUpdateItem changes the quantity of an item already in the sale.
func SessionUpdateItem(svc sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r, logg, w)
		if !ok {
			return
		}
		merchandiseID := chi.URLParam(r, "merchandiseId")

		var payload sessionQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Update(r.Context(), userID, merchandiseID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Items(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildSessionResponse(items))
	}
}

// SessionRemoveItem drops an item from the sale. Removing an absent item
// is a no-op.
func SessionRemoveItem(svc sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r, logg, w)
		if !ok {
			return
		}
		merchandiseID := chi.URLParam(r, "merchandiseId")

		if _, err := svc.Remove(r.Context(), userID, merchandiseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Items(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildSessionResponse(items))
	}
}

// SessionClear empties the pending sale.
func SessionClear(svc sessionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r, logg, w)
		if !ok {
			return
		}
		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, buildSessionResponse(nil))
	}
}
