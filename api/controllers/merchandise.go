package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roadcasehq/merchtable-backend/api/middleware"
	"github.com/roadcasehq/merchtable-backend/api/responses"
	"github.com/roadcasehq/merchtable-backend/api/validators"
	"github.com/roadcasehq/merchtable-backend/internal/inventory"
	"github.com/roadcasehq/merchtable-backend/internal/stocklog"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
	"github.com/roadcasehq/merchtable-backend/pkg/pagination"
)

type createMerchandiseRequest struct {
	BandID            string `json:"band_id" validate:"required,uuid"`
	Name              string `json:"name" validate:"required"`
	SKU               string `json:"sku"`
	Category          string `json:"category"`
	PriceCents        int64  `json:"price_cents" validate:"min=0"`
	Stock             *int   `json:"stock"`
	LowStockThreshold *int   `json:"low_stock_threshold"`
}

// MerchandiseCreate adds an item to the catalog.
func MerchandiseCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createMerchandiseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		merch, err := svc.Create(r.Context(), inventory.CreateInput{
			BandID:            payload.BandID,
			Name:              payload.Name,
			SKU:               payload.SKU,
			Category:          payload.Category,
			PriceCents:        payload.PriceCents,
			Stock:             payload.Stock,
			LowStockThreshold: payload.LowStockThreshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, merch)
	}
}

type updateMerchandiseRequest struct {
	Name       *string `json:"name"`
	SKU        *string `json:"sku"`
	Category   *string `json:"category"`
	PriceCents *int64  `json:"price_cents"`
	Threshold  *int    `json:"low_stock_threshold"`
	Active     *bool   `json:"active"`
}

// MerchandiseUpdate edits catalog fields. Stock is not editable here.
func MerchandiseUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateMerchandiseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		merch, err := svc.Update(r.Context(), chi.URLParam(r, "merchandiseId"), inventory.UpdateInput{
			Name:       payload.Name,
			SKU:        payload.SKU,
			Category:   payload.Category,
			PriceCents: payload.PriceCents,
			Threshold:  payload.Threshold,
			Active:     payload.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, merch)
	}
}

// MerchandiseGet returns one catalog item.
func MerchandiseGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merch, err := svc.Get(r.Context(), chi.URLParam(r, "merchandiseId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, merch)
	}
}

// MerchandiseList returns a band's catalog.
func MerchandiseList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bandID := r.URL.Query().Get("band_id")
		if bandID == "" {
			bandID = middleware.BandIDFromContext(r.Context())
		}
		activeOnly := r.URL.Query().Get("include_inactive") != "true"

		rows, err := svc.ListByBand(r.Context(), bandID, activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type adjustStockRequest struct {
	NewStock int    `json:"new_stock" validate:"min=0"`
	Reason   string `json:"reason" validate:"required"`
	Note     string `json:"note"`
}

// MerchandiseAdjustStock sets the tracked quantity with an audit entry.
func MerchandiseAdjustStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := enums.ParseStockChangeReason(payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reason"))
			return
		}

		merch, err := svc.AdjustStock(r.Context(), chi.URLParam(r, "merchandiseId"), inventory.AdjustStockInput{
			NewStock: payload.NewStock,
			Reason:   reason,
			UserID:   userID,
			Note:     payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, merch)
	}
}

// MerchandiseDeactivate soft-deletes a catalog item.
func MerchandiseDeactivate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Deactivate(r.Context(), chi.URLParam(r, "merchandiseId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

// MerchandiseStockLog returns the audit trail for one item, newest first.
func MerchandiseStockLog(repo *stocklog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := repo.ListByMerchandise(r.Context(), chi.URLParam(r, "merchandiseId"), pagination.Params{Limit: limit})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock log"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
