package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roadcasehq/merchtable-backend/api/middleware"
	"github.com/roadcasehq/merchtable-backend/api/responses"
	"github.com/roadcasehq/merchtable-backend/api/validators"
	salesvc "github.com/roadcasehq/merchtable-backend/internal/sales"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
	"github.com/roadcasehq/merchtable-backend/pkg/pagination"
)

// SalesValidate re-checks the caller's pending sale against live stock.
func SalesValidate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r, logg, w)
		if !ok {
			return
		}
		result, err := svc.ValidateSession(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type recordSaleRequest struct {
	PaymentType  string  `json:"payment_type" validate:"required"`
	ShowID       *string `json:"show_id"`
	SalesPageID  *string `json:"sales_page_id"`
	Notes        string  `json:"notes"`
	CardSourceID string  `json:"card_source_id"`
}

// SalesRecord commits the caller's pending sale as one atomic batch.
func SalesRecord(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessionUserID(r, logg, w)
		if !ok {
			return
		}

		var payload recordSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentType, err := enums.ParsePaymentType(payload.PaymentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
			return
		}

		result, err := svc.ProcessRecording(r.Context(), userID, salesvc.RecordingInput{
			PaymentType:  paymentType,
			ShowID:       payload.ShowID,
			SalesPageID:  payload.SalesPageID,
			Notes:        payload.Notes,
			CardSourceID: payload.CardSourceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !result.Success {
			responses.WriteSuccessStatus(w, http.StatusUnprocessableEntity, result)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// SalesList returns committed sales, newest first.
func SalesList(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := salesvc.ListFilter{
			BandID:        query.Get("band_id"),
			ShowID:        query.Get("show_id"),
			MerchandiseID: query.Get("merchandise_id"),
			From:          from,
			To:            to,
		}
		if filter.BandID == "" {
			filter.BandID = middleware.BandIDFromContext(r.Context())
		}

		rows, err := svc.ListSales(r.Context(), filter, pagination.Params{Limit: limit})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SalesBatch returns every line of one committed batch.
func SalesBatch(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.GetBatch(r.Context(), chi.URLParam(r, "batchId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(rows) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "batch not found"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
