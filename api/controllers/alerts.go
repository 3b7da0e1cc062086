package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roadcasehq/merchtable-backend/api/responses"
	alertsvc "github.com/roadcasehq/merchtable-backend/internal/alerts"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	pkgerrors "github.com/roadcasehq/merchtable-backend/pkg/errors"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

// AlertsList returns stock alerts, active by default or filtered by
// ?status=.
func AlertsList(svc alertsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("status")
		if raw == "" {
			rows, err := svc.ListActive(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, rows)
			return
		}

		status, err := enums.ParseAlertStatus(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		rows, err := svc.ListByStatus(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AlertsResolve closes an alert after restocking.
func AlertsResolve(svc alertsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Resolve(r.Context(), chi.URLParam(r, "alertId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "resolved"})
	}
}

// AlertsDismiss closes an alert without restocking.
func AlertsDismiss(svc alertsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Dismiss(r.Context(), chi.URLParam(r, "alertId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "dismissed"})
	}
}
