package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/roadcasehq/merchtable-backend/api/middleware"
	"github.com/roadcasehq/merchtable-backend/api/responses"
	"github.com/roadcasehq/merchtable-backend/api/validators"
	reportsvc "github.com/roadcasehq/merchtable-backend/internal/reports"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

func reportFilter(r *http.Request) (reportsvc.Filter, error) {
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return reportsvc.Filter{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return reportsvc.Filter{}, err
	}

	query := r.URL.Query()
	filter := reportsvc.Filter{
		BandID:        query.Get("band_id"),
		ShowID:        query.Get("show_id"),
		MerchandiseID: query.Get("merchandise_id"),
		From:          from,
		To:            to,
	}
	if filter.BandID == "" {
		filter.BandID = middleware.BandIDFromContext(r.Context())
	}
	return filter, nil
}

// ReportsSales returns aggregated sales for a filtered period.
func ReportsSales(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := reportFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.SalesReport(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportsInventory returns the current stock snapshot for a band.
func ReportsInventory(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bandID := r.URL.Query().Get("band_id")
		if bandID == "" {
			bandID = middleware.BandIDFromContext(r.Context())
		}

		rows, err := svc.InventorySnapshot(r.Context(), bandID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ReportsSalesCSV streams the filtered sales as a CSV download.
func ReportsSalesCSV(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := reportFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("sales-%s.csv", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := svc.ExportSalesCSV(r.Context(), filter, w); err != nil {
			// Headers are already committed once rows stream, so only
			// log here.
			logg.Error(r.Context(), "sales csv export failed", err)
		}
	}
}
