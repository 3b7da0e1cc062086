package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roadcasehq/merchtable-backend/api/responses"
	"github.com/roadcasehq/merchtable-backend/api/validators"
	bandsvc "github.com/roadcasehq/merchtable-backend/internal/bands"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

type createBandRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Website     string `json:"website"`
}

// BandsCreate registers a new band.
func BandsCreate(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createBandRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		band, err := svc.CreateBand(r.Context(), bandsvc.CreateBandInput{
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			Website:     payload.Website,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, band)
	}
}

type updateBandRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
}

// BandsUpdate edits a band's profile.
func BandsUpdate(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateBandRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		band, err := svc.UpdateBand(r.Context(), chi.URLParam(r, "bandId"), bandsvc.UpdateBandInput{
			Name:        payload.Name,
			Description: payload.Description,
			Website:     payload.Website,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, band)
	}
}

// BandsGet returns one band.
func BandsGet(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		band, err := svc.GetBand(r.Context(), chi.URLParam(r, "bandId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, band)
	}
}

// BandsList returns every band.
func BandsList(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bands, err := svc.ListBands(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bands)
	}
}

type createTourRequest struct {
	Name      string     `json:"name" validate:"required"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// ToursCreate adds a tour under a band.
func ToursCreate(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createTourRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tour, err := svc.CreateTour(r.Context(), bandsvc.CreateTourInput{
			BandID:    chi.URLParam(r, "bandId"),
			Name:      payload.Name,
			StartDate: payload.StartDate,
			EndDate:   payload.EndDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tour)
	}
}

// ToursList returns a band's tours.
func ToursList(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tours, err := svc.ListTours(r.Context(), chi.URLParam(r, "bandId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tours)
	}
}

type createShowRequest struct {
	TourID   *string    `json:"tour_id"`
	Venue    string     `json:"venue" validate:"required"`
	City     string     `json:"city"`
	Country  string     `json:"country"`
	ShowDate *time.Time `json:"show_date"`
}

// ShowsCreate adds a show under a band.
func ShowsCreate(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createShowRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		show, err := svc.CreateShow(r.Context(), bandsvc.CreateShowInput{
			BandID:   chi.URLParam(r, "bandId"),
			TourID:   payload.TourID,
			Venue:    payload.Venue,
			City:     payload.City,
			Country:  payload.Country,
			ShowDate: payload.ShowDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, show)
	}
}

// ShowsList returns a band's shows, optionally scoped to one tour.
func ShowsList(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shows, err := svc.ListShows(r.Context(), chi.URLParam(r, "bandId"), r.URL.Query().Get("tour_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shows)
	}
}

type createSalesPageRequest struct {
	ShowID *string `json:"show_id"`
	Title  string  `json:"title" validate:"required"`
	Slug   string  `json:"slug"`
}

// SalesPagesCreate adds a sales page under a band.
func SalesPagesCreate(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createSalesPageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.CreateSalesPage(r.Context(), bandsvc.CreateSalesPageInput{
			BandID: chi.URLParam(r, "bandId"),
			ShowID: payload.ShowID,
			Title:  payload.Title,
			Slug:   payload.Slug,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, page)
	}
}

// SalesPagesList returns a band's sales pages.
func SalesPagesList(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := r.URL.Query().Get("include_inactive") != "true"
		pages, err := svc.ListSalesPages(r.Context(), chi.URLParam(r, "bandId"), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pages)
	}
}

// SalesPagesGet returns one sales page with its lineup.
func SalesPagesGet(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.GetSalesPage(r.Context(), chi.URLParam(r, "pageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// SalesPagesGetBySlug resolves a sales page by its public slug.
func SalesPagesGetBySlug(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.GetSalesPageBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

type pageItemRequest struct {
	MerchandiseID string `json:"merchandise_id" validate:"required,uuid"`
	Position      int    `json:"position" validate:"min=0"`
}

type setPageItemsRequest struct {
	Items []pageItemRequest `json:"items" validate:"required,dive"`
}

// SalesPagesSetItems replaces the page lineup.
func SalesPagesSetItems(svc bandsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setPageItemsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]bandsvc.PageItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, bandsvc.PageItemInput{
				MerchandiseID: item.MerchandiseID,
				Position:      item.Position,
			})
		}

		page, err := svc.SetSalesPageItems(r.Context(), chi.URLParam(r, "pageId"), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
