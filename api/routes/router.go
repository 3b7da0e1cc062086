package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roadcasehq/merchtable-backend/api/controllers"
	"github.com/roadcasehq/merchtable-backend/api/middleware"
	alertsvc "github.com/roadcasehq/merchtable-backend/internal/alerts"
	bandsvc "github.com/roadcasehq/merchtable-backend/internal/bands"
	"github.com/roadcasehq/merchtable-backend/internal/inventory"
	reportsvc "github.com/roadcasehq/merchtable-backend/internal/reports"
	salesvc "github.com/roadcasehq/merchtable-backend/internal/sales"
	sessionsvc "github.com/roadcasehq/merchtable-backend/internal/session"
	"github.com/roadcasehq/merchtable-backend/internal/stocklog"
	usersvc "github.com/roadcasehq/merchtable-backend/internal/users"
	"github.com/roadcasehq/merchtable-backend/pkg/config"
	"github.com/roadcasehq/merchtable-backend/pkg/enums"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Users     usersvc.Service
	Sessions  sessionsvc.Service
	Sales     salesvc.Service
	Inventory inventory.Service
	StockLog  *stocklog.Repository
	Bands     bandsvc.Service
	Alerts    alertsvc.Service
	Reports   reportsvc.Service

	// Health probes, keyed by dependency name. Nil entries are skipped.
	Pingers map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Users, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Users, logg))
			r.Post("/change-password", controllers.AuthChangePassword(deps.Users, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		// Anyone on staff can run the merch table.
		r.Route("/session", func(r chi.Router) {
			r.Get("/", controllers.SessionGet(deps.Sessions, logg))
			r.Post("/items", controllers.SessionAdd(deps.Sessions, logg))
			r.Put("/items/{merchandiseId}", controllers.SessionUpdateItem(deps.Sessions, logg))
			r.Delete("/items/{merchandiseId}", controllers.SessionRemoveItem(deps.Sessions, logg))
			r.Delete("/", controllers.SessionClear(deps.Sessions, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/validate", controllers.SalesValidate(deps.Sales, logg))
			r.Post("/record", controllers.SalesRecord(deps.Sales, logg))
			r.Get("/", controllers.SalesList(deps.Sales, logg))
			r.Get("/batches/{batchId}", controllers.SalesBatch(deps.Sales, logg))
		})

		r.Route("/merchandise", func(r chi.Router) {
			r.Get("/", controllers.MerchandiseList(deps.Inventory, logg))
			r.Get("/{merchandiseId}", controllers.MerchandiseGet(deps.Inventory, logg))
			r.Get("/{merchandiseId}/stock-log", controllers.MerchandiseStockLog(deps.StockLog, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Post("/", controllers.MerchandiseCreate(deps.Inventory, logg))
				r.Patch("/{merchandiseId}", controllers.MerchandiseUpdate(deps.Inventory, logg))
				r.Post("/{merchandiseId}/adjust-stock", controllers.MerchandiseAdjustStock(deps.Inventory, logg))
				r.Delete("/{merchandiseId}", controllers.MerchandiseDeactivate(deps.Inventory, logg))
			})
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", controllers.AlertsList(deps.Alerts, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleAdmin)).
				Post("/{alertId}/resolve", controllers.AlertsResolve(deps.Alerts, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleAdmin)).
				Post("/{alertId}/dismiss", controllers.AlertsDismiss(deps.Alerts, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales", controllers.ReportsSales(deps.Reports, logg))
			r.Get("/sales/export", controllers.ReportsSalesCSV(deps.Reports, logg))
			r.Get("/inventory", controllers.ReportsInventory(deps.Reports, logg))
		})

		r.Get("/sales-pages/by-slug/{slug}", controllers.SalesPagesGetBySlug(deps.Bands, logg))
		r.Get("/sales-pages/{pageId}", controllers.SalesPagesGet(deps.Bands, logg))

		r.Route("/bands", func(r chi.Router) {
			r.Get("/", controllers.BandsList(deps.Bands, logg))
			r.Get("/{bandId}", controllers.BandsGet(deps.Bands, logg))
			r.Get("/{bandId}/tours", controllers.ToursList(deps.Bands, logg))
			r.Get("/{bandId}/shows", controllers.ShowsList(deps.Bands, logg))
			r.Get("/{bandId}/sales-pages", controllers.SalesPagesList(deps.Bands, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Post("/", controllers.BandsCreate(deps.Bands, logg))
				r.Patch("/{bandId}", controllers.BandsUpdate(deps.Bands, logg))
				r.Post("/{bandId}/tours", controllers.ToursCreate(deps.Bands, logg))
				r.Post("/{bandId}/shows", controllers.ShowsCreate(deps.Bands, logg))
				r.Post("/{bandId}/sales-pages", controllers.SalesPagesCreate(deps.Bands, logg))
			})
		})

		r.With(middleware.RequireRole(logg, enums.UserRoleAdmin)).
			Put("/sales-pages/{pageId}/items", controllers.SalesPagesSetItems(deps.Bands, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Post("/", controllers.UsersCreate(deps.Users, logg))
			r.Get("/", controllers.UsersList(deps.Users, logg))
		})
	})

	return r
}
