package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roadcasehq/merchtable-backend/api/controllers"
	"github.com/roadcasehq/merchtable-backend/api/routes"
	"github.com/roadcasehq/merchtable-backend/internal/alerts"
	"github.com/roadcasehq/merchtable-backend/internal/bands"
	"github.com/roadcasehq/merchtable-backend/internal/inventory"
	"github.com/roadcasehq/merchtable-backend/internal/reports"
	"github.com/roadcasehq/merchtable-backend/internal/sales"
	"github.com/roadcasehq/merchtable-backend/internal/session"
	"github.com/roadcasehq/merchtable-backend/internal/stocklog"
	"github.com/roadcasehq/merchtable-backend/internal/users"
	"github.com/roadcasehq/merchtable-backend/pkg/config"
	"github.com/roadcasehq/merchtable-backend/pkg/db"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
	"github.com/roadcasehq/merchtable-backend/pkg/metrics"
	"github.com/roadcasehq/merchtable-backend/pkg/migrate"
	"github.com/roadcasehq/merchtable-backend/pkg/outbox"
	"github.com/roadcasehq/merchtable-backend/pkg/redis"
	"github.com/roadcasehq/merchtable-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	// the interface stays untyped nil when square is off, so the commit
	// path rejects card capture instead of calling a nil charger
	var charger sales.CardCharger
	if cfg.Square.Enabled() {
		squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap square", err)
			os.Exit(1)
		}
		squareCharger, err := sales.NewSquareCharger(squareClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create card charger", err)
			os.Exit(1)
		}
		charger = squareCharger
	}

	gormDB := dbClient.DB()
	merchRepo := inventory.NewRepository(gormDB)
	stockLogRepo := stocklog.NewRepository(gormDB)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)
	salesMetrics := metrics.NewSalesMetrics(prometheus.DefaultRegisterer)

	sessionStore, err := session.NewRedisStore(redisClient, cfg.Session.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}
	sessionService, err := session.NewService(sessionStore, merchRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(
		sales.NewRepository(gormDB),
		merchRepo,
		stockLogRepo,
		sessionService,
		dbClient,
		outboxService,
		charger,
		salesMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(merchRepo, dbClient, stockLogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	alertsService, err := alerts.NewService(alerts.NewRepository(gormDB), merchRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create alerts service", err)
		os.Exit(1)
	}

	bandsService, err := bands.NewService(bands.NewRepository(gormDB), merchRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create bands service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(reports.NewRepository(gormDB), merchRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.NewRepository(gormDB), redisClient, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			Users:     usersService,
			Sessions:  sessionService,
			Sales:     salesService,
			Inventory: inventoryService,
			StockLog:  stockLogRepo,
			Bands:     bandsService,
			Alerts:    alertsService,
			Reports:   reportsService,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
