package controllers

import (
	"context"
	"net/http"

	"github.com/roadcasehq/merchtable-backend/api/responses"
	"github.com/roadcasehq/merchtable-backend/pkg/config"
	"github.com/roadcasehq/merchtable-backend/pkg/logger"
)

// Pinger verifies a dependency is reachable.
type Pinger interface {
	Ping(context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MerchTable-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the wired dependencies. Nil pingers are skipped so
// workers can reuse the handler with a partial stack.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MerchTable-Env", cfg.App.Env)

		status := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				healthy = false
				status[name] = "down"
				if logg != nil {
					logg.Error(r.Context(), name+" ping failed", err)
				}
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
