package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger: зависимость, доступность которой проверяет /healthz
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health отвечает 200, если все зависимости доступны, иначе 503
func Health(logger *slog.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				logger.Error("health check failed", "dependency", name, "error", err)
				respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "dependency": name}, logger)
				return
			}
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
