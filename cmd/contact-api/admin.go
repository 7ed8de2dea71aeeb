package main

import (
	"context"
	"net/http"
	"time"

	"contact-gateway/httpx"
	"contact-gateway/middleware/ratelimit/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// adminRouter serve /healthz, /metrics e /stats fora da porta pública.
// rdb e stats podem ser nil.
func adminRouter(reg *prometheus.Registry, rdb *redis.Client, stats domain.StatsReader, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("healthz: redis ping failed", zap.Error(err))
				httpx.Error(w, http.StatusServiceUnavailable, "redis unavailable")
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		if stats == nil {
			httpx.Error(w, http.StatusNotFound, "stats backend does not support totals")
			return
		}
		totals, err := stats.Totals(r.Context())
		if err != nil {
			logger.Error("stats totals failed", zap.Error(err))
			httpx.Error(w, http.StatusInternalServerError, "stats unavailable")
			return
		}
		out := make(map[string]int64, len(domain.Outcomes))
		for _, o := range domain.Outcomes {
			out[string(o)] = totals[o]
		}
		httpx.JSON(w, http.StatusOK, out)
	})

	return r
}
