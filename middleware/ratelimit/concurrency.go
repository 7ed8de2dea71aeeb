package ratelimit

import (
	"net/http"
	"time"

	"contact-gateway/httpx"
	"contact-gateway/middleware/ratelimit/application"
	"contact-gateway/middleware/ratelimit/domain"
	"contact-gateway/middleware/ratelimit/infra"

	"go.uber.org/zap"
)

const DefaultBusyMessage = "Server is busy. Please try again later."

type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	Stats          domain.StatsStore
	Message        string
	Logger         *zap.Logger
}

// ConcurrencyMiddleware limita submissões simultâneas. Max <= 0 desliga o limite.
// Sem vaga, responde 503 em JSON.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Message == "" {
		opts.Message = DefaultBusyMessage
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				if opts.Stats != nil {
					if err := opts.Stats.Record(r.Context(), domain.StatsEvent{
						Key:     domain.Key(KeyFromContext(r.Context())),
						Outcome: domain.OutcomeBusy,
						At:      time.Now(),
					}); err != nil {
						opts.Logger.Warn("stats record failed",
							zap.String("outcome", string(domain.OutcomeBusy)),
							zap.Error(err))
					}
				}
				httpx.Error(w, http.StatusServiceUnavailable, opts.Message)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
