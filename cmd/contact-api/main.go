// Command contact-api serve o endpoint do formulário de contato do portfólio.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"contact-gateway/captcha"
	"contact-gateway/contact"
	"contact-gateway/logging"
	"contact-gateway/mailer"
	"contact-gateway/middleware/cors"
	"contact-gateway/middleware/ratelimit"
	"contact-gateway/middleware/ratelimit/domain"
	"contact-gateway/middleware/ratelimit/infra"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("contact-api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	var rdb *redis.Client
	if cfg.needsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	var windowStore domain.WindowStore
	switch cfg.RateStore {
	case "redis":
		windowStore = infra.NewRedisWindowStore(rdb, infra.WithKeyPrefix(cfg.RedisPrefix+":ratelimit"))
	default:
		mem := infra.NewMemoryWindowStore()
		mem.StartJanitor(ctx)
		windowStore = mem
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		statsStore  domain.StatsStore
		statsReader domain.StatsReader
		memStats    *infra.MemoryStatsStore
	)
	switch cfg.StatsBackend {
	case "memory":
		memStats = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.StatsTrackKeys))
		statsStore, statsReader = memStats, memStats
	case "redis":
		redisStats := infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.RedisPrefix+":stats"),
			infra.WithStatsTTL(cfg.StatsTTL),
			infra.WithStatsBucket(cfg.StatsBucket),
			infra.WithStatsTrackKeys(cfg.StatsTrackKeys),
		)
		statsStore, statsReader = redisStats, redisStats
	case "prometheus":
		prom, err := infra.NewPrometheusStatsStore(reg)
		if err != nil {
			return fmt.Errorf("prometheus stats: %w", err)
		}
		statsStore = prom
	}

	outbound := &http.Client{Timeout: cfg.OutboundTimeout}

	turnstileOpts := []captcha.Option{captcha.WithHTTPClient(outbound)}
	if cfg.TurnstileURL != "" {
		turnstileOpts = append(turnstileOpts, captcha.WithEndpoint(cfg.TurnstileURL))
	}
	resendOpts := []mailer.Option{
		mailer.WithHTTPClient(outbound),
		mailer.WithRate(cfg.ResendRPS, int(cfg.ResendRPS)),
	}
	if cfg.ResendURL != "" {
		resendOpts = append(resendOpts, mailer.WithEndpoint(cfg.ResendURL))
	}

	handler := contact.NewHandler(
		contact.Config{RecipientEmail: cfg.RecipientEmail, SenderEmail: cfg.SenderEmail},
		captcha.NewTurnstile(cfg.TurnstileSecretKey, turnstileOpts...),
		mailer.NewResend(cfg.ResendAPIKey, resendOpts...),
		contact.WithStats(statsStore),
		contact.WithLogger(logger),
	)

	router := contact.NewRouter(handler, contact.RouterOptions{
		CORS: cors.Options{AllowedOrigin: cfg.AllowedOrigin, DevOrigins: cfg.DevOrigins},
		RateLimit: ratelimit.Options{
			Store:               windowStore,
			Stats:               statsStore,
			Limit:               cfg.RateLimit,
			Window:              cfg.RateWindow,
			KeyHeader:           cfg.RateKeyHeader,
			TrustXForwardedFor:  cfg.TrustXFF,
			AddRateLimitHeaders: cfg.AddRateLimitHeaders,
		},
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.ConcurrencyMax,
			AcquireTimeout: cfg.ConcurrencyTimeout,
			Stats:          statsStore,
		},
		Logger: logger,
	})

	servers := []*http.Server{{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}}
	if cfg.AdminAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.AdminAddr,
			Handler:           adminRouter(reg, rdb, statsReader, logger),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	logger.Info("contact-api listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("admin_addr", cfg.AdminAddr),
		zap.String("allowed_origin", cfg.AllowedOrigin))
	logger.Info("rate limit",
		zap.Int("limit", cfg.RateLimit),
		zap.Duration("window", cfg.RateWindow),
		zap.String("store", cfg.RateStore),
		zap.String("key_header", cfg.RateKeyHeader),
		zap.Bool("trust_xff", cfg.TrustXFF))
	logger.Info("stats",
		zap.String("backend", cfg.StatsBackend),
		zap.String("bucket", cfg.StatsBucket),
		zap.Duration("ttl", cfg.StatsTTL),
		zap.Bool("track_keys", cfg.StatsTrackKeys))
	logger.Info("concurrency",
		zap.Int("max", cfg.ConcurrencyMax),
		zap.Duration("acquire_timeout", cfg.ConcurrencyTimeout))

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		_ = srv.Shutdown(shutdownCtx)
	}

	if memStats != nil {
		fields := make([]zap.Field, 0, len(domain.Outcomes))
		total := memStats.Total()
		for _, o := range domain.Outcomes {
			fields = append(fields, zap.Int64(string(o), total[o]))
		}
		logger.Info("submission totals", fields...)
	}
	logger.Info("contact-api stopped")

	return serveErr
}
