package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8787"`
	// AdminAddr expõe /healthz e /metrics; vazio desliga.
	AdminAddr string `env:"ADMIN_ADDR"`

	RecipientEmail     string `env:"RECIPIENT_EMAIL,required,notEmpty"`
	SenderEmail        string `env:"SENDER_EMAIL,required,notEmpty"`
	AllowedOrigin      string `env:"ALLOWED_ORIGIN,required,notEmpty"`
	ResendAPIKey       string `env:"RESEND_API_KEY,required,notEmpty"`
	TurnstileSecretKey string `env:"TURNSTILE_SECRET_KEY,required,notEmpty"`

	DevOrigins []string `env:"DEV_ORIGINS" envSeparator:"," envDefault:"http://localhost:4321,http://localhost:3000,http://127.0.0.1:4321"`

	RateLimit           int           `env:"RATE_LIMIT" envDefault:"5"`
	RateWindow          time.Duration `env:"RATE_WINDOW" envDefault:"1h"`
	RateKeyHeader       string        `env:"RATE_KEY_HEADER" envDefault:"CF-Connecting-IP"`
	TrustXFF            bool          `env:"TRUST_XFF" envDefault:"false"`
	AddRateLimitHeaders bool          `env:"ADD_RATELIMIT_HEADERS" envDefault:"false"`
	RateStore           string        `env:"RATE_STORE" envDefault:"memory"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"contact"`

	StatsBackend   string        `env:"STATS_BACKEND" envDefault:"none"`
	StatsTTL       time.Duration `env:"STATS_TTL" envDefault:"24h"`
	StatsBucket    string        `env:"STATS_BUCKET" envDefault:"minute"`
	StatsTrackKeys bool          `env:"STATS_TRACK_KEYS" envDefault:"false"`

	ConcurrencyMax     int           `env:"CONCURRENCY_MAX" envDefault:"64"`
	ConcurrencyTimeout time.Duration `env:"CONCURRENCY_TIMEOUT" envDefault:"0s"`

	ResendRPS       float64       `env:"RESEND_RPS" envDefault:"2"`
	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"10s"`
	TurnstileURL    string        `env:"TURNSTILE_URL"`
	ResendURL       string        `env:"RESEND_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

func readConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.RateStore = strings.ToLower(strings.TrimSpace(cfg.RateStore))
	cfg.StatsBackend = strings.ToLower(strings.TrimSpace(cfg.StatsBackend))
	cfg.AllowedOrigin = strings.TrimRight(strings.TrimSpace(cfg.AllowedOrigin), "/")
	cfg.DevOrigins = trimAll(cfg.DevOrigins)

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.RateLimit <= 0 {
		return errors.New("RATE_LIMIT must be > 0")
	}
	if c.RateWindow <= 0 {
		return errors.New("RATE_WINDOW must be > 0")
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if c.OutboundTimeout <= 0 {
		return errors.New("OUTBOUND_TIMEOUT must be > 0")
	}

	switch c.RateStore {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("REDIS_ADDR is required when RATE_STORE=redis")
		}
	default:
		return fmt.Errorf("RATE_STORE must be memory or redis, got %q", c.RateStore)
	}

	switch c.StatsBackend {
	case "none", "memory", "prometheus":
	case "redis":
		if strings.TrimSpace(c.RedisAddr) == "" {
			return errors.New("REDIS_ADDR is required when STATS_BACKEND=redis")
		}
	default:
		return fmt.Errorf("STATS_BACKEND must be none, memory, redis or prometheus, got %q", c.StatsBackend)
	}

	u, err := url.Parse(c.AllowedOrigin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ALLOWED_ORIGIN must be an origin like https://example.com, got %q", c.AllowedOrigin)
	}
	return nil
}

// needsRedis diz se algum backend configurado usa Redis.
func (c config) needsRedis() bool {
	return c.RateStore == "redis" || c.StatsBackend == "redis"
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
