package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contact-gateway/httpx"
	"contact-gateway/middleware/ratelimit/application"
	"contact-gateway/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

const (
	// DefaultKeyHeader é o header com o IP real do cliente atrás do Cloudflare.
	DefaultKeyHeader = "CF-Connecting-IP"
	// UnknownKey é usado quando não dá para identificar o cliente.
	UnknownKey = "unknown"

	DefaultMessage = "Too many requests. Please try again later."
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Store  domain.WindowStore
	Stats  domain.StatsStore
	Limit  int
	Window time.Duration

	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool

	// Message vai no campo "error" do 429.
	Message             string
	AddRateLimitHeaders bool
	Logger              *zap.Logger
}

type ctxKey struct{}

// WithKey guarda a chave do cliente no contexto.
func WithKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// KeyFromContext retorna a chave extraída pelo middleware, ou UnknownKey.
func KeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return UnknownKey
}

// DefaultKeyFunc extrai a chave na ordem: header configurado, primeiro IP do
// X-Forwarded-For (se confiável), host do RemoteAddr.
//
// O header não é assinado: sem um proxy confiável na frente ele pode ser forjado.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return UnknownKey
	}
}

// Middleware aplica o rate limit de janela fixa por chave. Requisições bloqueadas
// recebem 429 com {"error", "retryAfter"}; as permitidas seguem com a chave no
// contexto (KeyFromContext).
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Limit <= 0 {
		opts.Limit = application.DefaultLimit
	}

	svc := application.Service{
		Store:  opts.Store,
		Limit:  opts.Limit,
		Window: opts.Window,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			ctx := WithKey(r.Context(), key)

			dec, err := svc.Decide(ctx, domain.Key(key))
			if err != nil {
				opts.Logger.Warn("rate limit store failed, allowing request",
					zap.String("client_ip", key),
					zap.Error(err))
			}

			if opts.AddRateLimitHeaders && opts.Store != nil {
				remaining := int64(opts.Limit) - dec.Count
				if remaining < 0 {
					remaining = 0
				}
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(opts.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			}

			if !dec.Allowed {
				if opts.Stats != nil {
					if err := opts.Stats.Record(ctx, domain.StatsEvent{
						Key:     domain.Key(key),
						Outcome: domain.OutcomeRateLimited,
						At:      time.Now(),
					}); err != nil {
						opts.Logger.Warn("stats record failed",
							zap.String("outcome", string(domain.OutcomeRateLimited)),
							zap.Error(err))
					}
				}
				opts.Logger.Info("rate limited",
					zap.String("client_ip", key),
					zap.Int64("count", dec.Count),
					zap.Duration("retry_after", dec.RetryAfter))
				httpx.TooManyRequests(w, opts.Message, int(dec.RetryAfter/time.Second))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
