package contact

import (
	"net/http"

	"contact-gateway/httpx"
	"contact-gateway/middleware/cors"
	"contact-gateway/middleware/ratelimit"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RouterOptions struct {
	CORS        cors.Options
	RateLimit   ratelimit.Options
	Concurrency ratelimit.ConcurrencyOptions
	Logger      *zap.Logger
}

// NewRouter monta o endpoint único: OPTIONS em qualquer caminho é preflight,
// POST em qualquer caminho é submissão, qualquer outro verbo é 405.
func NewRouter(h http.Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RateLimit.Logger == nil {
		opts.RateLimit.Logger = logger
	}
	if opts.Concurrency.Logger == nil {
		opts.Concurrency.Logger = logger
	}

	r := chi.NewRouter()
	r.Use(cors.Middleware(opts.CORS))
	r.Use(Recoverer(logger))

	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})
	r.MethodNotAllowed(methodNotAllowed)
	r.NotFound(methodNotAllowed)

	submit := r.With(
		ratelimit.Middleware(opts.RateLimit),
		ratelimit.ConcurrencyMiddleware(opts.Concurrency),
	)
	submit.Post("/", h.ServeHTTP)
	submit.Post("/*", h.ServeHTTP)

	return r
}
