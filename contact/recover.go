package contact

import (
	"net/http"

	"contact-gateway/httpx"

	"go.uber.org/zap"
)

// Recoverer transforma panic em 500 genérico. Deve rodar depois do middleware
// de CORS, que já escreveu os headers.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic while handling request",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"))
				httpx.Error(w, http.StatusInternalServerError, MsgUnexpected)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
