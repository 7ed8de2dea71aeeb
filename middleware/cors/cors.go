// Package cors aplica a política CORS do endpoint de contato.
//
// A origem ecoada é sempre a configurada, exceto para origens de
// desenvolvimento conhecidas. Origens desconhecidas recebem a origem
// configurada e falham no navegador.
package cors

import (
	"net/http"
	"slices"
)

const (
	AllowMethods = "POST, OPTIONS"
	AllowHeaders = "Content-Type"
	MaxAge       = "86400"
)

// DevOrigins são as origens locais aceitas além da origem de produção.
var DevOrigins = []string{
	"http://localhost:4321",
	"http://localhost:3000",
	"http://127.0.0.1:4321",
}

type Options struct {
	// AllowedOrigin é a origem de produção (ex.: https://example.com).
	AllowedOrigin string
	// DevOrigins substitui a lista padrão quando não é nil.
	DevOrigins []string
}

// ResolveOrigin decide qual origem ecoar em Access-Control-Allow-Origin.
func ResolveOrigin(requestOrigin, configuredOrigin string, devOrigins []string) string {
	if requestOrigin == configuredOrigin {
		return configuredOrigin
	}
	if requestOrigin != "" && slices.Contains(devOrigins, requestOrigin) {
		return requestOrigin
	}
	return configuredOrigin
}

// Apply escreve os headers CORS.
func Apply(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
	h.Set("Access-Control-Max-Age", MaxAge)
	h.Add("Vary", "Origin")
}

// Middleware aplica os headers antes de qualquer handler escrever, para que
// respostas de erro também os carreguem, e responde o preflight OPTIONS com 204.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	dev := opts.DevOrigins
	if dev == nil {
		dev = DevOrigins
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Apply(w.Header(), ResolveOrigin(r.Header.Get("Origin"), opts.AllowedOrigin, dev))

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
