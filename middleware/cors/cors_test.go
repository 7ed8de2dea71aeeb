package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const prod = "https://rayhan.example"

func TestResolveOrigin(t *testing.T) {
	cases := []struct {
		name, origin, want string
	}{
		{"configured origin", prod, prod},
		{"dev origin echoed", "http://localhost:4321", "http://localhost:4321"},
		{"other dev origin echoed", "http://127.0.0.1:4321", "http://127.0.0.1:4321"},
		{"unknown origin gets configured", "https://evil.example", prod},
		{"missing origin gets configured", "", prod},
		{"dev port mismatch gets configured", "http://localhost:5173", prod},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, ResolveOrigin(c.origin, prod, DevOrigins))
		})
	}
}

func TestMiddleware_PreflightReturnsNoContent(t *testing.T) {
	called := false
	h := Middleware(Options{AllowedOrigin: prod})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodOptions, "http://example/any/path", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.False(t, called)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Body.String())
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestMiddleware_HeadersSurviveErrorResponses(t *testing.T) {
	h := Middleware(Options{AllowedOrigin: prod})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))

	r := httptest.NewRequest(http.MethodPost, "http://example/", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, prod, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_CustomDevOrigins(t *testing.T) {
	h := Middleware(Options{AllowedOrigin: prod, DevOrigins: []string{"http://localhost:5173"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	r := httptest.NewRequest(http.MethodPost, "http://example/", nil)
	r.Header.Set("Origin", "http://localhost:4321")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, prod, w.Header().Get("Access-Control-Allow-Origin"))

	r.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
