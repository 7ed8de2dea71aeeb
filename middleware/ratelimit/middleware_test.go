package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contact-gateway/middleware/ratelimit/domain"
	"contact-gateway/middleware/ratelimit/infra"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type errStore struct{}

type errStats struct{}

func (errStats) Record(context.Context, domain.StatsEvent) error { return errors.New("stats down") }

func (errStore) Hit(context.Context, domain.Key, time.Duration) (domain.Window, error) {
	return domain.Window{}, errors.New("boom")
}

func newRequest(ip string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "http://example/", nil)
	r.Header.Set("CF-Connecting-IP", ip)
	r.RemoteAddr = "10.0.0.1:1234"
	return r
}

func TestMiddleware_AllowsFiveThenRejectsSixth(t *testing.T) {
	store := infra.NewMemoryWindowStore()
	stats := infra.NewMemoryStatsStore()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{
		Store:               store,
		Stats:               stats,
		Limit:               5,
		Window:              time.Hour,
		KeyHeader:           DefaultKeyHeader,
		AddRateLimitHeaders: true,
	})(next)

	for i := 1; i <= 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest("1.2.3.4"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got == "" || got == "0" {
		t.Fatalf("expected positive Retry-After header, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining=0, got %q", got)
	}

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != DefaultMessage {
		t.Fatalf("unexpected error message %q", body.Error)
	}
	if body.RetryAfter <= 0 || body.RetryAfter > 3600 {
		t.Fatalf("expected retryAfter in (0, 3600], got %d", body.RetryAfter)
	}

	if calls != 5 {
		t.Fatalf("expected next handler to be called 5 times, got %d", calls)
	}
	if got := stats.Total()[domain.OutcomeRateLimited]; got != 1 {
		t.Fatalf("expected one rate_limited event, got %d", got)
	}
}

func TestMiddleware_SeparateClientsHaveSeparateQuota(t *testing.T) {
	h := Middleware(Options{
		Store:     infra.NewMemoryWindowStore(),
		Limit:     1,
		KeyHeader: DefaultKeyHeader,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, ip := range []string{"1.1.1.1", "2.2.2.2"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(ip))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", ip, w.Code)
		}
	}
}

func TestMiddleware_PutsKeyInContext(t *testing.T) {
	var seen string
	h := Middleware(Options{
		Store:     infra.NewMemoryWindowStore(),
		KeyHeader: DefaultKeyHeader,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = KeyFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), newRequest("9.9.9.9"))
	if seen != "9.9.9.9" {
		t.Fatalf("expected key in context, got %q", seen)
	}
}

func TestMiddleware_FailsOpenWhenStoreErrors(t *testing.T) {
	h := Middleware(Options{Store: errStore{}, Limit: 1})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest("1.2.3.4"))
		if w.Code != http.StatusOK {
			t.Fatalf("expected fail open 200, got %d", w.Code)
		}
	}
}

func TestKeyFromContext_DefaultsToUnknown(t *testing.T) {
	if got := KeyFromContext(context.Background()); got != UnknownKey {
		t.Fatalf("expected %q, got %q", UnknownKey, got)
	}
}

func TestMiddleware_LogsStatsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	h := Middleware(Options{
		Store:  infra.NewMemoryWindowStore(),
		Stats:  errStats{},
		Limit:  1,
		Logger: zap.New(core),
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, newRequest("1.2.3.4"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 even when stats fail, got %d", w.Code)
	}
	entries := logs.FilterMessage("stats record failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one stats warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["outcome"]; got != string(domain.OutcomeRateLimited) {
		t.Fatalf("unexpected outcome field %v", got)
	}
}
