package infra

import (
	"context"
	"testing"

	"contact-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusStatsStore_IncrementsOutcomeCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPrometheusStatsStore(reg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Outcome: domain.OutcomeSent})
	_ = s.Record(ctx, domain.StatsEvent{Key: "b", Outcome: domain.OutcomeSent})
	_ = s.Record(ctx, domain.StatsEvent{Key: "b", Outcome: domain.OutcomeCaptchaFailed})

	if got := testutil.ToFloat64(s.submissions.WithLabelValues("sent")); got != 2 {
		t.Fatalf("expected sent=2, got %v", got)
	}
	if got := testutil.ToFloat64(s.submissions.WithLabelValues("captcha_failed")); got != 1 {
		t.Fatalf("expected captcha_failed=1, got %v", got)
	}
	if n := testutil.CollectAndCount(s.submissions); n != len(domain.Outcomes) {
		t.Fatalf("expected one series per outcome, got %d", n)
	}
}

func TestPrometheusStatsStore_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusStatsStore(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusStatsStore(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
