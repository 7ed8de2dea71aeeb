package infra

import (
	"context"

	"contact-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe os desfechos como contador Prometheus.
// A chave (IP) não vira label para não explodir cardinalidade.
type PrometheusStatsStore struct {
	submissions *prometheus.CounterVec
}

// NewPrometheusStatsStore registra o contador em reg (use prometheus.NewRegistry
// em testes para não colidir com o registry global).
func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	submissions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact form submissions by outcome",
		},
		[]string{"outcome"},
	)
	if err := reg.Register(submissions); err != nil {
		return nil, err
	}
	// pré-cria as séries para que apareçam zeradas no /metrics
	for _, o := range domain.Outcomes {
		submissions.WithLabelValues(string(o))
	}
	return &PrometheusStatsStore{submissions: submissions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	if ev.Outcome == "" {
		return nil
	}
	s.submissions.WithLabelValues(string(ev.Outcome)).Inc()
	return nil
}
