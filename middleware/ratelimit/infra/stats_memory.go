package infra

import (
	"context"
	"sync"

	"contact-gateway/middleware/ratelimit/domain"
)

// Counters agrega eventos por desfecho.
type Counters map[domain.Outcome]int64

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento; os totais são logados no shutdown.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu    sync.Mutex
	total Counters
	byKey map[domain.Key]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		total: make(Counters),
		byKey: make(map[domain.Key]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total[ev.Outcome]++
	if s.trackKeys && ev.Key != "" {
		c, ok := s.byKey[ev.Key]
		if !ok {
			c = make(Counters)
			s.byKey[ev.Key] = c
		}
		c[ev.Outcome]++
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.total)
}

// Totals implementa domain.StatsReader.
func (s *MemoryStatsStore) Totals(context.Context) (map[domain.Outcome]int64, error) {
	return s.Total(), nil
}

func (s *MemoryStatsStore) ByKey() map[domain.Key]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Key]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = copyCounters(v)
	}
	return out
}

func copyCounters(in Counters) Counters {
	out := make(Counters, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
