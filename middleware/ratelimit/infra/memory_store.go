package infra

import (
	"context"
	"sync"
	"time"

	"contact-gateway/middleware/ratelimit/domain"
)

// MemoryWindowStore é um WindowStore de janela fixa em memória do processo.
//
// O estado é perdido quando o processo reinicia (todos voltam a ter cota cheia).
// Janelas expiradas são sobrescritas no próximo hit e removidas pelo janitor.
type MemoryWindowStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*windowEntry
	now          func() time.Time
	cleanupEvery time.Duration
}

type windowEntry struct {
	count   int64
	resetAt time.Time
}

type MemoryStoreOption func(*MemoryWindowStore)

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryWindowStore) { s.now = now }
}

func WithCleanupEvery(d time.Duration) MemoryStoreOption {
	return func(s *MemoryWindowStore) { s.cleanupEvery = d }
}

func NewMemoryWindowStore(opts ...MemoryStoreOption) *MemoryWindowStore {
	s := &MemoryWindowStore{
		entries:      make(map[domain.Key]*windowEntry),
		now:          time.Now,
		cleanupEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hit implementa domain.WindowStore.
func (s *MemoryWindowStore) Hit(_ context.Context, key domain.Key, window time.Duration) (domain.Window, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || now.After(ent.resetAt) {
		ent = &windowEntry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = ent
		return domain.Window{Count: 1, Remaining: window}, nil
	}

	ent.count++
	return domain.Window{Count: ent.count, Remaining: ent.resetAt.Sub(now)}, nil
}

// Len retorna quantas chaves estão em memória.
func (s *MemoryWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove janelas que já expiraram.
func (s *MemoryWindowStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if now.After(ent.resetAt) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryWindowStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
