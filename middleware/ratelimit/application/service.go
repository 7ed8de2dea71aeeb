package application

import (
	"context"
	"fmt"
	"time"

	"contact-gateway/middleware/ratelimit/domain"
)

const (
	DefaultLimit  = 5
	DefaultWindow = time.Hour
)

// Service concentra a regra de janela fixa do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store  domain.WindowStore
	Limit  int
	Window time.Duration
}

// Decide contabiliza um hit para a chave e decide se ele é permitido.
//
// Se o store falhar, a requisição é permitida (fail open) e o erro é
// devolvido para quem chamou registrar.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if s.Limit <= 0 {
		s.Limit = DefaultLimit
	}
	if s.Window <= 0 {
		s.Window = DefaultWindow
	}

	win, err := s.Store.Hit(ctx, key, s.Window)
	if err != nil {
		return domain.Decision{Allowed: true}, fmt.Errorf("rate limit store hit %q: %w", key, err)
	}
	if win.Count <= int64(s.Limit) {
		return domain.Decision{Allowed: true, Count: win.Count}, nil
	}
	return domain.Decision{Allowed: false, Count: win.Count, RetryAfter: retryAfter(win.Remaining)}, nil
}

// retryAfter arredonda para cima em segundos inteiros, com mínimo de 1s.
func retryAfter(remaining time.Duration) time.Duration {
	if remaining <= time.Second {
		return time.Second
	}
	secs := remaining / time.Second
	if remaining%time.Second != 0 {
		secs++
	}
	return secs * time.Second
}
