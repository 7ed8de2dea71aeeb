package infra

import (
	"context"
	"sync"
)

// ChanPool é um semáforo baseado em channel com capacidade fixa.
type ChanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool com capacidade `max` (submissões simultâneas).
func NewChanPool(max int) *ChanPool {
	return &ChanPool{sem: make(chan struct{}, max)}
}

// Acquire implementa domain.SlotPool. O release é idempotente.
func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.sem }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

// InUse retorna quantas vagas estão ocupadas.
func (p *ChanPool) InUse() int { return len(p.sem) }

// Cap retorna a capacidade total.
func (p *ChanPool) Cap() int { return cap(p.sem) }
