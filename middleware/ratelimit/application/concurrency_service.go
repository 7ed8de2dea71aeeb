package application

import (
	"context"
	"time"

	"contact-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService decide se uma submissão pode começar agora, limitando
// quantas ficam em andamento ao mesmo tempo. Não sabe nada sobre HTTP.
type ConcurrencyService struct {
	Pool domain.SlotPool
	// AcquireTimeout <= 0 espera até o ctx da requisição encerrar.
	AcquireTimeout time.Duration
}

// Acquire retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida e
// release não deve ser chamado.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}
	return s.Pool.Acquire(ctx)
}
