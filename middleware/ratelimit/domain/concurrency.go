package domain

import "context"

// SlotPool limita quantas submissões podem estar em andamento ao mesmo tempo
// (cada uma segura chamadas externas para Turnstile e Resend).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
