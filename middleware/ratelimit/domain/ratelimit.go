package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

// Key identifica o cliente (normalmente o IP).
type Key string

// Window é o estado de uma janela fixa depois de contabilizar um hit.
type Window struct {
	// Count é o número de hits na janela atual, incluindo o hit que acabou de ser contado.
	Count int64
	// Remaining é quanto falta para a janela expirar (windowResetAt - now).
	Remaining time.Duration
}

// WindowStore contabiliza hits por chave em janelas fixas.
//
// Hit incrementa o contador da chave. Se não houver janela ativa (ou ela já
// expirou), abre uma nova com Count=1 e duração `window`.
//
// A implementação pode ser em memória, Redis, etc. O estado é injetado no
// Service, então não existe mapa global de contadores.
type WindowStore interface {
	Hit(ctx context.Context, key Key, window time.Duration) (Window, error)
}

type Decision struct {
	Allowed bool
	// Count é o valor do contador após este hit.
	Count int64
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
