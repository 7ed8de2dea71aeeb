package domain

import (
	"context"
	"time"
)

// Outcome é o desfecho de uma submissão do formulário.
type Outcome string

const (
	OutcomeSent          Outcome = "sent"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeBusy          Outcome = "busy"
	OutcomeInvalid       Outcome = "invalid"
	OutcomeCaptchaFailed Outcome = "captcha_failed"
	OutcomeEmailFailed   Outcome = "email_failed"
	OutcomeError         Outcome = "error"
)

// Outcomes lista todos os desfechos conhecidos (útil para pré-registrar séries).
var Outcomes = []Outcome{
	OutcomeSent,
	OutcomeRateLimited,
	OutcomeBusy,
	OutcomeInvalid,
	OutcomeCaptchaFailed,
	OutcomeEmailFailed,
	OutcomeError,
}

// StatsEvent representa o desfecho de uma requisição.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Key     Key
	Outcome Outcome

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// Quem chama deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// StatsReader expõe os totais acumulados por desfecho (endpoint /stats do admin).
type StatsReader interface {
	Totals(ctx context.Context) (map[Outcome]int64, error)
}
