// Package application decide, sem conhecer HTTP, se uma submissão pode seguir:
// Service aplica a janela fixa por IP e ConcurrencyService controla as vagas
// de processamento simultâneo.
package application
