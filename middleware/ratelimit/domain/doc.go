// Package domain reúne os tipos compartilhados pelo rate limit do formulário:
// janela por chave, decisão, desfechos de submissão e pool de vagas.
//
// Nada aqui importa net/http, Redis ou Prometheus.
package domain
