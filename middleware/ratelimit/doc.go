// Package ratelimit fornece adapters HTTP (net/http) para rate limit e limite de concorrência
// do endpoint de contato.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (janela fixa allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela em memória/Redis, semáforo, estatísticas)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo no servidor de contato:
//
//  1. Extrai a chave do cliente (CF-Connecting-IP/XFF/RemoteAddr)
//  2. Chama a camada application para obter a decisão
//  3. Se bloqueado, responde 429 (rate limit) ou 503 (concorrência) em JSON
//  4. Se permitido, chama o próximo handler com a chave no contexto
//
// Variáveis de ambiente do binário (cmd/contact-api) controlam o comportamento,
// como RATE_LIMIT, RATE_WINDOW, RATE_STORE, CONCURRENCY_MAX e CONCURRENCY_TIMEOUT.
package ratelimit
