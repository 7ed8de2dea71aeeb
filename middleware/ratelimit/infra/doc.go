// Package infra implementa os contratos de domain sobre memória, Redis e
// Prometheus.
//
//   - MemoryWindowStore, RedisWindowStore: contagem por janela fixa
//   - ChanPool: vagas de processamento simultâneo
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: desfechos
package infra
