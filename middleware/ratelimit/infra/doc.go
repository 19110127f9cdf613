// Package infra contém as implementações concretas dos contratos de domain.
//
//   - WindowStore: janela fixa por chave em memória (padrão do gateway)
//   - RedisWindowStore: janela fixa compartilhada via Redis (INCR + EXPIRE)
//   - TokenBucketStore: token bucket por chave com golang.org/x/time/rate
//   - SlotPool: semáforo para limite de concorrência
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: estatísticas
package infra
