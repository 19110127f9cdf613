package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão do rate limit.
//
// Method/Path são strings genéricas. Cuidado com cardinalidade: gravar Key ou
// Path sem controle pode explodir o número de séries em Redis/Prometheus.
type StatsEvent struct {
	Key     Key
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// StatsStore persiste estatísticas do rate limit (memória, Redis, Prometheus).
//
// O middleware trata erro como best-effort: nunca derruba a request.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
