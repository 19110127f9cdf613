package gateway

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nomes das dependências reportadas em /ready.
const (
	CheckDatabase     = "database"
	CheckRedis        = "redis"
	CheckExternalAPIs = "external_apis"
)

const (
	checkHealthy   = "healthy"
	checkUnhealthy = "unhealthy"

	probeTimeout = 2 * time.Second
)

// Probe verifica se uma dependência está pronta.
type Probe interface {
	Check(ctx context.Context) error
}

// ProbeFunc adapta uma função a Probe.
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Check(ctx context.Context) error { return f(ctx) }

// RedisProbe faz PING no Redis usado pelo rate limit.
func RedisProbe(rdb redis.UniversalClient) Probe {
	return ProbeFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
}

// runChecks executa as probes configuradas; dependência sem probe é
// reportada como healthy.
func (s *Server) runChecks(ctx context.Context) (ReadyChecks, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ready := true
	check := func(name string) string {
		p, ok := s.probes[name]
		if !ok || p == nil {
			return checkHealthy
		}
		if err := p.Check(ctx); err != nil {
			s.logger.Warnf("[ready] %s check failed: %v", name, err)
			ready = false
			return checkUnhealthy
		}
		return checkHealthy
	}

	checks := ReadyChecks{
		Database:     check(CheckDatabase),
		Redis:        check(CheckRedis),
		ExternalAPIs: check(CheckExternalAPIs),
	}
	return checks, ready
}
