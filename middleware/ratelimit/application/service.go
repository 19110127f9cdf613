package application

import (
	"context"
	"fmt"
	"time"

	"api-gateway/middleware/ratelimit/domain"
)

const defaultMinRetryAfter = 1 * time.Second

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.LimiterStore
	// MinRetryAfter é o piso do Retry-After quando bloquear. Padrão 1s.
	MinRetryAfter time.Duration
	// Now permite congelar o relógio em testes.
	Now func() time.Time
}

// Decide consome uma unidade do limite de key.
//
// Falha do store é fail-open: a decisão é Allowed e o erro é devolvido
// apenas para log.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if s.Store == nil {
		return domain.Decision{Allowed: true}, nil
	}
	if s.MinRetryAfter <= 0 {
		s.MinRetryAfter = defaultMinRetryAfter
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	q, err := s.Store.Take(ctx, key)
	if err != nil {
		return domain.Decision{Allowed: true}, fmt.Errorf("ratelimit: take %q: %w", key, err)
	}

	dec := domain.Decision{
		Allowed:   q.Allowed,
		Limit:     q.Limit,
		Remaining: q.Remaining,
		ResetAt:   q.ResetAt,
	}
	if q.Allowed {
		return dec, nil
	}

	retry := q.ResetAt.Sub(now())
	if retry < s.MinRetryAfter {
		retry = s.MinRetryAfter
	}
	dec.RetryAfter = retry
	return dec, nil
}
