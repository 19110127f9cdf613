package application

import (
	"context"
	"time"

	"api-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService limita requests em voo, com espera opcionalmente
// limitada por AcquireTimeout.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta reservar uma vaga.
// Sem timeout (<= 0) espera até o ctx cancelar. Retorna (release, ok); com
// ok=false nenhuma vaga foi reservada.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}
