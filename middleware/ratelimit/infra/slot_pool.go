package infra

import (
	"context"
	"sync"
)

// SlotPool é o semáforo de requests em voo, um token no channel por vaga.
type SlotPool struct {
	slots chan struct{}
}

func NewSlotPool(size int) *SlotPool {
	if size < 1 {
		size = 1
	}
	return &SlotPool{slots: make(chan struct{}, size)}
}

// Acquire implementa domain.SlotPool. O release é idempotente.
func (p *SlotPool) Acquire(ctx context.Context) (func(), bool) {
	// vaga livre não depende do ctx, mesmo se ele já tiver encerrado
	select {
	case p.slots <- struct{}{}:
		return p.releaser(), true
	default:
	}

	select {
	case p.slots <- struct{}{}:
		return p.releaser(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *SlotPool) releaser() func() {
	var once sync.Once
	return func() { once.Do(func() { <-p.slots }) }
}

func (p *SlotPool) InUse() int { return len(p.slots) }
func (p *SlotPool) Size() int  { return cap(p.slots) }
