package infra

import (
	"context"
	"time"
)

// runJanitor chama fn a cada intervalo até o ctx encerrar.
func runJanitor(ctx context.Context, every time.Duration, fn func()) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				fn()
			}
		}
	}()
}
