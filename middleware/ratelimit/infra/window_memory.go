package infra

import (
	"context"
	"sync"
	"time"

	"api-gateway/middleware/ratelimit/domain"
)

// WindowStore é um contador de janela fixa por chave, em memória.
//
// A janela de uma chave começa no primeiro hit e termina em start+window;
// a partir daí o contador volta a zero. Requests bloqueadas também contam.
type WindowStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	limit        int
	window       time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

type WindowOption func(*WindowStore)

// WithClock injeta o relógio (testes).
func WithClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) { s.now = now }
}

func WithWindowCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

func NewWindowStore(limit int, window time.Duration, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:      make(map[string]*windowEntry),
		limit:        limit,
		window:       window,
		cleanupEvery: time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) Limit() int            { return s.limit }
func (s *WindowStore) Window() time.Duration { return s.window }

// Take implementa domain.LimiterStore.
func (s *WindowStore) Take(_ context.Context, key domain.Key) (domain.Quota, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[string(key)]
	if !ok || !now.Before(ent.resetAt) {
		ent = &windowEntry{resetAt: now.Add(s.window)}
		s.entries[string(key)] = ent
	}
	ent.count++

	remaining := s.limit - ent.count
	if remaining < 0 {
		remaining = 0
	}
	return domain.Quota{
		Allowed:   ent.count <= s.limit,
		Limit:     s.limit,
		Remaining: remaining,
		ResetAt:   ent.resetAt,
	}, nil
}

// Reset zera todos os contadores.
func (s *WindowStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*windowEntry)
}

// Len retorna o número de chaves com janela registrada.
func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove janelas já expiradas.
func (s *WindowStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !now.Before(ent.resetAt) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor limpa janelas expiradas periodicamente. Pare cancelando o ctx.
func (s *WindowStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.cleanupEvery, s.Cleanup)
}
