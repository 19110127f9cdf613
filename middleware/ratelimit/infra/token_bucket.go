package infra

import (
	"context"
	"math"
	"sync"
	"time"

	"api-gateway/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// TokenBucketStore é um LimiterStore baseado em token bucket (x/time/rate)
// com cache por chave e limpeza periódica de chaves inativas.
type TokenBucketStore struct {
	mu           sync.Mutex
	entries      map[string]*bucketEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type TokenBucketOption func(*TokenBucketStore)

func WithIdleTTL(d time.Duration) TokenBucketOption {
	return func(s *TokenBucketStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) TokenBucketOption {
	return func(s *TokenBucketStore) { s.cleanupEvery = d }
}

func NewTokenBucketStore(rps float64, burst int, opts ...TokenBucketOption) *TokenBucketStore {
	s := &TokenBucketStore{
		entries:      make(map[string]*bucketEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenBucketStore) RPS() float64 { return float64(s.rps) }
func (s *TokenBucketStore) Burst() int   { return s.burst }

// Take implementa domain.LimiterStore.
func (s *TokenBucketStore) Take(_ context.Context, key domain.Key) (domain.Quota, error) {
	lim := s.limiter(string(key))

	now := time.Now()
	allowed := lim.AllowN(now, 1)
	tokens := lim.TokensAt(now)

	q := domain.Quota{
		Allowed:   allowed,
		Limit:     s.burst,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetAt:   now,
	}
	if tokens < 1 && s.rps > 0 {
		missing := 1 - tokens
		q.ResetAt = now.Add(time.Duration(missing / float64(s.rps) * float64(time.Second)))
	}
	return q, nil
}

func (s *TokenBucketStore) limiter(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *TokenBucketStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor limpa chaves inativas periodicamente. Pare cancelando o ctx.
func (s *TokenBucketStore) StartJanitor(ctx context.Context) {
	runJanitor(ctx, s.cleanupEvery, s.Cleanup)
}
