package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"api-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// RedisWindowStore é um contador de janela fixa compartilhado entre réplicas.
//
// As janelas são alinhadas ao relógio (floor(now/window)); cada chave vira
// prefix:key:indice com INCR atômico e expiração igual à janela.
type RedisWindowStore struct {
	rdb redis.UniversalClient

	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

type RedisWindowOption func(*RedisWindowStore)

func WithWindowPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithRedisClock(now func() time.Time) RedisWindowOption {
	return func(s *RedisWindowStore) { s.now = now }
}

func NewRedisWindowStore(rdb redis.UniversalClient, limit int, window time.Duration, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:    rdb,
		prefix: "ratelimit:window",
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisWindowStore) Limit() int            { return s.limit }
func (s *RedisWindowStore) Window() time.Duration { return s.window }

// Take implementa domain.LimiterStore.
func (s *RedisWindowStore) Take(ctx context.Context, key domain.Key) (domain.Quota, error) {
	if s.window <= 0 {
		return domain.Quota{}, fmt.Errorf("redis window: invalid window %s", s.window)
	}

	now := s.now()
	idx := now.UnixNano() / int64(s.window)
	resetAt := time.Unix(0, (idx+1)*int64(s.window))
	redisKey := s.prefix + ":" + string(key) + ":" + strconv.FormatInt(idx, 10)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// NX: só a primeira request da janela define o TTL.
	pipe.ExpireNX(ctx, redisKey, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Quota{}, fmt.Errorf("redis window: incr %s: %w", redisKey, err)
	}

	count := int(incr.Val())
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return domain.Quota{
		Allowed:   count <= s.limit,
		Limit:     s.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
