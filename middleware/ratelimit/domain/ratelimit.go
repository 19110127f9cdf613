package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Quota é o estado do limite de uma chave logo após consumir uma unidade.
type Quota struct {
	Allowed bool
	// Limit é a capacidade da janela (ou o burst, no token bucket).
	Limit     int
	Remaining int
	// ResetAt é o instante em que a chave volta a ter capacidade.
	ResetAt time.Time
}

// LimiterStore consome uma unidade do limite associado a uma chave
// (ex: IP, API key, usuário).
//
// A implementação pode ser janela fixa em memória, janela fixa no Redis,
// token bucket, etc. Deve ser segura para uso concorrente: o incremento do
// contador de uma chave é atômico.
type LimiterStore interface {
	Take(ctx context.Context, key Key) (Quota, error)
}

type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
