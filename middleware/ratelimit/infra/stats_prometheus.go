package infra

import (
	"context"
	"errors"

	"api-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore exporta as decisões como contador
// api_gateway_ratelimit_decisions_total{decision,method}.
//
// Key e Path ficam fora dos labels: ambos têm cardinalidade aberta.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

// NewPrometheusStatsStore registra o contador em reg. Se já houver um
// coletor idêntico registrado, ele é reutilizado.
func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "api_gateway",
			Subsystem: "ratelimit",
			Name:      "decisions_total",
			Help:      "Rate limit decisions by outcome and HTTP method.",
		},
		[]string{"decision", "method"},
	)

	if err := reg.Register(decisions); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		decisions = existing
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	decision := "denied"
	if ev.Allowed {
		decision = "allowed"
	}
	s.decisions.WithLabelValues(decision, ev.Method).Inc()
	return nil
}
