// Package app liga a configuração aos componentes do gateway: stores do rate
// limit, cliente Redis, métricas, cadeia de middlewares e servidores HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"api-gateway/internal/config"
	"api-gateway/internal/gateway"
	"api-gateway/middleware/accesslog"
	"api-gateway/middleware/body"
	"api-gateway/middleware/chain"
	"api-gateway/middleware/compress"
	"api-gateway/middleware/cors"
	"api-gateway/middleware/ratelimit"
	"api-gateway/middleware/ratelimit/domain"
	"api-gateway/middleware/ratelimit/infra"
	"api-gateway/middleware/recovery"
	"api-gateway/middleware/requestid"
	"api-gateway/middleware/secure"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type App struct {
	cfg    config.Config
	logger *log.Logger
	now    func() time.Time

	server  *gateway.Server
	handler http.Handler
	metrics http.Handler

	rdb       redis.UniversalClient
	ownsRedis bool
	registry  *prometheus.Registry
	store     domain.LimiterStore
	janitors  []func(context.Context)
}

type Option func(*App)

// WithClock injeta o relógio usado no uptime, timestamps e janelas.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithRedisClient usa um cliente já criado em vez de abrir um novo.
func WithRedisClient(rdb redis.UniversalClient) Option {
	return func(a *App) { a.rdb = rdb }
}

func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) { a.registry = reg }
}

func New(cfg config.Config, logger *log.Logger, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.StandardLogger()
	}

	if a.rdb == nil && cfg.UsesRedis() {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		a.ownsRedis = true
	}

	if a.registry == nil && (cfg.MetricsPort > 0 || cfg.Stats.Backend == config.StatsPrometheus) {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	probes := map[string]gateway.Probe{}
	if a.rdb != nil {
		probes[gateway.CheckRedis] = gateway.RedisProbe(a.rdb)
	}
	a.server = gateway.New(gateway.Options{
		Environment:  cfg.EnvironmentName(),
		ExposeErrors: cfg.Development(),
		Now:          a.now,
		Probes:       probes,
		Logger:       a.logger,
	})

	mws, err := a.middlewares()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.handler = mws.Then(a.server.Router())

	if a.registry != nil {
		requests := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "api_gateway",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"})
		if err := a.registry.Register(requests); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: register request metrics: %w", err)
		}
		a.handler = promhttp.InstrumentHandlerCounter(requests, a.handler)
		a.metrics = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	}
	return a, nil
}

// middlewares monta a cadeia na ordem fixa do gateway. Request id, access
// log e recovery ficam por fora de todo o resto.
func (a *App) middlewares() (chain.Chain, error) {
	gz, err := compress.Middleware(compress.Options{})
	if err != nil {
		return nil, err
	}

	var limiter chain.Middleware
	if a.cfg.RateLimit.Enabled {
		limiter, err = a.rateLimiter()
		if err != nil {
			return nil, err
		}
	}

	return chain.New(
		requestid.Middleware,
		accesslog.Middleware(a.logger),
		recovery.Middleware(a.server.RecoverPanic),
		secure.Middleware(secure.Options{}),
		cors.Middleware(cors.Options{
			AllowedOrigins: a.cfg.CORSOrigins,
			ExposedHeaders: strings.Join(a.cfg.CORSExposed, ","),
		}),
		gz,
		limiter,
		ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            a.cfg.Concurrency.Max,
			AcquireTimeout: a.cfg.Concurrency.Timeout,
			Logger:         a.logger,
		}),
		body.Middleware(body.Options{Limit: a.cfg.BodyLimit}),
	), nil
}

func (a *App) rateLimiter() (chain.Middleware, error) {
	rl := a.cfg.RateLimit

	switch rl.Algorithm {
	case config.AlgorithmTokenBucket:
		s := infra.NewTokenBucketStore(rl.RPS, rl.Burst, infra.WithCleanupEvery(rl.CleanupEvery))
		a.store = s
		a.janitors = append(a.janitors, s.StartJanitor)
	default:
		if a.rdb != nil {
			a.store = infra.NewRedisWindowStore(a.rdb, rl.Limit, rl.Window,
				infra.WithWindowPrefix(rl.RedisPrefix),
				infra.WithRedisClock(a.now),
			)
		} else {
			s := infra.NewWindowStore(rl.Limit, rl.Window,
				infra.WithClock(a.now),
				infra.WithWindowCleanupEvery(rl.CleanupEvery),
			)
			a.store = s
			a.janitors = append(a.janitors, s.StartJanitor)
		}
	}

	stats, err := a.statsStore()
	if err != nil {
		return nil, err
	}

	return ratelimit.Middleware(ratelimit.Options{
		Store:               a.store,
		Stats:               stats,
		RouteFn:             a.server.RouteTemplate,
		KeyHeader:           rl.KeyHeader,
		TrustXForwardedFor:  rl.TrustXFF,
		AddRateLimitHeaders: rl.AddHeaders,
		Logger:              a.logger,
		Now:                 a.now,
	}), nil
}

func (a *App) statsStore() (domain.StatsStore, error) {
	st := a.cfg.Stats

	switch st.Backend {
	case config.StatsMemory:
		return infra.NewMemoryStatsStore(infra.WithTrackKeys(st.TrackKeys)), nil
	case config.StatsRedis:
		if a.rdb == nil {
			return nil, config.ErrRedisRequired
		}
		return infra.NewRedisStatsStore(a.rdb,
			infra.WithStatsPrefix(st.Prefix),
			infra.WithStatsTTL(st.TTL),
			infra.WithStatsBucket(st.Bucket),
			infra.WithStatsTrackKeys(st.TrackKeys),
		), nil
	case config.StatsPrometheus:
		return infra.NewPrometheusStatsStore(a.registry)
	}
	return nil, nil
}

// Handler é o gateway completo: middlewares + rotas.
func (a *App) Handler() http.Handler { return a.handler }

// MetricsHandler é nil quando métricas estão desligadas.
func (a *App) MetricsHandler() http.Handler { return a.metrics }

// LimiterStore expõe o store ativo (nil com rate limit desligado).
func (a *App) LimiterStore() domain.LimiterStore { return a.store }

// Run escuta em cfg.Addr() até o ctx encerrar.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("app: listen %s: %w", a.cfg.Addr(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve atende em ln (e no METRICS_PORT, se configurado) e faz shutdown
// gracioso quando o ctx encerra.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	for _, start := range a.janitors {
		start(ctx)
	}
	if a.rdb != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := a.rdb.Ping(pingCtx).Err(); err != nil {
			a.logger.Warnf("[server] redis ping failed, rate limiting fails open until it recovers: %v", err)
		}
		cancel()
	}

	srv := newHTTPServer(a.handler)
	errCh := make(chan error, 2)
	go func() { errCh <- ignoreClosed(srv.Serve(ln)) }()
	a.logger.Infof("[server] API Gateway listening on %s", ln.Addr())

	var metricsSrv *http.Server
	if a.metrics != nil && a.cfg.MetricsPort > 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics)
		metricsSrv = newHTTPServer(mux)
		metricsSrv.Addr = net.JoinHostPort(a.cfg.Host, strconv.Itoa(a.cfg.MetricsPort))
		go func() { errCh <- ignoreClosed(metricsSrv.ListenAndServe()) }()
		a.logger.Infof("[server] metrics listening on %s", metricsSrv.Addr)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	errs := []error{runErr}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("app: shutdown: %w", err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("app: metrics shutdown: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.Info("[server] HTTP server shut down gracefully")
	return nil
}

// Close libera o cliente Redis criado por New.
func (a *App) Close() error {
	if a.ownsRedis && a.rdb != nil {
		return a.rdb.Close()
	}
	return nil
}

func newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
