package gateway

import (
	"net/http"
	"time"

	"api-gateway/internal/jsoncodec"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	router *mux.Router

	environment string
	// exposeErrors coloca a mensagem do erro na resposta 500.
	exposeErrors bool

	startedAt time.Time
	now       func() time.Time

	probes map[string]Probe
	logger log.FieldLogger
}

type Options struct {
	Environment  string
	ExposeErrors bool
	// StartedAt é a referência do uptime; padrão é o instante de New.
	StartedAt time.Time
	Now       func() time.Time
	// Probes por dependência (CheckDatabase, CheckRedis, CheckExternalAPIs).
	Probes map[string]Probe
	Logger log.FieldLogger
}

func New(opts Options) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		environment:  opts.Environment,
		exposeErrors: opts.ExposeErrors,
		startedAt:    opts.StartedAt,
		now:          opts.Now,
		probes:       opts.Probes,
		logger:       opts.Logger,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.startedAt.IsZero() {
		s.startedAt = s.now()
	}
	if s.logger == nil {
		s.logger = log.StandardLogger()
	}
	s.endpoints()
	return s
}

// Router devolve o roteador com as rotas e o fallback 404.
func (s *Server) Router() http.Handler {
	return s.router
}

// RouteTemplate devolve o template da rota que atenderia r, ou
// UnmatchedRoute quando r cai no fallback 404. Tem cardinalidade fixa.
func (s *Server) RouteTemplate(r *http.Request) string {
	var m mux.RouteMatch
	if s.router.Match(r, &m) && m.MatchErr == nil && m.Route != nil {
		if tpl, err := m.Route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return UnmatchedRoute
}

func (s *Server) endpoints() {
	// casamento exato: sem limpeza de path nem redirect de barra final
	s.router.SkipClean(true)

	// GET também atende HEAD; net/http descarta o corpo.
	s.router.Handle("/health", s.handle(s.health)).Methods(http.MethodGet, http.MethodHead)
	s.router.Handle("/ready", s.handle(s.ready)).Methods(http.MethodGet, http.MethodHead)
	s.router.Handle("/api/status", s.handle(s.status)).Methods(http.MethodGet, http.MethodHead)
	s.router.Handle("/", s.handle(s.root)).Methods(http.MethodGet, http.MethodHead)

	// método errado em path conhecido também é 404
	notFound := s.handle(s.notFound)
	s.router.NotFoundHandler = notFound
	s.router.MethodNotAllowedHandler = notFound
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	return jsoncodec.Write(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Service:     ServiceName,
		Version:     Version,
		Timestamp:   s.timestamp(),
		Uptime:      s.now().Sub(s.startedAt).Seconds(),
		Environment: s.environment,
	})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) error {
	checks, ok := s.runChecks(r.Context())

	resp := ReadyResponse{
		Status:    "ready",
		Service:   ServiceName,
		Checks:    checks,
		Timestamp: s.timestamp(),
	}
	status := http.StatusOK
	if !ok {
		resp.Status = "not ready"
		status = http.StatusServiceUnavailable
	}
	return jsoncodec.Write(w, status, resp)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) error {
	return jsoncodec.Write(w, http.StatusOK, StatusResponse{
		Message: "API Gateway is running",
		Services: map[string]string{
			"user-service":  checkHealthy,
			"order-service": checkHealthy,
			ServiceName:     checkHealthy,
		},
		Version:   Version,
		Timestamp: s.timestamp(),
	})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) error {
	return jsoncodec.Write(w, http.StatusOK, RootResponse{
		Message: "Welcome to DevOps E2E Platform API Gateway",
		Version: Version,
		Endpoints: Endpoints{
			Health: "/health",
			Ready:  "/ready",
			Status: "/api/status",
		},
		Timestamp: s.timestamp(),
	})
}
