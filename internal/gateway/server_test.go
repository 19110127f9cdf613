package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"api-gateway/internal/jsoncodec"
	"api-gateway/middleware/recovery"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var (
	startedAt = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	requestAt = startedAt.Add(90*time.Second + 250*time.Millisecond)
)

func newTestServer(t *testing.T, opts Options) (*Server, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	if opts.Environment == "" {
		opts.Environment = "development"
	}
	opts.StartedAt = startedAt
	opts.Now = func() time.Time { return requestAt }
	opts.Logger = logger
	return New(opts), hook
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := jsoncodec.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("response is not valid JSON: %v (%q)", err, w.Body.String())
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	w := do(t, s.Router(), http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[HealthResponse](t, w)
	if body.Status != "healthy" || body.Service != "api-gateway" || body.Version != "1.0.0" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.Timestamp != "2026-04-01T08:01:30.250Z" {
		t.Fatalf("unexpected timestamp %q", body.Timestamp)
	}
	if body.Uptime != 90.25 {
		t.Fatalf("expected uptime 90.25, got %v", body.Uptime)
	}
	if body.Environment != "development" {
		t.Fatalf("expected environment development, got %q", body.Environment)
	}
}

func TestReady_StaticWithoutProbes(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	w := do(t, s.Router(), http.MethodGet, "/ready")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[ReadyResponse](t, w)
	if body.Status != "ready" || body.Service != "api-gateway" {
		t.Fatalf("unexpected body %+v", body)
	}
	want := ReadyChecks{Database: "healthy", Redis: "healthy", ExternalAPIs: "healthy"}
	if body.Checks != want {
		t.Fatalf("unexpected checks %+v", body.Checks)
	}
}

func TestReady_FailingProbeIsNotReady(t *testing.T) {
	s, hook := newTestServer(t, Options{Probes: map[string]Probe{
		CheckRedis: ProbeFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
		CheckDatabase: ProbeFunc(func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("expected probe deadline")
			}
			return nil
		}),
	}})

	w := do(t, s.Router(), http.MethodGet, "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := decode[ReadyResponse](t, w)
	if body.Status != "not ready" {
		t.Fatalf("expected not ready, got %q", body.Status)
	}
	if body.Checks.Redis != "unhealthy" || body.Checks.Database != "healthy" {
		t.Fatalf("unexpected checks %+v", body.Checks)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected probe failure to be logged")
	}
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	w := do(t, s.Router(), http.MethodGet, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[StatusResponse](t, w)
	if body.Message != "API Gateway is running" || body.Version != "1.0.0" {
		t.Fatalf("unexpected body %+v", body)
	}
	if len(body.Services) == 0 || body.Services["api-gateway"] != "healthy" {
		t.Fatalf("expected non-empty services, got %v", body.Services)
	}
}

func TestRoot(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	w := do(t, s.Router(), http.MethodGet, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode[RootResponse](t, w)
	if body.Message != "Welcome to DevOps E2E Platform API Gateway" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	want := Endpoints{Health: "/health", Ready: "/ready", Status: "/api/status"}
	if body.Endpoints != want {
		t.Fatalf("unexpected endpoints %+v", body.Endpoints)
	}
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	cases := []struct{ method, target string }{
		{http.MethodGet, "/nonexistent"},
		{http.MethodGet, "/health/"},
		{http.MethodGet, "//health"},
		{http.MethodGet, "/api"},
		{http.MethodPost, "/health"},
		{http.MethodDelete, "/"},
	}
	for _, c := range cases {
		w := do(t, s.Router(), c.method, c.target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", c.method, c.target, w.Code)
			continue
		}
		if body := decode[ErrorResponse](t, w); body.Error != "Not Found" {
			t.Errorf("%s %s: unexpected body %+v", c.method, c.target, body)
		}
	}
}

func TestNotFound_MessageIncludesOriginalURL(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	w := do(t, s.Router(), http.MethodGet, "/missing?page=2")
	body := decode[ErrorResponse](t, w)
	if body.Message != "Route /missing?page=2 not found" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

func TestHead_ServedLikeGet(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	if w := do(t, s.Router(), http.MethodHead, "/health"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for HEAD /health, got %d", w.Code)
	}
}

func TestRoutes_IdempotentExceptTime(t *testing.T) {
	clock := startedAt
	s := New(Options{
		Environment: "production",
		StartedAt:   startedAt,
		Now:         func() time.Time { clock = clock.Add(time.Second); return clock },
	})

	for _, path := range []string{"/health", "/ready", "/api/status", "/"} {
		first := decode[map[string]any](t, do(t, s.Router(), http.MethodGet, path))
		second := decode[map[string]any](t, do(t, s.Router(), http.MethodGet, path))

		if first["timestamp"] == second["timestamp"] {
			t.Errorf("%s: expected timestamp to move with the clock", path)
		}
		delete(first, "timestamp")
		delete(second, "timestamp")
		delete(first, "uptime")
		delete(second, "uptime")

		a, _ := jsoncodec.Marshal(first)
		b, _ := jsoncodec.Marshal(second)
		if string(a) != string(b) {
			t.Errorf("%s: responses differ: %s vs %s", path, a, b)
		}
	}
}

func TestHandle_ErrorDetailOnlyInDevelopment(t *testing.T) {
	boom := func(http.ResponseWriter, *http.Request) error { return errors.New("database exploded") }

	dev, devHook := newTestServer(t, Options{ExposeErrors: true})
	w := do(t, dev.handle(boom), http.MethodGet, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decode[ErrorResponse](t, w)
	if body.Error != "Internal Server Error" || body.Message != "database exploded" {
		t.Fatalf("unexpected dev body %+v", body)
	}
	if entry := devHook.LastEntry(); entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected error to be logged")
	}

	prod, _ := newTestServer(t, Options{Environment: "production"})
	body = decode[ErrorResponse](t, do(t, prod.handle(boom), http.MethodGet, "/"))
	if body.Message != "Something went wrong!" {
		t.Fatalf("unexpected prod message %q", body.Message)
	}
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	s, hook := newTestServer(t, Options{Environment: "production"})

	h := recovery.Middleware(s.RecoverPanic)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map write")
	}))

	w := do(t, h, http.MethodGet, "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if body := decode[ErrorResponse](t, w); body.Message != "Something went wrong!" {
		t.Fatalf("unexpected body %+v", body)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected panic to be logged")
	}
}

func TestRouteTemplate_GroupsUnknownPaths(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	cases := []struct {
		method, target, want string
	}{
		{http.MethodGet, "/health", "/health"},
		{http.MethodHead, "/ready", "/ready"},
		{http.MethodGet, "/api/status?verbose=1", "/api/status"},
		{http.MethodGet, "/", "/"},
		{http.MethodGet, "/wp-login.php", UnmatchedRoute},
		{http.MethodGet, "/health/", UnmatchedRoute},
		{http.MethodPost, "/health", UnmatchedRoute},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(tc.method, tc.target, nil)
		if got := s.RouteTemplate(r); got != tc.want {
			t.Errorf("%s %s: expected %q, got %q", tc.method, tc.target, tc.want, got)
		}
	}
}
