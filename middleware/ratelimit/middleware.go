package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"api-gateway/middleware/ratelimit/application"
	"api-gateway/middleware/ratelimit/domain"

	log "github.com/sirupsen/logrus"
)

// DefaultMessage é o corpo text/plain devolvido ao bloquear.
const DefaultMessage = "Too many requests from this IP, please try again later."

type KeyFunc func(r *http.Request) string

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	Message             string
	MinRetryAfter       time.Duration
	AddRateLimitHeaders bool
	Logger              log.FieldLogger
	Now                 func() time.Time

	// RouteFn nomeia a rota gravada nas estatísticas; padrão é o path bruto.
	RouteFn func(r *http.Request) string
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// Middleware aplica o rate limit por chave de cliente. Requests acima do
// limite recebem RejectStatus (429) com Message em text/plain.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.RouteFn == nil {
		opts.RouteFn = func(r *http.Request) string { return r.URL.Path }
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	svc := application.Service{
		Store:         opts.Store,
		MinRetryAfter: opts.MinRetryAfter,
		Now:           opts.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec, err := svc.Decide(r.Context(), domain.Key(key))
			if err != nil {
				opts.Logger.Errorf("[ratelimit] store failure for %s, allowing request: %v", key, err)
			}

			if opts.Stats != nil {
				if err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    opts.RouteFn(r),
					At:      opts.Now(),
				}); err != nil {
					opts.Logger.Debugf("[ratelimit] stats record failed: %v", err)
				}
			}

			if opts.AddRateLimitHeaders && dec.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				w.Header().Set("X-RateLimit-Reset", formatInt64(dec.ResetAt.Unix()))
			}

			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(retryAfterSeconds(dec.RetryAfter)))
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Header().Set("X-Content-Type-Options", "nosniff")
				w.WriteHeader(opts.RejectStatus)
				_, _ = w.Write([]byte(opts.Message))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// arredonda para cima: Retry-After nunca menor que o tempo real de espera.
func retryAfterSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
