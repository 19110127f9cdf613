package ratelimit

import (
	"net/http"
	"time"

	"api-gateway/internal/jsoncodec"
	"api-gateway/middleware/ratelimit/application"
	"api-gateway/middleware/ratelimit/infra"

	log "github.com/sirupsen/logrus"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         log.FieldLogger
}

type rejection struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ConcurrencyMiddleware limita as requests em voo a Max. Com Max <= 0 é um
// no-op. Quem não consegue vaga dentro de AcquireTimeout recebe
// RejectStatus (503) com corpo JSON.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	pool := infra.NewSlotPool(opts.Max)
	svc := application.ConcurrencyService{
		Pool:           pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				opts.Logger.Warnf("[ratelimit] concurrency limit reached (%d/%d in flight), rejecting %s %s",
					pool.InUse(), pool.Size(), r.Method, r.URL.Path)
				_ = jsoncodec.Write(w, opts.RejectStatus, rejection{
					Error:   http.StatusText(opts.RejectStatus),
					Message: "Too many concurrent requests, please try again later.",
				})
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
