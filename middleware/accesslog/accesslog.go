// Package accesslog registra uma linha por request com logrus.
package accesslog

import (
	"net/http"
	"time"

	"api-gateway/middleware/requestid"

	log "github.com/sirupsen/logrus"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap expõe o writer original para http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func Middleware(logger log.FieldLogger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			entry := logger.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     sw.status,
				"bytes":      sw.bytes,
				"duration":   time.Since(start).String(),
				"remote":     r.RemoteAddr,
				"request_id": requestid.FromContext(r.Context()),
			})
			switch {
			case sw.status >= http.StatusInternalServerError:
				entry.Warn("[http] request failed")
			default:
				entry.Info("[http] request")
			}
		})
	}
}
