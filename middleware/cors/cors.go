// Package cors implementa a política cross-origin do gateway.
//
// Sem lista de origens a resposta libera qualquer origem ("*"). Com lista,
// a origem é refletida apenas quando pertence a ela. Toda request OPTIONS é
// tratada como preflight e respondida com 204 sem chegar ao roteador.
package cors

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const DefaultMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"

type Options struct {
	AllowedOrigins []string
	AllowedMethods string
	// AllowedHeaders vazio reflete Access-Control-Request-Headers.
	AllowedHeaders string
	ExposedHeaders string
	MaxAge         time.Duration
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.AllowedMethods == "" {
		opts.AllowedMethods = DefaultMethods
	}

	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	wildcard := len(opts.AllowedOrigins) == 0
	for _, o := range opts.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			wildcard = true
			continue
		}
		if o != "" {
			origins[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			if wildcard {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Add("Vary", "Origin")
				if origin := r.Header.Get("Origin"); origin != "" {
					if _, ok := origins[origin]; ok {
						h.Set("Access-Control-Allow-Origin", origin)
					}
				}
			}

			if r.Method != http.MethodOptions {
				if opts.ExposedHeaders != "" {
					h.Set("Access-Control-Expose-Headers", opts.ExposedHeaders)
				}
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", opts.AllowedMethods)
			if opts.AllowedHeaders != "" {
				h.Set("Access-Control-Allow-Headers", opts.AllowedHeaders)
			} else if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
				h.Add("Vary", "Access-Control-Request-Headers")
				h.Set("Access-Control-Allow-Headers", req)
			}
			if opts.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(int(opts.MaxAge.Seconds())))
			}
			h.Set("Content-Length", "0")
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
