// Package secure aplica os headers de segurança padrão a toda resposta
// (mesmos valores default do helmet).
package secure

import "net/http"

const DefaultContentSecurityPolicy = "default-src 'self';base-uri 'self';font-src 'self' https: data:;" +
	"form-action 'self';frame-ancestors 'self';img-src 'self' data:;object-src 'none';" +
	"script-src 'self';script-src-attr 'none';style-src 'self' https: 'unsafe-inline';" +
	"upgrade-insecure-requests"

// DefaultHeaders devolve uma cópia dos headers aplicados por padrão, já com
// chaves canônicas.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Security-Policy":           DefaultContentSecurityPolicy,
		"Cross-Origin-Opener-Policy":        "same-origin",
		"Cross-Origin-Resource-Policy":      "same-origin",
		"Origin-Agent-Cluster":              "?1",
		"Referrer-Policy":                   "no-referrer",
		"Strict-Transport-Security":         "max-age=15552000; includeSubDomains",
		"X-Content-Type-Options":            "nosniff",
		"X-Dns-Prefetch-Control":            "off",
		"X-Download-Options":                "noopen",
		"X-Frame-Options":                   "SAMEORIGIN",
		"X-Permitted-Cross-Domain-Policies": "none",
		"X-Xss-Protection":                  "0",
	}
}

type Options struct {
	// Overrides substitui headers padrão; valor vazio remove o header.
	Overrides map[string]string
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	headers := DefaultHeaders()
	for k, v := range opts.Overrides {
		k = http.CanonicalHeaderKey(k)
		if v == "" {
			delete(headers, k)
			continue
		}
		headers[k] = v
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range headers {
				h[k] = []string{v}
			}
			h.Del("X-Powered-By")
			next.ServeHTTP(w, r)
		})
	}
}
