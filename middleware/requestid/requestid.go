// Package requestid propaga ou gera o X-Request-Id de cada request.
package requestid

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

const Header = "X-Request-Id"

type ctxKeyRequestID struct{}

// FromContext devolve o id da request ou "" fora do middleware.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			id, err := uuid.NewV4()
			if err != nil {
				// sem id a request segue mesmo assim
				log.Errorf("[requestid] failed to generate request ID for %v: %v", r.RemoteAddr, err)
				next.ServeHTTP(w, r)
				return
			}
			reqID = id.String()
		}

		w.Header().Set(Header, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, reqID)))
	})
}
