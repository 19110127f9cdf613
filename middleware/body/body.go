// Package body faz o parse de corpos JSON e urlencoded antes do roteamento.
//
// Corpos acima do limite são rejeitados com 413 sem chegar ao handler, tanto
// pelo Content-Length declarado quanto por leitura limitada (chunked).
package body

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"api-gateway/internal/jsoncodec"
)

// DefaultLimit é 10 MiB.
const DefaultLimit int64 = 10 << 20

// Parsed é o corpo decodificado, disponível via FromContext.
type Parsed struct {
	// JSON é o documento decodificado (map, slice, string, número...).
	JSON any
	Form url.Values
	Raw  []byte
}

type ctxKeyParsed struct{}

func FromContext(ctx context.Context) (*Parsed, bool) {
	p, ok := ctx.Value(ctxKeyParsed{}).(*Parsed)
	return p, ok
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Options struct {
	Limit int64
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > opts.Limit {
				tooLarge(w, opts.Limit)
				return
			}

			kind := mediaKind(r.Header.Get("Content-Type"))
			if kind == "" || r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.Limit))
			if err != nil {
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					tooLarge(w, opts.Limit)
					return
				}
				writeError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("failed to read request body: %v", err))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			if len(raw) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			p := &Parsed{Raw: raw}
			switch kind {
			case "json":
				if err := jsoncodec.Unmarshal(raw, &p.JSON); err != nil {
					writeError(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
					return
				}
			case "form":
				form, err := url.ParseQuery(string(raw))
				if err != nil {
					writeError(w, http.StatusBadRequest, "Bad Request", "malformed form body")
					return
				}
				p.Form = form
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyParsed{}, p)))
		})
	}
}

func mediaKind(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case mt == "application/json", strings.HasSuffix(mt, "+json"):
		return "json"
	case mt == "application/x-www-form-urlencoded":
		return "form"
	}
	return ""
}

func tooLarge(w http.ResponseWriter, limit int64) {
	writeError(w, http.StatusRequestEntityTooLarge, "Payload Too Large",
		fmt.Sprintf("request body exceeds %d bytes", limit))
}

func writeError(w http.ResponseWriter, status int, title, msg string) {
	// conexão pode estar com o corpo pela metade: não reaproveitar
	if status == http.StatusRequestEntityTooLarge {
		w.Header().Set("Connection", "close")
	}
	_ = jsoncodec.Write(w, status, errorBody{Error: title, Message: msg})
}
