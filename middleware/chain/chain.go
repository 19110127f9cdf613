// Package chain compõe middlewares net/http numa lista ordenada explícita.
//
// O primeiro middleware da lista é o mais externo. Qualquer middleware pode
// encerrar a cadeia escrevendo a resposta sem chamar next.
package chain

import "net/http"

type Middleware func(next http.Handler) http.Handler

type Chain []Middleware

// New descarta entradas nil, o que permite montar a lista com middlewares
// opcionais.
func New(mws ...Middleware) Chain {
	c := make(Chain, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			c = append(c, mw)
		}
	}
	return c
}

// Append devolve uma nova Chain; c não é alterada.
func (c Chain) Append(mws ...Middleware) Chain {
	out := make(Chain, 0, len(c)+len(mws))
	out = append(out, c...)
	return append(out, New(mws...)...)
}

// Then aplica a cadeia a h.
func (c Chain) Then(h http.Handler) http.Handler {
	if h == nil {
		h = http.NotFoundHandler()
	}
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}
