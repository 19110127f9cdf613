// Package recovery converte panics em resposta de erro sem derrubar o
// servidor.
package recovery

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// PanicError carrega o valor do panic e a stack do momento.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap devolve o valor original quando ele é um error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// OnPanic escreve a resposta de erro. Chamado com o panic já recuperado.
type OnPanic func(w http.ResponseWriter, r *http.Request, err *PanicError)

func Middleware(onPanic OnPanic) func(next http.Handler) http.Handler {
	if onPanic == nil {
		onPanic = func(w http.ResponseWriter, r *http.Request, err *PanicError) {
			log.Errorf("[recovery] %s %s: %v\n%s", r.Method, r.URL.Path, err.Value, err.Stack)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// ErrAbortHandler é o jeito net/http de abortar a conexão
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				onPanic(w, r, &PanicError{Value: rec, Stack: debug.Stack()})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
