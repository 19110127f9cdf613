package gateway

import (
	"net/http"

	"api-gateway/internal/jsoncodec"
	"api-gateway/middleware/recovery"
)

const genericErrorMessage = "Something went wrong!"

// handlerFunc é um handler que devolve erro em vez de escrever a resposta
// de falha; handle converte o erro em 500.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.logger.Errorf("[gateway] %s %s: %v", r.Method, r.URL.Path, err)
			s.internalError(w, err)
		}
	})
}

// RecoverPanic é o hook de recovery.Middleware: loga a stack e responde 500.
func (s *Server) RecoverPanic(w http.ResponseWriter, r *http.Request, err *recovery.PanicError) {
	s.logger.Errorf("[gateway] panic on %s %s: %v\n%s", r.Method, r.URL.Path, err.Value, err.Stack)
	s.internalError(w, err)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	msg := genericErrorMessage
	if s.exposeErrors {
		msg = err.Error()
	}
	if werr := jsoncodec.Write(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal Server Error",
		Message: msg,
	}); werr != nil {
		s.logger.Errorf("[gateway] failed to write error response: %v", werr)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) error {
	return jsoncodec.Write(w, http.StatusNotFound, ErrorResponse{
		Error:   "Not Found",
		Message: "Route " + r.URL.RequestURI() + " not found",
	})
}
