// Package jsoncodec centraliza a serialização JSON do gateway (sonic, modo
// compatível com encoding/json).
package jsoncodec

import (
	"net/http"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

// Write serializa v e escreve a resposta com status e Content-Type JSON.
// Se a serialização falhar nada é escrito e o erro é devolvido.
func Write(w http.ResponseWriter, status int, v any) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}
