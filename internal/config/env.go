package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader sobrescreve valores com variáveis de ambiente definidas e não
// vazias. Valores inválidos viram erro em vez de cair no default.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) fail(k, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("config: invalid %s=%q: %w", k, v, err))
}

func (e *envReader) str(k string, dst *string) {
	if v, ok := e.lookup(k); ok {
		*dst = v
	}
}

func (e *envReader) list(k string, dst *[]string) {
	v, ok := e.lookup(k)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func (e *envReader) int(k string, dst *int) {
	if v, ok := e.lookup(k); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			e.fail(k, v, err)
			return
		}
		*dst = i
	}
}

func (e *envReader) int64(k string, dst *int64) {
	if v, ok := e.lookup(k); ok {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(k, v, err)
			return
		}
		*dst = i
	}
}

func (e *envReader) float(k string, dst *float64) {
	if v, ok := e.lookup(k); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(k, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(k string, dst *bool) {
	if v, ok := e.lookup(k); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(k, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) duration(k string, dst *time.Duration) {
	if v, ok := e.lookup(k); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(k, v, err)
			return
		}
		*dst = d
	}
}
