// Package compress comprime respostas com gzip quando o cliente aceita
// (Accept-Encoding) e o corpo passa do tamanho mínimo.
package compress

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"
)

// DefaultMinSize: respostas menores que 1 KiB saem sem compressão.
const DefaultMinSize = 1024

type Options struct {
	MinSize int
	// Level segue compress/gzip; 0 usa gzip.DefaultCompression.
	Level int
}

func Middleware(opts Options) (func(next http.Handler) http.Handler, error) {
	if opts.MinSize <= 0 {
		opts.MinSize = DefaultMinSize
	}
	if opts.Level == 0 {
		opts.Level = gzip.DefaultCompression
	}

	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(opts.MinSize),
		gzhttp.CompressionLevel(opts.Level),
	)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
