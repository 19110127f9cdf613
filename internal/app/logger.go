package app

import (
	"fmt"
	"io"

	"api-gateway/internal/config"

	log "github.com/sirupsen/logrus"
)

// NewLogger monta o logger a partir de LOG_LEVEL e LOG_FORMAT.
func NewLogger(cfg config.Config, out io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("app: invalid log level %q: %w", cfg.LogLevel, err)
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
