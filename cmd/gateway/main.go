package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"api-gateway/internal/app"
	"api-gateway/internal/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := app.NewLogger(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatalf("[server] setup error: %v", err)
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Infof("[server] environment=%s rate: enabled=%v algorithm=%s limit=%d window=%s redis=%q stats=%s",
		cfg.EnvironmentName(), cfg.RateLimit.Enabled, cfg.RateLimit.Algorithm, cfg.RateLimit.Limit,
		cfg.RateLimit.Window, cfg.RateLimit.RedisAddr, cfg.Stats.Backend)
	logger.Infof("[server] concurrency: max=%d acquireTimeout=%s bodyLimit=%d",
		cfg.Concurrency.Max, cfg.Concurrency.Timeout, cfg.BodyLimit)

	if err := a.Run(ctx); err != nil {
		logger.Errorf("[server] %v", err)
		_ = a.Close()
		os.Exit(1)
	}
}
