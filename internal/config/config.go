// Package config carrega a configuração do gateway: arquivo TOML opcional
// (CONFIG_FILE) seguido de variáveis de ambiente, que sempre vencem.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	AlgorithmFixedWindow = "fixed-window"
	AlgorithmTokenBucket = "token-bucket"

	StatsNone       = "none"
	StatsMemory     = "memory"
	StatsRedis      = "redis"
	StatsPrometheus = "prometheus"
)

var (
	ErrInvalidPort      = errors.New("config: PORT must be a number between 1 and 65535")
	ErrInvalidAlgorithm = errors.New("config: RATE_ALGORITHM must be fixed-window or token-bucket")
	ErrInvalidRateLimit = errors.New("config: rate limit values must be > 0")
	ErrInvalidStats     = errors.New("config: RATE_STATS must be none, memory, redis or prometheus")
	ErrRedisRequired    = errors.New("config: RATE_REDIS_ADDR is required for RATE_STATS=redis")
	ErrInvalidBodyLimit = errors.New("config: BODY_LIMIT must be > 0")
	ErrInvalidLogFormat = errors.New("config: LOG_FORMAT must be text or json")
)

type Config struct {
	Host            string        `toml:"host"`
	Port            string        `toml:"port"`
	Environment     string        `toml:"environment"`
	LogLevel        string        `toml:"log_level"`
	LogFormat       string        `toml:"log_format"`
	BodyLimit       int64         `toml:"body_limit"`
	CORSOrigins     []string      `toml:"cors_allowed_origins"`
	CORSExposed     []string      `toml:"cors_exposed_headers"`
	MetricsPort     int           `toml:"metrics_port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`

	RateLimit   RateLimit   `toml:"rate_limit"`
	Stats       Stats       `toml:"stats"`
	Concurrency Concurrency `toml:"concurrency"`
}

type RateLimit struct {
	Enabled    bool          `toml:"enabled"`
	Algorithm  string        `toml:"algorithm"`
	Limit      int           `toml:"limit"`
	Window     time.Duration `toml:"window"`
	RPS        float64       `toml:"rps"`
	Burst      int           `toml:"burst"`
	KeyHeader  string        `toml:"key_header"`
	TrustXFF   bool          `toml:"trust_xff"`
	AddHeaders bool          `toml:"add_headers"`
	// CleanupEvery é o intervalo do janitor dos stores em memória; 0 desliga.
	CleanupEvery time.Duration `toml:"cleanup_every"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

type Stats struct {
	Backend   string        `toml:"backend"`
	Prefix    string        `toml:"prefix"`
	TTL       time.Duration `toml:"ttl"`
	Bucket    string        `toml:"bucket"`
	TrackKeys bool          `toml:"track_keys"`
}

type Concurrency struct {
	Max     int           `toml:"max"`
	Timeout time.Duration `toml:"timeout"`
}

func Default() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            "8080",
		LogLevel:        "info",
		LogFormat:       "text",
		BodyLimit:       10 << 20,
		ShutdownTimeout: 10 * time.Second,
		RateLimit: RateLimit{
			Enabled:      true,
			Algorithm:    AlgorithmFixedWindow,
			Limit:        100,
			Window:       15 * time.Minute,
			RPS:          10,
			Burst:        20,
			AddHeaders:   true,
			CleanupEvery: time.Minute,
			RedisPrefix:  "ratelimit:window",
		},
		Stats: Stats{
			Backend: StatsNone,
			Prefix:  "ratelimit:stats",
			TTL:     24 * time.Hour,
			Bucket:  "minute",
		},
	}
}

// Addr é o endereço de escuta host:port.
func (c Config) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// EnvironmentName é o ambiente reportado em /health. Environment fica vazio
// quando APP_ENV/NODE_ENV não foram definidos, e aí vale development.
func (c Config) EnvironmentName() string {
	if c.Environment == "" {
		return EnvDevelopment
	}
	return c.Environment
}

// Development indica se detalhes de erro podem ir para a resposta. Exige
// development explícito; ambiente ausente não conta.
func (c Config) Development() bool { return c.Environment == EnvDevelopment }

// UsesRedis indica se algum componente precisa do cliente Redis.
func (c Config) UsesRedis() bool {
	return c.RateLimit.RedisAddr != "" && (c.RateLimit.Enabled && c.RateLimit.Algorithm == AlgorithmFixedWindow || c.Stats.Backend == StatsRedis)
}

func (c Config) String() string {
	cp := c
	if cp.RateLimit.RedisPassword != "" {
		cp.RateLimit.RedisPassword = "***REDACTED***"
	}
	type configAlias Config
	return fmt.Sprintf("%+v", configAlias(cp))
}

// Load lê CONFIG_FILE (se definido) e depois o ambiente.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	e := &envReader{}
	e.str("HOST", &cfg.Host)
	e.str("PORT", &cfg.Port)
	e.str("NODE_ENV", &cfg.Environment)
	e.str("APP_ENV", &cfg.Environment)
	e.str("LOG_LEVEL", &cfg.LogLevel)
	e.str("LOG_FORMAT", &cfg.LogFormat)
	e.int64("BODY_LIMIT", &cfg.BodyLimit)
	e.list("CORS_ALLOWED_ORIGINS", &cfg.CORSOrigins)
	e.list("CORS_EXPOSED_HEADERS", &cfg.CORSExposed)
	e.int("METRICS_PORT", &cfg.MetricsPort)
	e.duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)

	rl := &cfg.RateLimit
	e.bool("RATE_ENABLED", &rl.Enabled)
	e.str("RATE_ALGORITHM", &rl.Algorithm)
	e.int("RATE_LIMIT", &rl.Limit)
	e.duration("RATE_WINDOW", &rl.Window)
	e.float("RATE_RPS", &rl.RPS)
	e.int("RATE_BURST", &rl.Burst)
	e.str("RATE_KEY_HEADER", &rl.KeyHeader)
	e.bool("TRUST_XFF", &rl.TrustXFF)
	e.bool("ADD_RATELIMIT_HEADERS", &rl.AddHeaders)
	e.duration("RATE_CLEANUP_INTERVAL", &rl.CleanupEvery)
	e.str("RATE_REDIS_ADDR", &rl.RedisAddr)
	e.str("RATE_REDIS_PASSWORD", &rl.RedisPassword)
	e.int("RATE_REDIS_DB", &rl.RedisDB)
	e.str("RATE_REDIS_PREFIX", &rl.RedisPrefix)

	st := &cfg.Stats
	e.str("RATE_STATS", &st.Backend)
	e.str("RATE_STATS_PREFIX", &st.Prefix)
	e.duration("RATE_STATS_TTL", &st.TTL)
	e.str("RATE_STATS_BUCKET", &st.Bucket)
	e.bool("RATE_STATS_TRACK_KEYS", &st.TrackKeys)

	e.int("CONCURRENCY_MAX", &cfg.Concurrency.Max)
	e.duration("CONCURRENCY_TIMEOUT", &cfg.Concurrency.Timeout)

	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, ErrInvalidLogFormat)
	}
	if c.BodyLimit <= 0 {
		errs = append(errs, ErrInvalidBodyLimit)
	}

	if c.RateLimit.Enabled {
		switch c.RateLimit.Algorithm {
		case AlgorithmFixedWindow:
			if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
				errs = append(errs, ErrInvalidRateLimit)
			}
		case AlgorithmTokenBucket:
			if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
				errs = append(errs, ErrInvalidRateLimit)
			}
		default:
			errs = append(errs, ErrInvalidAlgorithm)
		}
	}

	switch c.Stats.Backend {
	case StatsNone, StatsMemory, StatsPrometheus:
	case StatsRedis:
		if strings.TrimSpace(c.RateLimit.RedisAddr) == "" {
			errs = append(errs, ErrRedisRequired)
		}
	default:
		errs = append(errs, ErrInvalidStats)
	}

	if c.RateLimit.CleanupEvery < 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}
	if c.Concurrency.Max < 0 {
		errs = append(errs, errors.New("config: CONCURRENCY_MAX must be >= 0"))
	}
	return errors.Join(errs...)
}
