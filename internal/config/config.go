package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Engine    EngineConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// EngineConfig tunes the change-detection engine. UpstreamURL, when
// set, switches the poller from the local database to a remote
// snapshot feed; UpstreamToken authenticates against it.
type EngineConfig struct {
	PollIntervalMS  int
	CooldownSeconds int
	HistoryLimit    int
	UpstreamURL     string
	UpstreamToken   string
}

// RateLimitConfig bounds how fast one client may poll the snapshot
// feed.
type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Engine: EngineConfig{
			PollIntervalMS:  getEnvAsInt("ENGINE_POLL_INTERVAL_MS", 5000),
			CooldownSeconds: getEnvAsInt("ENGINE_COOLDOWN_SECONDS", 120),
			HistoryLimit:    getEnvAsInt("ENGINE_HISTORY_LIMIT", 200),
			UpstreamURL:     os.Getenv("ENGINE_UPSTREAM_URL"),
			UpstreamToken:   os.Getenv("ENGINE_UPSTREAM_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 30),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// PollInterval returns the poll interval duration.
func (e EngineConfig) PollInterval() time.Duration {
	return time.Duration(e.PollIntervalMS) * time.Millisecond
}

// CooldownWindow returns the cooldown duration.
func (e EngineConfig) CooldownWindow() time.Duration {
	return time.Duration(e.CooldownSeconds) * time.Second
}

// Window returns the rate-limit window duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
