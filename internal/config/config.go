package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the relay.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Targets      TargetsConfig
	Dispatch     DispatchConfig
	Notification NotificationConfig
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

// PostgresConfig holds ticket store connection values.
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

// AuthConfig defines admin authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminPasswordHash     string
}

// TargetConfig describes one downstream system.
type TargetConfig struct {
	URL    string
	APIKey string
}

// TargetsConfig bundles the three downstream systems.
type TargetsConfig struct {
	POS       TargetConfig
	Shopping  TargetConfig
	Inventory TargetConfig
}

// DispatchConfig bounds outbound calls.
type DispatchConfig struct {
	TimeoutSeconds    int
	ResultCacheTTLMin int
}

// NotificationConfig holds the optional forward-outcome webhook.
type NotificationConfig struct {
	WebhookURL string
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
			Name:                  getEnv("APP_NAME", "ticket-relay"),
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
			AdminPasswordHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
		},
		Targets: TargetsConfig{
			POS: TargetConfig{
				URL:    os.Getenv("POS_TICKET_URL"),
				APIKey: os.Getenv("POS_API_TOKEN"),
			},
			Shopping: TargetConfig{
				URL:    os.Getenv("SHOPPING_API_URL"),
				APIKey: os.Getenv("SHOPPING_API_TOKEN"),
			},
			Inventory: TargetConfig{
				URL:    os.Getenv("INVENTORY_API_URL"),
				APIKey: os.Getenv("INVENTORY_API_KEY"),
			},
		},
		Dispatch: DispatchConfig{
			TimeoutSeconds:    getEnvAsInt("DISPATCH_TIMEOUT_SECONDS", 15),
			ResultCacheTTLMin: getEnvAsInt("FORWARD_RESULT_CACHE_TTL_MINUTES", 60),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
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

// Timeout returns the per-dispatch deadline.
func (d DispatchConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// ResultCacheTTL returns how long cached forward results live.
func (d DispatchConfig) ResultCacheTTL() time.Duration {
	if d.ResultCacheTTLMin <= 0 {
		return time.Hour
	}
	return time.Duration(d.ResultCacheTTLMin) * time.Minute
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
