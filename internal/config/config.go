package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSavePlayerIDURL is where device push subscription ids are reported.
const DefaultSavePlayerIDURL = "https://n8n.osi.vn/webhook/save-player-id"

// Config aggregates runtime configuration for the gateway and the CLI.
type Config struct {
	App      AppConfig
	Webhook  WebhookConfig
	Session  SessionConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Cache    CacheConfig
	Push     PushConfig
	Geocode  GeocodeConfig
	Media    MediaConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// CORSOrigins is a comma separated allow list.
	CORSOrigins           string
	// AuthRateLimit caps unauthenticated auth calls per client IP per minute;
	// zero disables the limiter.
	AuthRateLimit         int
}

// WebhookConfig points at the workflow platform.
type WebhookConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// SessionConfig configures session storage and gateway tokens.
type SessionConfig struct {
	Store      string
	KeyPrefix  string
	JWTSecret  string
	TTLMinutes int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig holds DB connection values. An empty DSN disables the
// device registry and action log.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// CacheConfig configures the ticket list cache.
type CacheConfig struct {
	TTLSeconds int
}

// PushConfig configures device registration hooks.
type PushConfig struct {
	Enabled         bool
	SavePlayerIDURL string
}

// GeocodeConfig configures reverse geocoding.
type GeocodeConfig struct {
	BaseURL        string
	UserAgent      string
	TimeoutSeconds int
}

// MediaConfig bounds uploaded images.
type MediaConfig struct {
	MaxEdge     int
	JPEGQuality int
	MaxPixels   int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	store := strings.ToLower(getEnv("SESSION_STORE", "redis"))
	if store != "redis" && store != "memory" {
		return nil, fmt.Errorf("invalid SESSION_STORE %q: want redis or memory", store)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "fieldops-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSOrigins:           getEnv("CORS_ALLOW_ORIGINS", "*"),
			AuthRateLimit:         getEnvAsInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		},
		Webhook: WebhookConfig{
			BaseURL:        strings.TrimRight(os.Getenv("WEBHOOK_BASE_URL"), "/"),
			TimeoutSeconds: getEnvAsInt("WEBHOOK_TIMEOUT_SECONDS", 0),
		},
		Session: SessionConfig{
			Store:      store,
			KeyPrefix:  getEnv("SESSION_KEY_PREFIX", "fieldops:session"),
			JWTSecret:  getEnv("SESSION_JWT_SECRET", "dev-secret"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 60*24*7),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvAsInt("TICKET_CACHE_TTL_SECONDS", 30),
		},
		Push: PushConfig{
			Enabled:         getEnvAsBool("PUSH_ENABLED", true),
			SavePlayerIDURL: getEnv("PUSH_SAVE_PLAYER_ID_URL", DefaultSavePlayerIDURL),
		},
		Geocode: GeocodeConfig{
			BaseURL:        strings.TrimRight(getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org"), "/"),
			UserAgent:      getEnv("GEOCODE_USER_AGENT", "fieldops-gateway/1.0"),
			TimeoutSeconds: getEnvAsInt("GEOCODE_TIMEOUT_SECONDS", 10),
		},
		Media: MediaConfig{
			MaxEdge:     getEnvAsInt("MEDIA_MAX_EDGE", 1024),
			JPEGQuality: getEnvAsInt("MEDIA_JPEG_QUALITY", 80),
			MaxPixels:   getEnvAsInt("MEDIA_MAX_PIXELS", 50_000_000),
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 7),
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
	return seconds(a.RequestTimeoutSeconds)
}

// Timeout returns the webhook client timeout; zero leaves the runtime default.
func (w WebhookConfig) Timeout() time.Duration {
	return seconds(w.TimeoutSeconds)
}

// TTL returns the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 0
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// TTL returns the cache entry lifetime; zero disables caching.
func (c CacheConfig) TTL() time.Duration {
	return seconds(c.TTLSeconds)
}

// Timeout returns the geocoding request timeout.
func (g GeocodeConfig) Timeout() time.Duration {
	return seconds(g.TimeoutSeconds)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
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
