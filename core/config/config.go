package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel         OTelConfig
	WorkOS       WorkOSConfig
	JWT          JWTConfig
	Redis        RedisConfig
	FollowUp     FollowUpConfig
	LLM          LLMConfig
	DB           DBConfig
	Env          string
	Port         string
	DashboardURL string
	MCPUserID    int64
}

type DBConfig struct {
	Driver   string // "sqlite" or "postgres"
	DSN      string
	MaxConns int32
	MinConns int32
}

type WorkOSConfig struct {
	APIKey      string
	ClientID    string
	RedirectURI string
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

// RedisConfig covers both the per-user notification streams and the
// follow-up work queue consumed by the worker.
type RedisConfig struct {
	URL                      string
	NotificationStreamPrefix string
	FollowUpStream           string
	FollowUpGroup            string
	FollowUpConsumer         string
	FollowUpDLQStream        string
	TraceHeaderName          string
}

type FollowUpConfig struct {
	Interval    time.Duration
	StaleAfter  time.Duration
	MaxCount    int
	MaxAttempts int
}

type LLMConfig struct {
	Provider    string // "anthropic", "openai" or "gemini"
	APIKey      string
	BaseURL     string // Optional: for custom endpoints
	Model       string
	MaxTokens   int
	Timeout     time.Duration
	MaxAttempts int
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
	ServiceTypeCLI    ServiceType = "cli"
	ServiceTypeMCP    ServiceType = "mcp"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.worker for the follow-up worker
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("RELAY_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	var errs []error
	duration := func(key string, fallback time.Duration) time.Duration {
		d, err := getEnvDuration(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}

	cfg := Config{
		Env:          getEnv("RELAY_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DashboardURL: getEnv("DASHBOARD_URL", "http://localhost:3000"),
		MCPUserID:    getEnvInt64("MCP_USER_ID", 0),
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", DriverSQLite),
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "relay"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		},
		WorkOS: WorkOSConfig{
			APIKey:      getEnv("WORKOS_API_KEY", ""),
			ClientID:    getEnv("WORKOS_CLIENT_ID", ""),
			RedirectURI: getEnv("WORKOS_REDIRECT_URI", "http://localhost:8080/auth/callback"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: duration("JWT_EXPIRY", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			URL:                      getEnv("REDIS_URL", ""),
			NotificationStreamPrefix: getEnv("NOTIFICATION_STREAM_PREFIX", "notifications"),
			FollowUpStream:           getEnv("FOLLOWUP_STREAM", "relay_followups"),
			FollowUpGroup:            getEnv("FOLLOWUP_GROUP", "relay_group"),
			FollowUpConsumer:         getEnv("FOLLOWUP_CONSUMER", "worker-1"),
			FollowUpDLQStream:        getEnv("FOLLOWUP_DLQ_STREAM", "relay_followups_dlq"),
			TraceHeaderName:          getEnv("TRACE_HEADER_NAME", "X-Trace-Id"),
		},
		FollowUp: FollowUpConfig{
			Interval:    duration("FOLLOWUP_INTERVAL", 15*time.Minute),
			StaleAfter:  duration("FOLLOWUP_STALE_AFTER", 48*time.Hour),
			MaxCount:    getEnvInt("FOLLOWUP_MAX_COUNT", 3),
			MaxAttempts: getEnvInt("FOLLOWUP_MAX_ATTEMPTS", 3),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "anthropic"),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", ""),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
			Timeout:     duration("LLM_TIMEOUT", 30*time.Second),
			MaxAttempts: getEnvInt("LLM_MAX_ATTEMPTS", 2),
		},
	}
	cfg.LLM.APIKey = llmAPIKey(cfg.LLM.Provider)

	if cfg.DB.DSN == "" && cfg.DB.Driver == DriverSQLite {
		cfg.DB.DSN = "relay.db"
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(serviceType); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate(serviceType ServiceType) error {
	switch c.DB.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	if serviceType == ServiceTypeServer && !c.JWT.Enabled() && !c.WorkOS.Enabled() {
		return fmt.Errorf("JWT_SECRET or WORKOS_API_KEY and WORKOS_CLIENT_ID are required")
	}

	if serviceType == ServiceTypeWorker && !c.Redis.Enabled() {
		return fmt.Errorf("REDIS_URL is required for the worker")
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c WorkOSConfig) Enabled() bool {
	return c.APIKey != "" && c.ClientID != ""
}

func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

func (c LLMConfig) Enabled() bool {
	switch c.Provider {
	case "openai", "anthropic", "gemini":
		return c.APIKey != ""
	default:
		return false
	}
}

// llmAPIKey prefers LLM_API_KEY and falls back to the provider's own variable.
func llmAPIKey(provider string) string {
	if key := getEnv("LLM_API_KEY", ""); key != "" {
		return key
	}
	switch provider {
	case "openai":
		return getEnv("OPENAI_API_KEY", "")
	case "gemini":
		return getEnv("GEMINI_API_KEY", "")
	default:
		return getEnv("ANTHROPIC_API_KEY", "")
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
