package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Transport values accepted by MCP_TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config aggregates runtime configuration for the server.
type Config struct {
	App       AppConfig
	Freshdesk FreshdeskConfig
	Redis     RedisConfig
	Resolver  ResolverConfig
	Logger    LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Transport             string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// FreshdeskConfig holds provider credentials and workflow constants.
type FreshdeskConfig struct {
	APIKey     string
	Domain     string
	L2TeamName string
}

// RedisConfig holds connection values for the optional resolver cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ResolverConfig controls identifier resolution behavior.
type ResolverConfig struct {
	MaxPages        int
	CacheTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
// FRESHDESK_API_KEY and FRESHDESK_DOMAIN are required; startup fails without them.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := strings.TrimSpace(os.Getenv("FRESHDESK_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("FRESHDESK_API_KEY is required")
	}
	domain := strings.TrimSpace(os.Getenv("FRESHDESK_DOMAIN"))
	if domain == "" {
		return nil, fmt.Errorf("FRESHDESK_DOMAIN is required")
	}

	transport := strings.ToLower(getEnv("MCP_TRANSPORT", TransportStdio))
	if transport != TransportStdio && transport != TransportHTTP {
		return nil, fmt.Errorf("invalid MCP_TRANSPORT %q: must be %q or %q", transport, TransportStdio, TransportHTTP)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "freshdesk-mcp"),
			Env:                   getEnv("APP_ENV", "development"),
			Transport:             transport,
			Host:                  getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                  getEnv("SERVER_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 30),
		},
		Freshdesk: FreshdeskConfig{
			APIKey:     apiKey,
			Domain:     domain,
			L2TeamName: getEnv("FRESHDESK_L2_TEAM_NAME", "L2 Teams"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Resolver: ResolverConfig{
			MaxPages:        getEnvAsInt("RESOLVER_MAX_PAGES", 100),
			CacheTTLSeconds: getEnvAsInt("RESOLVER_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured per-invocation timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// BaseURL returns the provider API root. A domain without a scheme is
// served over HTTPS.
func (f FreshdeskConfig) BaseURL() string {
	if strings.HasPrefix(f.Domain, "http://") || strings.HasPrefix(f.Domain, "https://") {
		return f.Domain
	}
	return "https://" + f.Domain
}

// Host returns the provider domain with any scheme stripped.
func (f FreshdeskConfig) Host() string {
	host := strings.TrimPrefix(f.Domain, "https://")
	return strings.TrimPrefix(host, "http://")
}

// Enabled reports whether the resolver cache is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// CacheTTL returns the resolver cache entry lifetime.
func (r ResolverConfig) CacheTTL() time.Duration {
	if r.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.CacheTTLSeconds) * time.Second
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
