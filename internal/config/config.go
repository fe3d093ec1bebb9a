package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	API      APIConfig
	Frontend FrontendConfig
	Routes   RoutesConfig
	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Audit    AuditConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	AllowOrigins          string
}

// APIConfig points at the external backend API.
type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// FrontendConfig points at the renderer that serves allowed navigations.
type FrontendConfig struct {
	URL string
}

// RoutesConfig is the fixed route classification used by the guard.
type RoutesConfig struct {
	CookieName        string
	AuthPath          string
	WaitingPath       string
	LandingPath       string
	ProtectedPrefixes []string
}

// SessionConfig tunes the client auth hook and its hydration cache.
type SessionConfig struct {
	CookieName        string
	SigningSecret     string
	CacheTTLMinutes   int
	HydrationBudgetMS int
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

// AuditConfig sizes the asynchronous audit worker.
type AuditConfig struct {
	QueueSize int
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
			Name:                  getEnv("APP_NAME", "neurevia-portal-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			AllowOrigins:          os.Getenv("CORS_ALLOW_ORIGINS"),
		},
		API: APIConfig{
			BaseURL:        strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
			TimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 10),
		},
		Frontend: FrontendConfig{
			URL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3001"), "/"),
		},
		Routes: DefaultRoutes(),
		Session: SessionConfig{
			CookieName:        getEnv("SESSION_COOKIE_NAME", "neurevia_session"),
			SigningSecret:     getEnv("SESSION_SIGNING_SECRET", "dev-secret"),
			CacheTTLMinutes:   getEnvAsInt("SESSION_CACHE_TTL_MINUTES", 30),
			HydrationBudgetMS: getEnvAsInt("HYDRATION_BUDGET_MS", 1500),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
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
		Audit: AuditConfig{
			QueueSize: getEnvAsInt("AUDIT_QUEUE_SIZE", 256),
		},
	}

	cfg.Routes.CookieName = getEnv("AUTH_COOKIE_NAME", cfg.Routes.CookieName)
	cfg.Routes.AuthPath = getEnv("AUTH_PAGE_PATH", cfg.Routes.AuthPath)
	cfg.Routes.WaitingPath = getEnv("AUTH_WAITING_PATH", cfg.Routes.WaitingPath)
	cfg.Routes.LandingPath = getEnv("AUTH_LANDING_PATH", cfg.Routes.LandingPath)
	cfg.Routes.ProtectedPrefixes = getEnvAsList("AUTH_PROTECTED_PREFIXES", cfg.Routes.ProtectedPrefixes)

	if err := cfg.Routes.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultRoutes returns the portal's built-in route table.
func DefaultRoutes() RoutesConfig {
	return RoutesConfig{
		CookieName:  "auth_token",
		AuthPath:    "/auth",
		WaitingPath: "/auth/waiting-approval",
		LandingPath: "/dashboard",
		ProtectedPrefixes: []string{
			"/diagnostic-tools",
			"/settings",
			"/dashboard",
			"/profile",
		},
	}
}

// Validate rejects route tables the guard cannot evaluate safely.
func (r RoutesConfig) Validate() error {
	for name, p := range map[string]string{
		"AUTH_PAGE_PATH":    r.AuthPath,
		"AUTH_WAITING_PATH": r.WaitingPath,
		"AUTH_LANDING_PATH": r.LandingPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("invalid %s %q: must start with /", name, p)
		}
	}
	if r.CookieName == "" {
		return fmt.Errorf("AUTH_COOKIE_NAME must not be empty")
	}
	if len(r.ProtectedPrefixes) == 0 {
		return fmt.Errorf("AUTH_PROTECTED_PREFIXES must not be empty")
	}
	for _, prefix := range r.ProtectedPrefixes {
		if !strings.HasPrefix(prefix, "/") || prefix == "/" {
			return fmt.Errorf("invalid protected prefix %q", prefix)
		}
		if prefix == r.WaitingPath || strings.HasPrefix(r.WaitingPath, prefix+"/") {
			return fmt.Errorf("waiting path %q must not be protected", r.WaitingPath)
		}
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether cookies must carry the Secure flag.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds a single backend call.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long a hydrated user copy lives in the cache.
func (s SessionConfig) CacheTTL() time.Duration {
	if s.CacheTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

// MinHydrationBudget is the shortest wait WithAuth accepts. Below it a page could
// never resolve before the loading placeholder is served.
const MinHydrationBudget = 100 * time.Millisecond

// HydrationBudget is how long WithAuth waits before rendering the loading placeholder.
func (s SessionConfig) HydrationBudget() time.Duration {
	budget := time.Duration(s.HydrationBudgetMS) * time.Millisecond
	if budget < MinHydrationBudget {
		return MinHydrationBudget
	}
	return budget
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

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimRight(strings.TrimSpace(item), "/")
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
