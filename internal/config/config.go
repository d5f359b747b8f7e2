// Package config loads process settings from the environment. Provider
// credentials come from *_API_KEYS variables or, when PROVIDERS_FILE is
// set, from a YAML file validated against an embedded JSON schema.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-issue-digest/internal/domain"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-issue-digest")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// RedisConfig configures cross-instance notification delivery.
type RedisConfig struct {
	Addr    string // REDIS_ADDR; empty disables Redis
	Channel string // REDIS_CHANNEL
}

// GenerationConfig holds provider and pipeline settings.
type GenerationConfig struct {
	SourceLang      domain.Language  // SOURCE_LANG
	TargetLang      domain.Language  // TARGET_LANG
	ProviderTimeout time.Duration    // per provider HTTP call
	RunTimeout      time.Duration    // one background run (GENERATION_TIMEOUT)
	MaxOutputTokens int              // 0 keeps per-kind budgets
	Concurrency     int              // background runs in flight
	ProvidersFile   string           // optional YAML file replacing the env lists
	Providers       []ProviderConfig // resolved provider list in priority order
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	ShutdownTimeout   time.Duration // graceful shutdown budget

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DBDriver    string // sqlite|postgres
	DBPath      string // SQLite path
	DatabaseURL string // Postgres URL

	// Pipeline
	Generation GenerationConfig

	// Notifications
	Redis RedisConfig

	// Admin
	AdminJWTSecret string // HS256 secret; empty leaves admin routes open

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, fills defaults, resolves languages and the
// provider list, and validates the result. Every validation problem is
// reported in the returned error, not only the first.
func Load() (Config, error) {
	cfg := fromEnv()
	cfg.normalize()

	var errs []error
	src, err := domain.ParseLanguage(getenv("SOURCE_LANG", "en"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SOURCE_LANG: %w", err))
	}
	dst, err := domain.ParseLanguage(getenv("TARGET_LANG", "cs"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TARGET_LANG: %w", err))
	}
	cfg.Generation.SourceLang, cfg.Generation.TargetLang = src, dst

	if f := strings.TrimSpace(cfg.Generation.ProvidersFile); f != "" {
		ps, err := LoadProviders(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("PROVIDERS_FILE: %w", err))
		}
		cfg.Generation.Providers = ps
	} else {
		cfg.Generation.Providers = providersFromEnv()
	}

	errs = append(errs, cfg.validate()...)
	return cfg, errors.Join(errs...)
}

func fromEnv() Config {
	return Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           getenv("GIN_MODE", "release"),
		ShutdownTimeout:   getdur("SHUTDOWN_TIMEOUT", 30*time.Second),

		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    getenv("API_BASE_PATH", "/api/v1"),

		DBDriver:    getenv("DB_DRIVER", "sqlite"),
		DBPath:      getenv("DB_PATH", "app.db"),
		DatabaseURL: getenv("DATABASE_URL", ""),

		Generation: GenerationConfig{
			ProviderTimeout: getdur("PROVIDER_TIMEOUT", 60*time.Second),
			RunTimeout:      getdur("GENERATION_TIMEOUT", 5*time.Minute),
			MaxOutputTokens: getint("MAX_OUTPUT_TOKENS", 0),
			Concurrency:     getint("GENERATION_CONCURRENCY", 4),
			ProvidersFile:   getenv("PROVIDERS_FILE", ""),
		},

		Redis: RedisConfig{
			Addr:    getenv("REDIS_ADDR", ""),
			Channel: getenv("REDIS_CHANNEL", "issue-digest:artifacts"),
		},

		AdminJWTSecret: getenv("ADMIN_JWT_SECRET", ""),

		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		CORS: CORSConfig{AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-issue-digest"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
}

// normalize lower-cases enumerations, maps aliases and cleans the base path.
// An unknown GIN_MODE degrades to release.
func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.APIBasePath = normalizeBasePath(c.APIBasePath)
}

func (c Config) validate() []error {
	var errs []error
	check := func(bad bool, msg string) {
		if bad {
			errs = append(errs, errors.New(msg))
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q must be one of: debug, info, warn, error, fatal, panic", c.LogLevel))
	}
	check(strings.TrimSpace(c.Port) == "", "PORT must not be empty")
	check(c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
		"READ_TIMEOUT, READ_HEADER_TIMEOUT, WRITE_TIMEOUT and IDLE_TIMEOUT must be positive")
	check(c.ShutdownTimeout <= 0, "SHUTDOWN_TIMEOUT must be > 0")
	check(c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0")

	switch c.DBDriver {
	case "sqlite":
		check(strings.TrimSpace(c.DBPath) == "", "DB_PATH must not be empty")
	case "postgres":
		check(strings.TrimSpace(c.DatabaseURL) == "", "DATABASE_URL is required when DB_DRIVER=postgres")
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q must be sqlite or postgres", c.DBDriver))
	}

	g := c.Generation
	check(g.ProviderTimeout <= 0 || g.RunTimeout <= 0, "PROVIDER_TIMEOUT and GENERATION_TIMEOUT must be positive")
	check(g.MaxOutputTokens < 0, "MAX_OUTPUT_TOKENS must be >= 0")
	check(g.Concurrency < 1, "GENERATION_CONCURRENCY must be >= 1")

	check(c.RateRPS < 0, "RATE_RPS must be >= 0")
	check(c.RateBurst < 1, "RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0")
	check(c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	return errs
}

// lookup parses a set, non-empty variable and falls back to def when the
// variable is missing or does not parse.
func lookup[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return lookup(k, def, func(v string) (string, error) { return v, nil })
}

func getfloat(k string, def float64) float64 {
	return lookup(k, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

func getint(k string, def int) int { return lookup(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return lookup(k, def, time.ParseDuration) }

func getbool(k string, def bool) bool {
	return lookup(k, def, func(v string) (bool, error) {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", v)
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing slash.
// Empty input is the root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
