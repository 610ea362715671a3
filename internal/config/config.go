// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings such as the
// local server, logging, cache TTL policy, blob prefetching, the remote salon
// API, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings for the local
// read surface (the UI process is typically a webview on another origin).
type CORSConfig struct {
	AllowedOrigins []string
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "salon-core")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// CacheConfig holds the per-domain staleness thresholds. TTLs never evict:
// stale data is still served while warmup refreshes it.
type CacheConfig struct {
	CatalogTTL time.Duration // catalog categories, services, profile
	BannersTTL time.Duration // banner metadata
	RecordsTTL time.Duration // subscriptions and appointments
}

// PrefetchConfig bounds the banner image fan-out performed at warmup.
type PrefetchConfig struct {
	RPS   float64 // outbound fetches per second (0 = unlimited)
	Burst int     // token bucket size (>= 1)
}

// RemoteConfig describes the backend salon API consumed by the client.
type RemoteConfig struct {
	BaseURL        string        // REMOTE_BASE_URL, empty disables remote sources
	RequestTimeout time.Duration // per-request deadline for catalog/banner calls
	ChargeTimeout  time.Duration // deadline for the payment charge at commit
}

// Config holds all configuration values for the application.
type Config struct {
	// Local server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// API surface
	APIBasePath string // base path for local API routes

	// Storage
	DBPath  string // SQLite path for the durable key-value store
	BlobDir string // directory of the named image blob cache

	// CatalogPath optionally overrides the bundled catalog snapshot
	// with an on-disk JSON file. Empty uses the embedded seed.
	CatalogPath string

	// Display locale (BCP 47) used when formatting amounts in responses.
	Locale string

	// DraftDebounce coalesces rapid draft saves into one write.
	DraftDebounce time.Duration

	// Local API rate limiting (token bucket per client IP).
	RateRPS   float64 // RATE_RPS
	RateBurst int     // RATE_BURST

	Cache    CacheConfig
	Prefetch PrefetchConfig
	Remote   RemoteConfig
	CORS     CORSConfig
	OTEL     OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Local server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// API surface
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DBPath:  getenv("DB_PATH", "salon.db"),
		BlobDir: getenv("BLOB_DIR", "blobcache"),

		CatalogPath: getenv("CATALOG_PATH", ""),

		// Display
		Locale: getenv("LOCALE", "en"),

		// Draft autosave
		DraftDebounce: getdur("DRAFT_DEBOUNCE", 300*time.Millisecond),

		// Cache staleness policy
		Cache: CacheConfig{
			CatalogTTL: getdur("CACHE_CATALOG_TTL", 24*time.Hour),
			BannersTTL: getdur("CACHE_BANNERS_TTL", 6*time.Hour),
			RecordsTTL: getdur("CACHE_RECORDS_TTL", 10*time.Minute),
		},

		// Local API rate limiting
		RateRPS:   getfloat("RATE_RPS", 50),
		RateBurst: getint("RATE_BURST", 100),

		// Banner prefetch
		Prefetch: PrefetchConfig{
			RPS:   getfloat("PREFETCH_RPS", 8.0),
			Burst: getint("PREFETCH_BURST", 4),
		},

		// Remote salon API
		Remote: RemoteConfig{
			BaseURL:        strings.TrimRight(getenv("REMOTE_BASE_URL", ""), "/"),
			RequestTimeout: getdur("REMOTE_REQUEST_TIMEOUT", 10*time.Second),
			ChargeTimeout:  getdur("REMOTE_CHARGE_TIMEOUT", 5*time.Second),
		},

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "salon-core"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.BlobDir) == "" {
		return cfg, errors.New("BLOB_DIR must not be empty")
	}
	if cfg.Cache.CatalogTTL <= 0 || cfg.Cache.BannersTTL <= 0 || cfg.Cache.RecordsTTL <= 0 {
		return cfg, errors.New("cache TTLs must be positive durations")
	}
	if cfg.RateRPS <= 0 || cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_RPS must be > 0 and RATE_BURST >= 1")
	}
	if cfg.Prefetch.RPS < 0 {
		return cfg, errors.New("PREFETCH_RPS must be >= 0")
	}
	if cfg.Prefetch.Burst < 1 {
		return cfg, errors.New("PREFETCH_BURST must be >= 1")
	}
	if cfg.Remote.RequestTimeout <= 0 || cfg.Remote.ChargeTimeout <= 0 {
		return cfg, errors.New("remote timeouts must be positive durations")
	}
	if cfg.DraftDebounce < 0 {
		return cfg, errors.New("DRAFT_DEBOUNCE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
