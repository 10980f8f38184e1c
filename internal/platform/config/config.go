package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCORSOrigins is the allow-list used when CORS_ORIGINS is unset.
var DefaultCORSOrigins = []string{
	"http://localhost",
	"https://dev.kboodle.com",
	"https://kboodle.local",
	"http://kboodle.local",
	"https://kbooble.com",
	"https://staging.kboodle.com",
	"https://staging2.kboodle.com",
}

const devSecret = "a-very-secret-string-for-local-dev"

type Config struct {
	Addr              string
	IdleTimeout       time.Duration // keep-alive connections idle longer than this are closed
	ShutdownTimeout   time.Duration // upper bound for draining in-flight requests
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration

	TLSCertFile string
	TLSKeyFile  string

	LogLevel    slog.Level
	LogFormat   string
	ServiceName string
	Environment string

	PprofEnabled bool
	AdminAddr    string

	OtlpGrpcEndpoint string
	OtlpServiceName  string
	TracingEnabled   bool

	// Providers
	GoogleClientID      string
	GoogleClientSecret  string
	UnsplashAccessKey   string
	UnsplashSecret      string
	UnsplashAPIURL      string
	GooglePickerEnabled bool

	// Companion engine
	CompanionSecret   string
	CompanionHost     string
	CompanionProtocol string
	CompanionPath     string
	CompanionURL      string
	CORSOrigins       []string
	UploadURLs        []string
	FilePath          string

	// Sessions
	RedisURL   string
	SessionTTL time.Duration

	// Outbound pool
	UpstreamTimeout  time.Duration
	UpstreamMaxConns int

	RateLimitEnabled bool
}

// Production reports whether the process runs with production settings.
func (c Config) Production() bool {
	return c.Environment == "production"
}

func Load() Config {
	cfg := Config{
		Addr:              "127.0.0.1:3020",
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,

		LogLevel:    slog.LevelInfo,
		LogFormat:   "json",
		ServiceName: "uppy-companion",
		Environment: "development",

		PprofEnabled: false,
		AdminAddr:    "127.0.0.1:6060",

		OtlpGrpcEndpoint: "127.0.0.1:4317",
		OtlpServiceName:  "uppy-companion",
		TracingEnabled:   false,

		UnsplashAPIURL:      "https://api.unsplash.com",
		GooglePickerEnabled: true,

		CompanionSecret:   devSecret,
		CompanionHost:     "127.0.0.1:3020",
		CompanionProtocol: "https",
		CORSOrigins:       append([]string(nil), DefaultCORSOrigins...),

		SessionTTL: 24 * time.Hour,

		UpstreamTimeout:  10 * time.Second,
		UpstreamMaxConns: 30,

		RateLimitEnabled: false,
	}

	_ = godotenv.Load(".env")

	if v := firstEnv("APP_ENV", "NODE_ENV"); v != "" {
		cfg.Environment = strings.ToLower(v)
	}

	if v, ok := os.LookupEnv("ADDR"); ok && v != "" {
		cfg.Addr = v
	} else if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		cfg.Addr = ":" + v
	}
	lookupDuration("IDLE_TIMEOUT", &cfg.IdleTimeout)
	lookupDuration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	lookupDuration("READ_HEADER_TIMEOUT", &cfg.ReadHeaderTimeout)
	lookupDuration("READ_TIMEOUT", &cfg.ReadTimeout)
	lookupDuration("WRITE_TIMEOUT", &cfg.WriteTimeout)

	lookupString("TLS_CERT_FILE", &cfg.TLSCertFile)
	lookupString("TLS_KEY_FILE", &cfg.TLSKeyFile)

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		switch strings.ToLower(v) {
		case "debug":
			cfg.LogLevel = slog.LevelDebug
		case "info":
			cfg.LogLevel = slog.LevelInfo
		case "warn", "warning":
			cfg.LogLevel = slog.LevelWarn
		case "error":
			cfg.LogLevel = slog.LevelError
		default:
			cfg.LogLevel = slog.LevelInfo
		}
	}
	lookupString("LOG_FORMAT", &cfg.LogFormat)
	lookupString("SERVICE_NAME", &cfg.ServiceName)

	lookupBool("PPROF_ENABLED", &cfg.PprofEnabled)
	lookupString("ADMIN_ADDR", &cfg.AdminAddr)

	lookupBool("TRACING_ENABLED", &cfg.TracingEnabled)
	lookupString("OTLP_GRPC_ENDPOINT", &cfg.OtlpGrpcEndpoint)
	lookupString("OTLP_SERVICE_NAME", &cfg.OtlpServiceName)

	// Providers. The COMPANION_* names win over the bare ones.
	if v := firstEnv("COMPANION_GOOGLE_KEY", "GOOGLE_CLIENT_ID"); v != "" {
		cfg.GoogleClientID = v
	}
	if v := firstEnv("COMPANION_GOOGLE_SECRET", "GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.GoogleClientSecret = v
	}
	if v := firstEnv("COMPANION_UNSPLASH_KEY", "UNSPLASH_ACCESS_KEY", "UNSPLASH_KEY"); v != "" {
		cfg.UnsplashAccessKey = v
	}
	if v := firstEnv("COMPANION_UNSPLASH_SECRET", "UNSPLASH_SECRET"); v != "" {
		cfg.UnsplashSecret = v
	}
	lookupString("UNSPLASH_API_URL", &cfg.UnsplashAPIURL)
	lookupBool("GOOGLE_PICKER_ENABLED", &cfg.GooglePickerEnabled)

	// Companion engine
	lookupString("COMPANION_SECRET", &cfg.CompanionSecret)
	lookupString("COMPANION_HOST", &cfg.CompanionHost)
	lookupString("COMPANION_PROTOCOL", &cfg.CompanionProtocol)
	lookupString("COMPANION_PATH", &cfg.CompanionPath)
	lookupString("COMPANION_URL", &cfg.CompanionURL)
	if cfg.CompanionURL == "" {
		cfg.CompanionURL = cfg.CompanionProtocol + "://" + cfg.CompanionHost + cfg.CompanionPath
	}
	lookupList("CORS_ORIGINS", &cfg.CORSOrigins)
	cfg.UploadURLs = []string{cfg.CompanionURL}
	lookupList("UPLOAD_URLS", &cfg.UploadURLs)

	cfg.FilePath = "./data"
	if cfg.Production() {
		cfg.FilePath = "/tmp"
	}
	lookupString("FILE_PATH", &cfg.FilePath)

	// Sessions
	lookupString("REDIS_URL", &cfg.RedisURL)
	lookupDuration("SESSION_TTL", &cfg.SessionTTL)

	// Outbound pool
	lookupDuration("UPSTREAM_TIMEOUT", &cfg.UpstreamTimeout)
	if v, ok := os.LookupEnv("UPSTREAM_MAX_CONNS"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UpstreamMaxConns = n
		}
	}

	lookupBool("RATELIMIT_ENABLED", &cfg.RateLimitEnabled)

	return cfg
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok && v != "" {
			return v
		}
	}
	return ""
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = strings.ToLower(v) == "true"
	}
}

func lookupDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// lookupList splits a comma-separated value and drops empty entries.
func lookupList(key string, dst *[]string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	out := make([]string, 0)
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
