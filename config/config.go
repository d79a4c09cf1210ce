package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	LogLevel string // overrides the env default when set

	// Hosted backend. Both empty selects demo mode.
	BackendURL     string // postgres DSN of the hosted backend
	BackendAnonKey string // public client key; tokens carry an audience derived from it
	DBMaxConns     int32
	DBMinConns     int32
	DBMaxConnLife  time.Duration

	// demoMode is decided once in Load and never re-evaluated.
	demoMode bool

	// Demo mode local storage: "file" or "redis"
	DemoStorage    string
	DemoStorageDir string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Google Cloud Storage
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// JWT
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	SessionTTL       time.Duration

	// Cookies
	CookieDomain string
	CookieSecure bool

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Migrations
	MigrationsDir string

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESProfilesIndex    string

	// Email sending toggle
	MailSendEnabled bool

	// Debug metrics (/api/debug/vars)
	DebugMetricsEnabled bool
	// CIDRs exempt from rate limiting besides private networks, comma-separated
	TrustedCIDRs string

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

// ErrPartialBackend is returned by Validate when only one of the backend
// URL and key is set.
var ErrPartialBackend = errors.New("BACKEND_URL and BACKEND_ANON_KEY must be set together")

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// Load loads configuration from environment variables
func Load() *Config {
	c := &Config{
		AppName: getenv("APP_NAME", "tahfidz-portal"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		LogLevel: getenv("LOG_LEVEL", ""),

		BackendURL:     strings.TrimSpace(os.Getenv("BACKEND_URL")),
		BackendAnonKey: strings.TrimSpace(os.Getenv("BACKEND_ANON_KEY")),
		DBMaxConns:     int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:     int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife:  getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		DemoStorage:    getenv("DEMO_STORAGE", "file"),
		DemoStorageDir: getenv("DEMO_STORAGE_DIR", "var/demo-sessions"),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		JWTAccessSecret:  getenv("JWT_ACCESS_SECRET", "devaccesssecret"),
		JWTRefreshSecret: getenv("JWT_REFRESH_SECRET", "devrefreshsecret"),
		AccessTTL:        getdur("JWT_ACCESS_TTL", time.Hour),
		RefreshTTL:       getdur("JWT_REFRESH_TTL", 168*time.Hour),
		SessionTTL:       getdur("SESSION_TTL", 24*time.Hour),

		CookieDomain: getenv("COOKIE_DOMAIN", "localhost"),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESProfilesIndex:    getenv("ES_PROFILES_INDEX", "profiles"),

		// Email sending toggle (off unless a queue is configured)
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),
		TrustedCIDRs:        getenv("TRUSTED_CIDRS", ""),

		// HTTP access log toggle (default false; enable when needed)
		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
	c.demoMode = c.BackendURL == "" && c.BackendAnonKey == ""
	return c
}

// IsDemoMode reports whether no hosted backend is configured.
func (c *Config) IsDemoMode() bool { return c.demoMode }

// Validate rejects configurations that cannot start.
func (c *Config) Validate() error {
	if !c.demoMode && (c.BackendURL == "" || c.BackendAnonKey == "") {
		return ErrPartialBackend
	}
	if c.DemoStorage != "file" && c.DemoStorage != "redis" {
		return errors.New("DEMO_STORAGE must be file or redis")
	}
	if c.DemoStorage == "redis" && c.RedisAddr == "" && c.demoMode {
		return errors.New("DEMO_STORAGE=redis requires REDIS_ADDR")
	}
	return nil
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitCSV(c.CORSAllowedOrigins)
}

// TrustedNets returns the extra rate-limit exempt CIDRs as slice
func (c *Config) TrustedNets() []string {
	return splitCSV(c.TrustedCIDRs)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitCSV(c.ElasticsearchAddrs)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
