package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application settings read from the environment
type Config struct {
	Env        string
	Version    string
	ServerPort string

	// Database
	DBDriver string
	DBDSN    string
	DBPath   string

	// Admin session
	AdminEmail    string
	AdminPass     string
	AdminPassHash string
	SessionSecret string
	SessionTTL    time.Duration

	// Public links
	PublicBaseURL string

	// Storage
	StorageProvider  string
	StoragePath      string
	StorageBaseURL   string
	StorageAPIKey    string
	StorageAPISecret string
	StorageEndpoint  string
	StorageBucket    string
	StorageRegion    string
	StorageAccountID string
	CDN              string
	ConvertImages    bool
	UploadMaxBytes   int64

	// Email
	EmailProvider        string
	EmailFrom            string
	SendGridAPIKey       string
	PostmarkServerToken  string
	PostmarkAccountToken string

	// Intake
	IntakeTokenTTL  time.Duration
	IntakeRateLimit int

	// Redis (optional, used for shared rate limiting)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	WebSocketEnabled bool

	Middleware MiddlewareConfig
}

// MiddlewareConfig toggles the global middleware chain
type MiddlewareConfig struct {
	CORSEnabled        bool
	CORSAllowedOrigins []string
	LoggingEnabled     bool
	LoggingSkipPaths   []string
	TrustedProxies     []string
	MaxBodyBytes       int64
	MaxMultipartBytes  int64
}

// IsLoggingRequired reports whether requests to path should be logged
func (m *MiddlewareConfig) IsLoggingRequired(path string) bool {
	if !m.LoggingEnabled {
		return false
	}
	for _, skip := range m.LoggingSkipPaths {
		if skip != "" && strings.HasPrefix(path, skip) {
			return false
		}
	}
	return true
}

// NewConfig builds the configuration from environment variables
func NewConfig() *Config {
	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		Version:    getEnv("APP_VERSION", "1.0.0"),
		ServerPort: normalizePort(getEnv("SERVER_PORT", ":8100")),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("DB_DSN", ""),
		DBPath:   getEnv("DB_PATH", "storage/realtor.db"),

		AdminEmail:    strings.ToLower(getEnv("ADMIN_EMAIL", "")),
		AdminPass:     getEnv("ADMIN_PASS", ""),
		AdminPassHash: getEnv("ADMIN_PASS_HASH", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvDuration("SESSION_TTL", 30*24*time.Hour),

		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		StorageProvider:  getEnv("STORAGE_PROVIDER", "local"),
		StoragePath:      getEnv("STORAGE_PATH", "storage"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "/storage"),
		StorageAPIKey:    getEnv("STORAGE_API_KEY", ""),
		StorageAPISecret: getEnv("STORAGE_API_SECRET", ""),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		StorageRegion:    getEnv("STORAGE_REGION", ""),
		StorageAccountID: getEnv("STORAGE_ACCOUNT_ID", ""),
		CDN:              getEnv("CDN", ""),
		ConvertImages:    getEnvBool("STORAGE_CONVERT_IMAGES", true),
		UploadMaxBytes:   int64(getEnvInt("UPLOAD_MAX_BYTES", 4_500_000)),

		EmailProvider:        strings.ToLower(getEnv("EMAIL_PROVIDER", "log")),
		EmailFrom:            getEnv("EMAIL_FROM", "no-reply@localhost"),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		PostmarkServerToken:  getEnv("POSTMARK_SERVER_TOKEN", ""),
		PostmarkAccountToken: getEnv("POSTMARK_ACCOUNT_TOKEN", ""),

		IntakeTokenTTL:  getEnvDuration("INTAKE_TOKEN_TTL", 14*24*time.Hour),
		IntakeRateLimit: getEnvInt("INTAKE_RATE_LIMIT", 10),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		WebSocketEnabled: getEnvBool("WEBSOCKET_ENABLED", false),

		Middleware: MiddlewareConfig{
			CORSEnabled:        getEnvBool("CORS_ENABLED", false),
			CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
			LoggingEnabled:     getEnvBool("REQUEST_LOGGING", true),
			LoggingSkipPaths:   splitList(getEnv("REQUEST_LOGGING_SKIP", "/health,/static,/storage")),
			TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),
			MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
			MaxMultipartBytes:  int64(getEnvInt("MAX_MULTIPART_BYTES", 32<<20)),
		},
	}
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv returns the value of key or fallback when unset or blank
func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.ReplaceAll(value, "_", ""))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizePort accepts "8100" as well as ":8100"
func normalizePort(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
