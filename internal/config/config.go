package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends
const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Media backends
const (
	MediaLocal = "local"
	MediaS3    = "s3"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string

	// Member/settings/auth persistence
	StoreBackend  string
	DataFile      string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	// Media
	MediaBackend    string
	UploadDir       string
	UploadURLPrefix string
	MaxUploadBytes  int64
	S3Bucket        string
	S3Region        string
	S3Prefix        string
	S3PublicURL     string
	S3Endpoint      string

	// Auth
	JWTSecret       string
	TokenTTL        time.Duration
	AuthRequired    bool
	SupabaseURL     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	FrontendURL     string

	// Mail
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Rate limiting
	RedisURL           string
	RateLimitPerMinute int

	SentryDSN string

	// Seeding
	DefaultAdminEmail    string
	DefaultAdminPassword string
	SeedRootName         string

	// Logging
	LogDir      string
	LogMaxFiles int

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	var jwksURL string
	if supabaseURL != "" {
		jwksURL = strings.TrimRight(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:        getEnv("PORT", "5001"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		TablePrefix: tablePrefix,

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreJSON)),
		DataFile:      getEnv("DATA_FILE", "./data/db.json"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "familytree"),

		MediaBackend:    strings.ToLower(getEnv("MEDIA_BACKEND", MediaLocal)),
		UploadDir:       getEnv("UPLOAD_DIR", "./public/uploads"),
		UploadURLPrefix: strings.TrimRight(getEnv("UPLOAD_URL_PREFIX", "/uploads"), "/"),
		MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", DefaultUploadLimit),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Prefix:        getEnv("S3_PREFIX", "uploads/"),
		S3PublicURL:     getEnv("S3_PUBLIC_URL", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 24*time.Hour),
		AuthRequired:    getEnv("AUTH_REQUIRED", "true") == "true",
		SupabaseURL:     supabaseURL,
		SupabaseJWKSURL: jwksURL,
		FrontendURL:     strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "no-reply@familytree.local"),

		RedisURL:           getEnv("REDIS_URL", ""),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		SentryDSN: getEnv("SENTRY_DSN", ""),

		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@example.com"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
		SeedRootName:         getEnv("SEED_ROOT_NAME", DefaultRootName),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// SMTPConfigured reports whether a mail transport is available
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
