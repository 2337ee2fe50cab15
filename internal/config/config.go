package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot backends
const (
	SnapshotMemory   = "memory"
	SnapshotFile     = "file"
	SnapshotPostgres = "postgres"
)

// Upload backends
const (
	UploadSimulated = "simulated"
	UploadS3        = "s3"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string
	// Preferences persistence
	SnapshotBackend string // memory, file or postgres
	SnapshotDir     string
	DatabaseURL     string
	// Session tokens
	SessionSecret string
	SessionTTL    time.Duration
	// Uploads
	UploadBackend string // simulated or s3
	UploadSeed    int64
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Region      string
	S3Bucket      string
	S3Prefix      string
	S3UseSSL      bool
	// UI
	NotificationDuration time.Duration
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables debug level logging
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,

		SnapshotBackend: strings.ToLower(getEnv("SNAPSHOT_BACKEND", SnapshotMemory)),
		SnapshotDir:     getEnv("SNAPSHOT_DIR", "./data/snapshots"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),

		SessionSecret: getEnv("SESSION_SECRET", getDefaultSecret(env)),
		SessionTTL:    getDuration("SESSION_TTL", 12*time.Hour),

		UploadBackend: strings.ToLower(getEnv("UPLOAD_BACKEND", UploadSimulated)),
		UploadSeed:    getInt64("UPLOAD_SEED", time.Now().UnixNano()),
		S3Endpoint:    getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET", "documentum-uploads"),
		S3Prefix:      getEnv("S3_PREFIX", tablePrefix+"uploads"),
		S3UseSSL:      getEnv("S3_USE_SSL", "false") == "true",

		NotificationDuration: getDuration("NOTIFICATION_DURATION", 5*time.Second),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: int(getInt64("LOG_MAX_FILES", DefaultLogMaxFiles)),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getDefaultSecret returns a fixed signing secret outside production.
// Production must set SESSION_SECRET.
func getDefaultSecret(env string) string {
	if env == "prod" {
		return ""
	}
	return "documentum-dev-secret"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
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

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return d
}

func getInt64(key string, defaultValue int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}
