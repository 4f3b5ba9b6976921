package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds object storage settings for one client authority.
// Elevated (service) credentials drive the default write path; the optional
// caller-scoped credentials are used only by the fallback strategies.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Configured reports whether this authority has credentials at all. The
// caller-scoped client is optional and may be left unset.
func (c StorageConfig) Configured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

// ContentSourceConfig holds the external content provider endpoint and its
// static credential. The token is a service credential, never an end-user
// session.
type ContentSourceConfig struct {
	BaseURL string
	Token   string
}

// IngestConfig bounds the ingestion pipeline.
type IngestConfig struct {
	MaxFilesPerDocument int
	MaxUploadBytes      int64
	BatchWindow         int
	VersioningEnabled   bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	Database      DatabaseConfig
	Storage       StorageConfig
	CallerStorage StorageConfig
	ContentSource ContentSourceConfig
	Ingest        IngestConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_BUCKET", ""),
			UseSSL:    getEnvBool("STORAGE_USE_SSL", false),
		},
		CallerStorage: StorageConfig{
			Endpoint:  getEnv("STORAGE_CALLER_ENDPOINT", getEnv("STORAGE_ENDPOINT", "")),
			AccessKey: getEnv("STORAGE_CALLER_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_CALLER_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_CALLER_BUCKET", getEnv("STORAGE_BUCKET", "")),
			UseSSL:    getEnvBool("STORAGE_USE_SSL", false),
		},
		ContentSource: ContentSourceConfig{
			BaseURL: getEnv("CONTENT_SOURCE_BASE_URL", ""),
			Token:   getEnv("CONTENT_SOURCE_TOKEN", ""),
		},
		Ingest: IngestConfig{
			MaxFilesPerDocument: getEnvInt("INGEST_MAX_FILES_PER_DOCUMENT", 100),
			MaxUploadBytes:      int64(getEnvInt("INGEST_MAX_UPLOAD_BYTES", 25<<20)),
			BatchWindow:         getEnvInt("INGEST_BATCH_WINDOW", 3),
			VersioningEnabled:   getEnvBool("INGEST_VERSIONING_ENABLED", true),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
