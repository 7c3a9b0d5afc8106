package config

import (
	"os"
	"strconv"
	"time"
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

// MinIOConfig holds object storage settings for MinIO or any S3-compatible backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// RendererConfig points at the remote HTML-to-PDF service.
type RendererConfig struct {
	URL        string
	Token      string
	TimeoutSec int
}

// Timeout returns the renderer request timeout.
func (c RendererConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// AuthConfig holds the settings used to validate externally issued bearer tokens
// and the shared token guarding internal endpoints.
type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	InternalToken string
}

// CreditConfig describes how document generation is metered.
type CreditConfig struct {
	Cost          int
	UnlimitedTier string
	MeteredTier   string
}

// DocumentConfig holds document lifecycle settings.
type DocumentConfig struct {
	Type             string
	RetentionDays    int
	SignedURLTTLSec  int
	MaxListPageLimit int
}

// Retention returns how long a generated document is kept.
func (c DocumentConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// SignedURLTTL returns the lifetime of a presigned retrieval URL.
func (c DocumentConfig) SignedURLTTL() time.Duration {
	return time.Duration(c.SignedURLTTLSec) * time.Second
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Renderer RendererConfig
	Auth     AuthConfig
	Credit   CreditConfig
	Document DocumentConfig
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
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
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Renderer: RendererConfig{
			URL:        getEnv("RENDERER_URL", ""),
			Token:      getEnv("RENDERER_TOKEN", ""),
			TimeoutSec: getEnvInt("RENDERER_TIMEOUT_SEC", 60),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer:     getEnv("AUTH_JWT_ISSUER", ""),
			InternalToken: getEnv("AUTH_INTERNAL_TOKEN", ""),
		},
		Credit: CreditConfig{
			Cost:          getEnvInt("CREDIT_COST", 15),
			UnlimitedTier: getEnv("CREDIT_UNLIMITED_TIER", "Premium_contract"),
			MeteredTier:   getEnv("CREDIT_METERED_TIER", "Premium"),
		},
		Document: DocumentConfig{
			Type:             getEnv("DOC_TYPE", "EMP_NDA"),
			RetentionDays:    getEnvInt("DOC_RETENTION_DAYS", 30),
			SignedURLTTLSec:  getEnvInt("DOC_SIGNED_URL_TTL_SEC", 300),
			MaxListPageLimit: getEnvInt("DOC_MAX_PAGE_LIMIT", 100),
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
