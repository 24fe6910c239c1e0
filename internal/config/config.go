package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	MinIO    MinIOConfig
	Storage  StorageConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool // false for local
}

// Configured reports whether remote credentials are present. Their absence
// toggles the fallback chain down to local-only persistence.
func (c MinIOConfig) Configured() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// StorageConfig controls local persistence and the upload gateway limits.
type StorageConfig struct {
	LocalRoot   string // asset directory for the local backend
	BaseURL     string // URL path the local root is served under
	StagingDir  string // temp dir multipart payloads are staged into
	MaxUploadMB int64  // max raw upload size accepted by the gateway
}

// PipelineConfig controls the compression pipeline.
type PipelineConfig struct {
	TimeoutSeconds int // wall-clock budget per upload, decode through persist
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "MenuCMS API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "menucms"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "menucms"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Storage: StorageConfig{
			LocalRoot:   getEnv("STORAGE_LOCAL_ROOT", "./data/uploads"),
			BaseURL:     getEnv("STORAGE_BASE_URL", "/uploads"),
			StagingDir:  getEnv("STORAGE_STAGING_DIR", os.TempDir()),
			MaxUploadMB: int64(getEnvInt("STORAGE_MAX_UPLOAD_MB", 3)),
		},
		Pipeline: PipelineConfig{
			TimeoutSeconds: getEnvInt("PIPELINE_TIMEOUT_SECONDS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	if c.Storage.MaxUploadMB <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_MB must be positive")
	}
	if c.Pipeline.TimeoutSeconds <= 0 {
		return fmt.Errorf("PIPELINE_TIMEOUT_SECONDS must be positive")
	}
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if !c.MinIO.Configured() {
			fmt.Println("WARNING: MinIO credentials not set - uploads will persist locally only")
		}
	}
	return nil
}

// ProfileOverride carries optional per-category profile tweaks from the
// environment. Zero fields mean "keep the built-in value".
type ProfileOverride struct {
	Category       string
	MinSizeKB      int
	MaxSizeKB      int
	InitialQuality int
	MaxIterations  int
}

// ProfileOverrides reads per-category overrides, e.g.
// PROFILE_MENU_ITEM_MAX_KB=180. Only categories with at least one variable
// set produce an override.
func ProfileOverrides(categories []string) []ProfileOverride {
	var overrides []ProfileOverride
	for _, cat := range categories {
		prefix := "PROFILE_" + strings.ToUpper(strings.ReplaceAll(cat, "-", "_"))
		o := ProfileOverride{
			Category:       cat,
			MinSizeKB:      getEnvInt(prefix+"_MIN_KB", 0),
			MaxSizeKB:      getEnvInt(prefix+"_MAX_KB", 0),
			InitialQuality: getEnvInt(prefix+"_QUALITY", 0),
			MaxIterations:  getEnvInt(prefix+"_MAX_ITERATIONS", 0),
		}
		if o.MinSizeKB > 0 || o.MaxSizeKB > 0 || o.InitialQuality > 0 || o.MaxIterations > 0 {
			overrides = append(overrides, o)
		}
	}
	return overrides
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
