// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
)

// Dataset source names accepted by DATASET_SOURCE.
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies (dataset imports). Defaults to 1 MiB.
	MaxBodyBytes int64

	// DatasetSource selects where the export is read from: file, s3 or postgres.
	DatasetSource string

	// DatasetPath is the export file for the file source. Defaults to "results.json".
	DatasetPath string

	// DatabaseURL is the Postgres connection string. Required for the postgres source.
	DatabaseURL string

	// S3 locates the export object for the s3 source.
	S3 S3

	// Location resolves zone-less quest timestamps. Defaults to Europe/Paris.
	Location *time.Location

	// DayStartHour is the local hour at which a festival day starts. Defaults to 4.
	DayStartHour int
}

// S3 holds the s3 source settings.
type S3 struct {
	Bucket    string // required for the s3 source
	Key       string // defaults to "results.json"
	Region    string // defaults to "us-east-1"
	Endpoint  string // optional, for MinIO and other S3-compatible servers
	PathStyle bool
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or any
// variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DatasetSource: getEnv("DATASET_SOURCE", SourceFile),
		DatasetPath:   getEnv("DATASET_PATH", "results.json"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		S3: S3{
			Bucket:   os.Getenv("DATASET_S3_BUCKET"),
			Key:      getEnv("DATASET_S3_KEY", "results.json"),
			Region:   getEnv("DATASET_S3_REGION", "us-east-1"),
			Endpoint: os.Getenv("DATASET_S3_ENDPOINT"),
		},
	}

	var missing, invalid []string

	switch cfg.DatasetSource {
	case SourceFile:
	case SourceS3:
		if cfg.S3.Bucket == "" {
			missing = append(missing, "DATASET_S3_BUCKET")
		}
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		invalid = append(invalid, fmt.Sprintf("DATASET_SOURCE=%q (want file, s3 or postgres)", cfg.DatasetSource))
	}

	if v := os.Getenv("DATASET_S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, fmt.Sprintf("DATASET_S3_PATH_STYLE=%q", v))
		}
		cfg.S3.PathStyle = b
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Europe/Paris"))
	if err != nil {
		invalid = append(invalid, fmt.Sprintf("TIMEZONE=%q", os.Getenv("TIMEZONE")))
	}
	cfg.Location = loc

	hour, err := strconv.Atoi(getEnv("DAY_START_HOUR", "4"))
	if err != nil || hour < 0 || hour > 23 {
		invalid = append(invalid, fmt.Sprintf("DAY_START_HOUR=%q (want 0-23)", os.Getenv("DAY_START_HOUR")))
	}
	cfg.DayStartHour = hour

	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		invalid = append(invalid, fmt.Sprintf("MAX_BODY_BYTES=%q", os.Getenv("MAX_BODY_BYTES")))
	}
	cfg.MaxBodyBytes = maxBody

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
