package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	APIURL       string // SPRINTBOARD_API_URL (required)
	ProjectID    string // SPRINTBOARD_PROJECT (optional default project)
	Token        string // SPRINTBOARD_TOKEN (access token, usually a JWT)
	RefreshToken string // SPRINTBOARD_REFRESH_TOKEN (enables token refresh)
	NATSURL      string // SPRINTBOARD_NATS_URL (optional, empty = no events)
	DatabaseURL  string // SPRINTBOARD_DATABASE_URL (optional, empty = in-memory journal)

	ColumnDebounce time.Duration // SPRINTBOARD_COLUMN_DEBOUNCE (default 800ms)
	RequestTimeout time.Duration // SPRINTBOARD_REQUEST_TIMEOUT (default 15s)

	// Journal export settings
	ExportInterval   time.Duration // SPRINTBOARD_EXPORT_INTERVAL (default 0 = disabled)
	ExportS3Bucket   string        // SPRINTBOARD_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // SPRINTBOARD_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // SPRINTBOARD_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // SPRINTBOARD_EXPORT_S3_KEY (default "sprintboard/journal.jsonl")
	ExportFile       string        // SPRINTBOARD_EXPORT_FILE (enables file export when set)
}

// Fallback supplies values for variables that are unset, typically from the
// active profile.
type Fallback struct {
	APIURL       string
	ProjectID    string
	Token        string
	RefreshToken string
	NATSURL      string
	DatabaseURL  string
}

func Load(fb Fallback) (*Config, error) {
	c := &Config{
		APIURL:           envOrDefault("SPRINTBOARD_API_URL", fb.APIURL),
		ProjectID:        envOrDefault("SPRINTBOARD_PROJECT", fb.ProjectID),
		Token:            envOrDefault("SPRINTBOARD_TOKEN", fb.Token),
		RefreshToken:     envOrDefault("SPRINTBOARD_REFRESH_TOKEN", fb.RefreshToken),
		NATSURL:          envOrDefault("SPRINTBOARD_NATS_URL", fb.NATSURL),
		DatabaseURL:      envOrDefault("SPRINTBOARD_DATABASE_URL", fb.DatabaseURL),
		ExportS3Bucket:   os.Getenv("SPRINTBOARD_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("SPRINTBOARD_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("SPRINTBOARD_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("SPRINTBOARD_EXPORT_S3_KEY", "sprintboard/journal.jsonl"),
		ExportFile:       os.Getenv("SPRINTBOARD_EXPORT_FILE"),
	}
	if c.APIURL == "" {
		return nil, fmt.Errorf("SPRINTBOARD_API_URL is required")
	}

	for _, d := range []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"SPRINTBOARD_COLUMN_DEBOUNCE", "800ms", &c.ColumnDebounce},
		{"SPRINTBOARD_REQUEST_TIMEOUT", "15s", &c.RequestTimeout},
		{"SPRINTBOARD_EXPORT_INTERVAL", "0", &c.ExportInterval},
	} {
		v, err := time.ParseDuration(envOrDefault(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("%s: must not be negative", d.key)
		}
		*d.dst = v
	}

	return c, nil
}

// ExportEnabled reports whether any journal export destination is configured.
func (c *Config) ExportEnabled() bool {
	return c.ExportS3Bucket != "" || c.ExportFile != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
