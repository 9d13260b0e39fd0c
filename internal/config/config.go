package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // DOCKHAND_DATABASE_URL (required)
	HTTPAddr    string // DOCKHAND_HTTP_ADDR (default ":8080")
	NATSURL     string // DOCKHAND_NATS_URL (optional, empty = no events)
	AuthToken   string // DOCKHAND_AUTH_TOKEN (optional, empty = auth disabled)

	// FacilityProfile is the path to the facility TOML (optional).
	FacilityProfile string // DOCKHAND_FACILITY_PROFILE

	// Export settings
	ExportInterval   time.Duration // DOCKHAND_EXPORT_INTERVAL (default 3m; 0 = disabled)
	ExportS3Bucket   string        // DOCKHAND_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // DOCKHAND_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // DOCKHAND_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Prefix   string        // DOCKHAND_EXPORT_S3_PREFIX (default "receiving/activity/")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("DOCKHAND_DATABASE_URL"),
		HTTPAddr:         envOrDefault("DOCKHAND_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("DOCKHAND_NATS_URL"),
		AuthToken:        os.Getenv("DOCKHAND_AUTH_TOKEN"),
		FacilityProfile:  os.Getenv("DOCKHAND_FACILITY_PROFILE"),
		ExportS3Bucket:   os.Getenv("DOCKHAND_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("DOCKHAND_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("DOCKHAND_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Prefix:   envOrDefault("DOCKHAND_EXPORT_S3_PREFIX", "receiving/activity/"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("DOCKHAND_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("DOCKHAND_EXPORT_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("DOCKHAND_EXPORT_INTERVAL: %w", err)
		}
		c.ExportInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
