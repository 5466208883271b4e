package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tradelens/internal/ingest"
)

type Config struct {
	// HTTP Server
	Port string

	// Dataset: optional CSV loaded at startup, and its declared encoding.
	DataPath     string
	DataEncoding string

	// Country ranking bounds (the source dashboards used a 5..20 slider).
	TopNDefault int
	TopNMax     int

	// Derived-view cache
	CacheSize int
	CacheTTL  time.Duration

	// Upload handling
	MaxUploadBytes int64
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		DataPath:       getEnv("DATA_PATH", ""),
		DataEncoding:   getEnv("DATA_ENCODING", "utf-8"),
		TopNDefault:    getEnvInt("TOP_N_DEFAULT", 10),
		TopNMax:        getEnvInt("TOP_N_MAX", 20),
		CacheSize:      getEnvInt("CACHE_SIZE", 100),
		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 16<<20),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := ingest.ParseEncoding(c.DataEncoding); err != nil {
		errors = append(errors, fmt.Sprintf("invalid data encoding '%s': must be utf-8 or cp949", c.DataEncoding))
	}

	// A configured data path must exist; an empty path just starts the
	// server without a dataset and waits for an upload.
	if c.DataPath != "" {
		if _, err := os.Stat(c.DataPath); err != nil {
			errors = append(errors, fmt.Sprintf("data path '%s' is not readable: %v", c.DataPath, err))
		}
	}

	if c.TopNDefault < 1 {
		errors = append(errors, fmt.Sprintf("invalid top-N default %d: must be at least 1", c.TopNDefault))
	}
	if c.TopNMax < c.TopNDefault {
		errors = append(errors, fmt.Sprintf("invalid top-N max %d: must be >= default %d", c.TopNMax, c.TopNDefault))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	} else if c.CacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
	}

	if c.MaxUploadBytes < 1<<10 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1KB", c.MaxUploadBytes))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Encoding returns the parsed dataset encoding. Call Validate first.
func (c *Config) Encoding() ingest.Encoding {
	enc, err := ingest.ParseEncoding(c.DataEncoding)
	if err != nil {
		return ingest.EncodingUTF8
	}
	return enc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
