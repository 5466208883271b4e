package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:           "8081",
		DataEncoding:   "utf-8",
		TopNDefault:    10,
		TopNMax:        20,
		CacheSize:      100,
		CacheTTL:       5 * time.Minute,
		MaxUploadBytes: 16 << 20,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:   "cp949 encoding is accepted",
			mutate: func(c *Config) { c.DataEncoding = "cp949" },
		},
		{
			name:        "unsupported encoding",
			mutate:      func(c *Config) { c.DataEncoding = "latin-1" },
			wantErr:     true,
			errorString: "invalid data encoding 'latin-1'",
		},
		{
			name:        "missing data path",
			mutate:      func(c *Config) { c.DataPath = "/nonexistent/trade.csv" },
			wantErr:     true,
			errorString: "is not readable",
		},
		{
			name:        "top-N max below default",
			mutate:      func(c *Config) { c.TopNMax = 5 },
			wantErr:     true,
			errorString: "invalid top-N max 5",
		},
		{
			name:        "cache TTL too short",
			mutate:      func(c *Config) { c.CacheTTL = 100 * time.Millisecond },
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name:        "upload limit too small",
			mutate:      func(c *Config) { c.MaxUploadBytes = 100 },
			wantErr:     true,
			errorString: "must be at least 1KB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("error %q does not contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_PATH", "DATA_ENCODING", "TOP_N_DEFAULT", "TOP_N_MAX", "CACHE_SIZE", "CACHE_TTL", "MAX_UPLOAD_BYTES"} {
		os.Unsetenv(key)
	}
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port = %s, want 8081", cfg.Port)
	}
	if cfg.TopNDefault != 10 || cfg.TopNMax != 20 {
		t.Fatalf("default top-N bounds = %d/%d, want 10/20", cfg.TopNDefault, cfg.TopNMax)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_ENCODING", "euc-kr")
	t.Setenv("TOP_N_DEFAULT", "5")
	t.Setenv("CACHE_TTL", "30s")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("port = %s, want 9000", cfg.Port)
	}
	if cfg.DataEncoding != "euc-kr" {
		t.Fatalf("encoding = %s, want euc-kr", cfg.DataEncoding)
	}
	if cfg.TopNDefault != 5 {
		t.Fatalf("top-N default = %d, want 5", cfg.TopNDefault)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Fatalf("cache TTL = %v, want 30s", cfg.CacheTTL)
	}
}
