package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfigDefaults checks that the defaults are safe and non-zero.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("HTTPTimeout = %v, expected %v", cfg.HTTPTimeout, DefaultHTTPTimeout)
	}
	if cfg.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("MaxBodySize = %d, expected %d", cfg.MaxBodySize, DefaultMaxBodySize)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, expected %v", cfg.CacheTTL, DefaultCacheTTL)
	}
	if !cfg.BlockPrivateHosts {
		t.Error("BlockPrivateHosts should default to true")
	}
	if cfg.PhoneRegion != DefaultPhoneRegion {
		t.Errorf("PhoneRegion = %q, expected %q", cfg.PhoneRegion, DefaultPhoneRegion)
	}
	if cfg.SearchConfigured() {
		t.Error("search should be unconfigured by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestConfigValidate tests validation error cases.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(*Config)
		expected error
	}{
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, ErrInvalidTimeout},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, ErrInvalidCacheTTL},
		{"zero search results", func(c *Config) { c.SearchResults = 0 }, ErrInvalidSearchResults},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"both report formats", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.expected) {
				t.Errorf("Validate() = %v, expected %v", err, tc.expected)
			}
		})
	}
}

// TestSearchConfigured requires both key and cx.
func TestSearchConfigured(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.SearchAPIKey = "key"
	if cfg.SearchConfigured() {
		t.Error("key without cx must not count as configured")
	}
	cfg.SearchCX = "cx"
	if !cfg.SearchConfigured() {
		t.Error("key and cx together should count as configured")
	}
}

// TestLoadConfigFile tests YAML loading and merge behavior.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("loads and applies settings", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `search:
  apiKey: test-key
  cx: test-cx
  country: us
httpTimeoutSeconds: 4
cacheTTLSeconds: 60
blockPrivateHosts: false
phoneRegion: US
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile failed: %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if !cfg.SearchConfigured() {
			t.Error("expected search configured after apply")
		}
		if cfg.SearchCountry != "us" {
			t.Errorf("SearchCountry = %q, expected us", cfg.SearchCountry)
		}
		if cfg.SearchLanguage != DefaultSearchLanguage {
			t.Errorf("SearchLanguage = %q, expected default kept", cfg.SearchLanguage)
		}
		if cfg.HTTPTimeout != 4*time.Second {
			t.Errorf("HTTPTimeout = %v, expected 4s", cfg.HTTPTimeout)
		}
		if cfg.CacheTTL != time.Minute {
			t.Errorf("CacheTTL = %v, expected 1m", cfg.CacheTTL)
		}
		if cfg.BlockPrivateHosts {
			t.Error("BlockPrivateHosts should be overridden to false")
		}
		if cfg.PhoneRegion != "US" {
			t.Errorf("PhoneRegion = %q, expected US", cfg.PhoneRegion)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(":\n  - ]["), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}
