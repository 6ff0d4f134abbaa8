package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".riskcheck"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .riskcheck configuration file.
// Every field is optional; absent fields keep their defaults or flag
// values. The file is the natural home for the search credentials, which
// should not appear in shell history.
type File struct {
	// Search holds the footprint-search provider settings.
	Search SearchFile `yaml:"search,omitempty"`

	// HTTPTimeoutSeconds overrides the outbound request timeout.
	HTTPTimeoutSeconds int `yaml:"httpTimeoutSeconds,omitempty"`

	// CacheTTLSeconds overrides how long search responses stay cached.
	CacheTTLSeconds int `yaml:"cacheTTLSeconds,omitempty"`

	// BlockPrivateHosts toggles the IP-literal safety gate.
	// Nil means keep the default (enabled).
	BlockPrivateHosts *bool `yaml:"blockPrivateHosts,omitempty"`

	// PhoneRegion overrides the default phone parsing region.
	PhoneRegion string `yaml:"phoneRegion,omitempty"`

	// DBDir overrides the database directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// SearchFile holds the search provider block of the config file.
type SearchFile struct {
	// APIKey is the Google Custom Search API key.
	APIKey string `yaml:"apiKey,omitempty"`

	// CX is the Programmable Search Engine identifier.
	CX string `yaml:"cx,omitempty"`

	// Country is the gl result bias (e.g. "pk").
	Country string `yaml:"country,omitempty"`

	// Language is the hl query language (e.g. "en").
	Language string `yaml:"language,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound; callers decide
// whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply merges the file settings into the config. Only set fields
// override; zero values leave the config untouched so that flag values
// and defaults survive.
func (f *File) Apply(c *Config) {
	if f.Search.APIKey != "" {
		c.SearchAPIKey = f.Search.APIKey
	}
	if f.Search.CX != "" {
		c.SearchCX = f.Search.CX
	}
	if f.Search.Country != "" {
		c.SearchCountry = f.Search.Country
	}
	if f.Search.Language != "" {
		c.SearchLanguage = f.Search.Language
	}
	if f.HTTPTimeoutSeconds > 0 {
		c.HTTPTimeout = time.Duration(f.HTTPTimeoutSeconds) * time.Second
	}
	if f.CacheTTLSeconds > 0 {
		c.CacheTTL = time.Duration(f.CacheTTLSeconds) * time.Second
	}
	if f.BlockPrivateHosts != nil {
		c.BlockPrivateHosts = *f.BlockPrivateHosts
	}
	if f.PhoneRegion != "" {
		c.PhoneRegion = f.PhoneRegion
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// FindConfigFile searches for the configuration file in order:
// an explicit path, the current directory, then the home directory.
// Returns the path found or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
