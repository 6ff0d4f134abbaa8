package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Network defaults mirror the behavior the scoring policy was tuned
// against; changing them shifts how often probes degrade to Unknown.
const (
	// DefaultHTTPTimeout bounds each outbound probe request. Public
	// marketplaces and the RDAP service answer well within this; a
	// larger value only delays the inevitable Unknown on dead hosts.
	DefaultHTTPTimeout = 8 * time.Second

	// DefaultMaxBodySize caps response bodies read during reachability
	// checks. 600 KB is enough to confirm a page serves real content
	// without letting a single assessment stream unbounded data.
	DefaultMaxBodySize = 600_000

	// DefaultCacheTTL is how long cached search responses stay fresh.
	// Footprint results move slowly; 12 hours keeps API usage bounded
	// while still catching newly surfaced complaints within a day.
	DefaultCacheTTL = 12 * time.Hour

	// DefaultSearchResults is the number of search results requested per
	// footprint query. The provider caps this at 10; 8 keeps one query
	// per check while giving the keyword analysis enough items.
	DefaultSearchResults = 8

	// DefaultSearchCountry biases search results geographically.
	// The service primarily assesses Pakistani marketplace sellers.
	DefaultSearchCountry = "pk"

	// DefaultSearchLanguage is the interface language for search queries.
	DefaultSearchLanguage = "en"

	// DefaultPhoneRegion is the region used to parse phone numbers that
	// carry no country code.
	DefaultPhoneRegion = "PK"

	// DefaultBatchSize is the number of concurrent assessments when
	// processing a list of entities. Each assessment fans out several
	// network probes, so this stays conservative.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies RiskCheck in outbound HTTP requests.
	// A descriptive User-Agent lets operators identify probe traffic.
	DefaultUserAgent = "RiskCheckBot/1.0 (+https://umerontechnologies.com)"

	// DefaultSearchEndpoint is the Google Custom Search JSON API URL.
	DefaultSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

	// DefaultRDAPEndpoint is the public RDAP bootstrap service used for
	// domain-age lookups. It is a fixed, trusted host: probes never
	// fetch registration data from caller-controlled locations.
	DefaultRDAPEndpoint = "https://rdap.org"

	// AppName is the application name used for XDG directory paths.
	AppName = "riskcheck"
)

// Config holds all configuration options for RiskCheck.
// It is populated from defaults, the optional config file, and CLI flags,
// then passed through the application via dependency injection rather
// than global state.
type Config struct {
	// SearchAPIKey is the Google Custom Search API key. When empty, the
	// footprint probe is disabled and reports itself as unconfigured.
	SearchAPIKey string

	// SearchCX is the Programmable Search Engine identifier. Required
	// together with SearchAPIKey for footprint queries.
	SearchCX string

	// SearchCountry is the gl parameter biasing result geography.
	SearchCountry string

	// SearchLanguage is the hl parameter for search queries.
	SearchLanguage string

	// SearchResults is the number of results per footprint query.
	// The search client clamps this to the provider's 1..10 range.
	SearchResults int

	// SearchEndpoint is the search API base URL. Overridable for tests.
	SearchEndpoint string

	// RDAPEndpoint is the RDAP base URL. Overridable for tests.
	RDAPEndpoint string

	// HTTPTimeout bounds each outbound probe request.
	HTTPTimeout time.Duration

	// MaxBodySize caps response bodies read during reachability checks.
	MaxBodySize int64

	// UserAgent is sent with all outbound probe requests.
	UserAgent string

	// CacheTTL is how long cached search responses are considered fresh.
	// Entries older than this are treated as absent.
	CacheTTL time.Duration

	// BlockPrivateHosts rejects IP-literal targets in private, loopback,
	// link-local, multicast, reserved, or unspecified ranges before any
	// request is made. Hostnames are not resolved: a public name that
	// points at a private address is not blocked. This is a known,
	// accepted limitation rather than a full SSRF defense.
	BlockPrivateHosts bool

	// PhoneRegion is the default region for phone-number parsing.
	PhoneRegion string

	// DBDir is the directory holding the SQLite database (search cache,
	// submissions, community reports, media links).
	DBDir string

	// BatchSize is the number of concurrent assessments in batch mode.
	BatchSize int

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport selects JSON output instead of the terminal report.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output instead of the terminal
	// report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// ConfigFilePath is the explicit config file path, when given.
	ConfigFilePath string
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would silently misconfigure probes.
func NewConfig() *Config {
	return &Config{
		SearchCountry:     DefaultSearchCountry,
		SearchLanguage:    DefaultSearchLanguage,
		SearchResults:     DefaultSearchResults,
		SearchEndpoint:    DefaultSearchEndpoint,
		RDAPEndpoint:      DefaultRDAPEndpoint,
		HTTPTimeout:       DefaultHTTPTimeout,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		CacheTTL:          DefaultCacheTTL,
		BlockPrivateHosts: true,
		PhoneRegion:       DefaultPhoneRegion,
		DBDir:             XDGDataDir(),
		BatchSize:         DefaultBatchSize,
	}
}

// SearchConfigured reports whether footprint search can run.
// Both the API key and the engine identifier are required.
func (c *Config) SearchConfigured() bool {
	return c.SearchAPIKey != "" && c.SearchCX != ""
}

// XDGDataDir returns the XDG data directory for RiskCheck.
// On Linux: ~/.local/share/riskcheck
// On macOS: ~/Library/Application Support/riskcheck
// On Windows: %LOCALAPPDATA%\riskcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for RiskCheck.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns a specific error for the
// first problem found. It runs once after flag parsing, before any probe,
// so misconfiguration fails fast with a clear message.
func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	if c.SearchResults <= 0 {
		return ErrInvalidSearchResults
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
