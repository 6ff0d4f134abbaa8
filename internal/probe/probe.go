package probe

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/umerontech/riskcheck/internal/config"
)

// SearchCache caches raw search responses keyed by a query hash.
// Implementations must return (nil, false) for both a miss and an entry
// older than ttl so expired entries are refreshed transparently.
//
// Design decision: We cache opaque payload bytes rather than typed
// results because:
//  1. Error responses are cached too, and share the same payload shape
//  2. The storage layer stays ignorant of search response structure
//  3. Payload evolution does not require cache schema migrations
type SearchCache interface {
	// GetSearch returns the cached payload for key if it exists and is
	// younger than ttl.
	GetSearch(key string, ttl time.Duration) ([]byte, bool)

	// PutSearch stores the payload for key, replacing any previous entry.
	// The original query is stored alongside for inspection.
	PutSearch(key, query string, payload []byte) error
}

// Prober runs the external checks behind assessment signals.
// A single Prober is safe for concurrent use; batch assessment shares
// one instance across workers.
//
// Design decision: We bundle all probes behind one struct rather than
// one client per check because:
//  1. HTTP configuration (timeout, User-Agent) should be consistent
//  2. Connection pooling works better with shared clients
//  3. Callers wire one dependency instead of five
type Prober struct {
	// client performs reachability fetches. Redirects are followed so
	// the final URL scheme reflects where the content actually lives.
	client *http.Client

	// search performs search engine and RDAP requests with retries.
	// These endpoints are rate limited upstream, so transient failures
	// are worth retrying where a reachability probe is not.
	search *retryablehttp.Client

	// cache stores search responses. Nil disables caching.
	cache SearchCache

	// resolver performs MX lookups for email domain checks.
	resolver *net.Resolver

	// logger records probe activity. Uses slog with sanitization
	// applied by the caller.
	logger *slog.Logger

	apiKey         string
	cx             string
	searchEndpoint string
	rdapEndpoint   string
	searchResults  int
	searchCountry  string
	searchLanguage string

	userAgent   string
	maxBodySize int64
	timeout     time.Duration
	cacheTTL    time.Duration

	// blockPrivateHosts gates reachability fetches to public hosts.
	// Disabled only in tests that target loopback servers.
	blockPrivateHosts bool

	// phoneRegion is the default region for parsing national-format
	// phone numbers.
	phoneRegion string
}

// Option configures a Prober.
type Option func(*Prober)

// WithSearchCredentials sets the search engine API key and engine ID.
// The footprint probes stay disabled until both are present.
func WithSearchCredentials(apiKey, cx string) Option {
	return func(p *Prober) {
		p.apiKey = apiKey
		p.cx = cx
	}
}

// WithSearchEndpoint overrides the search API endpoint.
func WithSearchEndpoint(endpoint string) Option {
	return func(p *Prober) {
		p.searchEndpoint = endpoint
	}
}

// WithRDAPEndpoint overrides the RDAP service base URL.
func WithRDAPEndpoint(endpoint string) Option {
	return func(p *Prober) {
		p.rdapEndpoint = endpoint
	}
}

// WithSearchDefaults sets the result count, country, and language used
// for search queries. The result count is clamped to the API's 1..10
// range at request time.
func WithSearchDefaults(results int, country, language string) Option {
	return func(p *Prober) {
		p.searchResults = results
		p.searchCountry = country
		p.searchLanguage = language
	}
}

// WithCache sets the search response cache.
func WithCache(cache SearchCache) Option {
	return func(p *Prober) {
		p.cache = cache
	}
}

// WithCacheTTL sets how long cached search responses stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Prober) {
		p.cacheTTL = ttl
	}
}

// WithTimeout sets the per-request timeout for all probes.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		p.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header for reachability fetches.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithMaxBodySize caps the number of response bytes read during a
// reachability fetch.
func WithMaxBodySize(size int64) Option {
	return func(p *Prober) {
		p.maxBodySize = size
	}
}

// WithBlockPrivateHosts controls whether reachability fetches to
// private and loopback hosts are rejected.
func WithBlockPrivateHosts(block bool) Option {
	return func(p *Prober) {
		p.blockPrivateHosts = block
	}
}

// WithPhoneRegion sets the default region for phone number parsing.
func WithPhoneRegion(region string) Option {
	return func(p *Prober) {
		p.phoneRegion = region
	}
}

// WithResolver sets the DNS resolver used for MX lookups.
func WithResolver(r *net.Resolver) Option {
	return func(p *Prober) {
		p.resolver = r
	}
}

// WithLogger sets the logger for probe activity.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober with sensible defaults, applying any
// options on top.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		cache:             nil,
		resolver:          net.DefaultResolver,
		logger:            slog.Default(),
		searchEndpoint:    config.DefaultSearchEndpoint,
		rdapEndpoint:      config.DefaultRDAPEndpoint,
		searchResults:     config.DefaultSearchResults,
		searchCountry:     config.DefaultSearchCountry,
		searchLanguage:    config.DefaultSearchLanguage,
		userAgent:         config.DefaultUserAgent,
		maxBodySize:       config.DefaultMaxBodySize,
		timeout:           config.DefaultHTTPTimeout,
		cacheTTL:          config.DefaultCacheTTL,
		blockPrivateHosts: true,
		phoneRegion:       config.DefaultPhoneRegion,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.client = &http.Client{Timeout: p.timeout}

	retry := retryablehttp.NewClient()
	retry.RetryMax = 2
	retry.Logger = nil
	retry.HTTPClient.Timeout = p.timeout
	p.search = retry

	return p
}

// SearchEnabled reports whether the search provider is configured.
// Footprint probes return disabled results when this is false.
func (p *Prober) SearchEnabled() bool {
	return p.apiKey != "" && p.cx != ""
}
