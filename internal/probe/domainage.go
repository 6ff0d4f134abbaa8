package probe

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"
)

// registrationActions are the RDAP event actions that mark when a
// domain was first registered. Registries are inconsistent about the
// exact label.
var registrationActions = map[string]bool{
	"registration":        true,
	"registered":          true,
	"domain registration": true,
	"created":             true,
}

// DomainAgeResult holds the outcome of an RDAP domain age lookup.
type DomainAgeResult struct {
	// Domain is the registrable domain that was queried.
	Domain string

	// RegisteredAt is when the domain was first registered.
	RegisteredAt time.Time

	// AgeDays is the age in whole days, never negative.
	AgeDays int
}

// DomainAge looks up a domain's registration date through the public
// RDAP service and returns its age in whole days.
func (p *Prober) DomainAge(ctx context.Context, domain string) (*DomainAgeResult, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" || !strings.Contains(domain, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDomain, domain)
	}

	endpoint := strings.TrimSuffix(p.rdapEndpoint, "/") + "/domain/" + url.PathEscape(domain)
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RDAP request: %w", err)
	}

	resp, err := p.search.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query RDAP for %s: %w", domain, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("RDAP returned HTTP %d for %s", resp.StatusCode, domain)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read RDAP response: %w", err)
	}

	var registered time.Time
	gjson.GetBytes(body, "events").ForEach(func(_, ev gjson.Result) bool {
		action := strings.ToLower(ev.Get("eventAction").String())
		if !registrationActions[action] {
			return true
		}
		t, parseErr := time.Parse(time.RFC3339, ev.Get("eventDate").String())
		if parseErr != nil {
			return true
		}
		registered = t
		return false
	})
	if registered.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrNoRegistrationEvent, domain)
	}

	ageDays := int(time.Since(registered).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}

	return &DomainAgeResult{
		Domain:       domain,
		RegisteredAt: registered,
		AgeDays:      ageDays,
	}, nil
}

// RegistrableDomain extracts the registrable domain (eTLD+1) from a URL
// or bare hostname, e.g. "https://shop.example.co.uk/x" becomes
// "example.co.uk".
func RegistrableDomain(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrEmptyURL
	}

	host := rawURL
	if strings.Contains(rawURL, "//") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", fmt.Errorf("failed to parse url: %w", err)
		}
		host = u.Hostname()
	} else if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}

	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" || !strings.Contains(host, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, host)
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("failed to derive registrable domain from %q: %w", host, err)
	}
	return domain, nil
}
