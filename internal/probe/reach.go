package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ReachResult holds the outcome of a safe URL fetch.
type ReachResult struct {
	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// FinalURL is the URL after following redirects.
	FinalURL string

	// HTTPS reports whether the final URL is served over HTTPS.
	HTTPS bool

	// ContentType is the response content type, truncated.
	ContentType string

	// Bytes is the number of body bytes read, capped at the prober's
	// body size limit.
	Bytes int
}

// Reachable reports whether the response indicates a working page.
// Redirect-range statuses count because the client follows redirects;
// anything left in the 3xx range was a redirect it could not chase.
func (r *ReachResult) Reachable() bool {
	return r.StatusCode >= 200 && r.StatusCode < 400
}

// CheckReachability fetches a URL and reports its status and whether
// HTTPS is in use. Only http and https schemes are allowed, and hosts
// that are private or loopback IP literals are rejected before any
// connection is made.
//
// Hostname DNS is intentionally not resolved before fetching: a
// DNS-based gate would still race the actual connection, and the probe
// only ever runs against caller-supplied public URLs.
func (p *Prober) CheckReachability(ctx context.Context, rawURL string) (*ReachResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrEmptyURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, ErrEmptyURL
	}
	if p.blockPrivateHosts && !isPublicHost(host) {
		return nil, fmt.Errorf("%w: %s", ErrBlockedHost, host)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	// Drain up to the cap so the connection can be reused, then stop.
	n, _ := io.Copy(io.Discard, io.LimitReader(resp.Body, p.maxBodySize))

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	contentType := resp.Header.Get("Content-Type")
	if len(contentType) > 100 {
		contentType = contentType[:100]
	}

	return &ReachResult{
		StatusCode:  resp.StatusCode,
		FinalURL:    finalURL,
		HTTPS:       strings.HasPrefix(strings.ToLower(finalURL), "https://"),
		ContentType: contentType,
		Bytes:       int(n),
	}, nil
}

// isPublicHost rejects hosts that are private, loopback, link-local,
// multicast, reserved, or unspecified IP literals, plus "localhost".
// Non-literal hostnames pass; the literal check is the first layer, not
// a complete SSRF defense.
func isPublicHost(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return !strings.EqualFold(host, "localhost")
	}
	return !(ip.IsPrivate() ||
		ip.IsLoopback() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		isReserved(ip))
}

// isReserved reports whether an IPv4 address falls in a reserved range
// not already covered by the standard net.IP predicates.
func isReserved(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	// 240.0.0.0/4 is reserved for future use; 198.18.0.0/15 is the
	// benchmarking range.
	if v4[0] >= 240 {
		return true
	}
	if v4[0] == 198 && (v4[1] == 18 || v4[1] == 19) {
		return true
	}
	return false
}
