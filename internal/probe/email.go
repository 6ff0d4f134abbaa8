package probe

import (
	"context"
	"fmt"
	"strings"
)

// MXResult holds the outcome of an email domain MX lookup.
// Having MX records only suggests the domain can receive email; it is
// not a guarantee the mailbox exists.
type MXResult struct {
	// Domain is the email domain that was queried.
	Domain string

	// Hosts lists the MX exchange hosts, highest priority first, with
	// trailing dots stripped.
	Hosts []string

	// HasMX reports whether at least one MX record exists.
	HasMX bool
}

// CheckEmailMX looks up MX records for the domain of an email address.
//
// A returned error means the lookup could not run (bad address format
// or DNS failure); a domain that resolves but has no MX records is
// reported through the HasMX field.
func (p *Prober) CheckEmailMX(ctx context.Context, email string) (*MXResult, error) {
	addr := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return nil, ErrInvalidEmail
	}
	domain := addr[at+1:]

	records, err := p.resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to look up MX records for %s: %w", domain, err)
	}

	hosts := make([]string, 0, len(records))
	for _, mx := range records {
		host := strings.TrimSuffix(mx.Host, ".")
		if host != "" {
			hosts = append(hosts, host)
		}
	}

	return &MXResult{
		Domain: domain,
		Hosts:  hosts,
		HasMX:  len(hosts) > 0,
	}, nil
}
