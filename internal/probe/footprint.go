package probe

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// negativeKeywords flag search results that mention fraud complaints.
// The list mixes English terms with Urdu and Roman Urdu terms commonly
// used in Pakistani marketplace complaints.
var negativeKeywords = []string{
	// English
	"scam",
	"scammer",
	"fraud",
	"fake",
	"complaint",
	"ripoff",
	"cheat",
	"cheater",
	"phishing",
	"spammer",
	"blacklist",
	"beware",
	"not delivered",
	"non delivery",
	"non-delivery",
	"advance payment",
	"advance-pay",
	"chargeback",
	// Urdu / Roman Urdu
	"dhoka",
	"fraudiya",
	"chor",
	"farib",
	"thug",
	"dhokebaaz",
}

// keywordFolder case-folds result text before keyword matching so
// mixed-case mentions still hit.
var keywordFolder = cases.Fold()

// FootprintResult summarizes the public internet footprint of a value.
// Raw result snippets are deliberately not carried forward to avoid
// leaking personal data into reports and storage.
type FootprintResult struct {
	// Enabled is false when the search provider is not configured.
	Enabled bool

	// Query is the query that was run.
	Query string

	// Total is the provider's estimated total result count.
	Total int

	// NegativeHits counts results whose title or snippet mentions a
	// fraud-related keyword.
	NegativeHits int

	// TopDomains lists the most frequent result domains, most common
	// first, capped at eight.
	TopDomains []string

	// Err describes a provider-side failure, empty on success.
	Err string
}

// Footprint searches the public web for a value and summarizes what
// comes back. The platform hint ("facebook", "olx") is appended to the
// query to narrow results to the relevant marketplace.
func (p *Prober) Footprint(ctx context.Context, value, platformHint string) *FootprintResult {
	value = strings.TrimSpace(value)
	if value == "" {
		return &FootprintResult{
			Enabled:    p.SearchEnabled(),
			TopDomains: []string{},
			Err:        "empty value",
		}
	}

	query := buildFootprintQuery(value, platformHint)
	resp := p.Search(ctx, query)
	if !resp.Enabled {
		return &FootprintResult{
			Enabled:    false,
			Query:      query,
			TopDomains: []string{},
			Err:        resp.Err,
		}
	}

	negative, domains := analyzeSearchItems(resp.Items)
	return &FootprintResult{
		Enabled:      true,
		Query:        query,
		Total:        resp.Total,
		NegativeHits: negative,
		TopDomains:   domains,
		Err:          resp.Err,
	}
}

// buildFootprintQuery builds a stable search query for a value.
// URL schemes are stripped to broaden hits, and single-token queries
// are quoted to cut noisy partial matches.
func buildFootprintQuery(value, platformHint string) string {
	q := value
	lower := strings.ToLower(q)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if _, rest, ok := strings.Cut(q, "//"); ok {
			q = rest
		}
	}

	if platformHint != "" {
		q = strings.TrimSpace(q + " " + platformHint)
	}

	if !strings.Contains(q, " ") {
		return `"` + q + `"`
	}
	return q
}

// analyzeSearchItems counts negative keyword hits and ranks result
// domains by frequency, ties broken alphabetically.
func analyzeSearchItems(items []SearchItem) (negativeHits int, topDomains []string) {
	counts := make(map[string]int)

	for _, it := range items {
		blob := keywordFolder.String(it.Title + " " + it.Snippet)
		for _, kw := range negativeKeywords {
			if strings.Contains(blob, kw) {
				negativeHits++
				break
			}
		}

		if dom := domainFromURL(it.Link); dom != "" {
			counts[dom]++
		}
	}

	topDomains = make([]string, 0, len(counts))
	for dom := range counts {
		topDomains = append(topDomains, dom)
	}
	sort.Slice(topDomains, func(i, j int) bool {
		if counts[topDomains[i]] != counts[topDomains[j]] {
			return counts[topDomains[i]] > counts[topDomains[j]]
		}
		return topDomains[i] < topDomains[j]
	})
	if len(topDomains) > 8 {
		topDomains = topDomains[:8]
	}
	return negativeHits, topDomains
}

// domainFromURL extracts the lowercased hostname from a URL, or ""
// when there is none.
func domainFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
