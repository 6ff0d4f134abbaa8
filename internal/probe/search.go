package probe

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

// SearchItem is a single search result, trimmed to the fields the
// footprint analysis needs.
type SearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchResponse is the normalized outcome of a search query.
// Failed queries are represented with Err set rather than a Go error so
// they can be cached and scored like any other response.
type SearchResponse struct {
	// Enabled is false when the search provider is not configured.
	Enabled bool `json:"enabled"`

	// Query is the query string as sent.
	Query string `json:"query"`

	// Total is the provider's estimated total result count.
	Total int `json:"total"`

	// Items holds the returned results, fields truncated.
	Items []SearchItem `json:"items"`

	// FetchedAt is when the response was fetched from the provider.
	FetchedAt time.Time `json:"fetched_at"`

	// Err describes a provider-side failure, empty on success.
	Err string `json:"error,omitempty"`
}

// Search runs a query against the configured search engine.
//
// It never returns a Go error: a missing configuration, an API error,
// or a transport failure all produce a SearchResponse describing the
// condition, because footprint scoring treats those as data. Responses,
// including failures, are cached to limit API usage.
func (p *Prober) Search(ctx context.Context, query string) *SearchResponse {
	if !p.SearchEnabled() {
		return &SearchResponse{
			Enabled:   false,
			Query:     query,
			FetchedAt: time.Now().UTC(),
			Err:       "search provider is not configured (missing API key or engine ID)",
		}
	}

	num := p.searchResults
	if num < 1 {
		num = 1
	}
	if num > 10 {
		num = 10
	}

	key := searchCacheKey(query, num, p.searchCountry, p.searchLanguage)
	if p.cache != nil {
		if payload, ok := p.cache.GetSearch(key, p.cacheTTL); ok {
			var cached SearchResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached
			}
			// Undecodable entries are refetched and overwritten.
		}
	}

	resp := p.fetchSearch(ctx, query, num)
	p.storeSearch(key, query, resp)
	return resp
}

// fetchSearch performs the actual API request and normalizes the
// response.
func (p *Prober) fetchSearch(ctx context.Context, query string, num int) *SearchResponse {
	out := &SearchResponse{
		Enabled:   true,
		Query:     query,
		Items:     []SearchItem{},
		FetchedAt: time.Now().UTC(),
	}

	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("cx", p.cx)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("gl", p.searchCountry)
	params.Set("hl", p.searchLanguage)

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", p.searchEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		out.Err = fmt.Sprintf("failed to create search request: %v", err)
		return out
	}

	resp, err := p.search.Do(req)
	if err != nil {
		out.Err = fmt.Sprintf("search request failed: %v", err)
		return out
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		out.Err = fmt.Sprintf("failed to read search response: %v", err)
		return out
	}

	if resp.StatusCode != 200 {
		if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
			out.Err = msg
		} else {
			out.Err = fmt.Sprintf("search API error (HTTP %d)", resp.StatusCode)
		}
		return out
	}

	// totalResults arrives as a string; a missing or garbled value
	// counts as zero.
	if total, convErr := strconv.Atoi(gjson.GetBytes(body, "searchInformation.totalResults").String()); convErr == nil {
		out.Total = total
	}

	gjson.GetBytes(body, "items").ForEach(func(_, it gjson.Result) bool {
		out.Items = append(out.Items, SearchItem{
			Title:   truncate(it.Get("title").String(), 200),
			Link:    truncate(it.Get("link").String(), 500),
			Snippet: truncate(it.Get("snippet").String(), 500),
		})
		return true
	})

	return out
}

// storeSearch writes a response to the cache, logging failures instead
// of surfacing them.
func (p *Prober) storeSearch(key, query string, resp *SearchResponse) {
	if p.cache == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		p.logger.Warn("failed to encode search response for cache", "error", err)
		return
	}
	if err := p.cache.PutSearch(key, query, payload); err != nil {
		p.logger.Warn("failed to cache search response", "error", err)
	}
}

// searchCacheKey derives a stable cache key covering everything that
// changes the response. The version prefix invalidates old entries when
// the payload shape changes.
func searchCacheKey(query string, num int, country, language string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "v1|%s|%d|%s|%s", query, num, country, language))
	return fmt.Sprintf("%x", sum)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
