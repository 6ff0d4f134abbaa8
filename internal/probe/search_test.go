package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// memoryCache is an in-memory SearchCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) GetSearch(key string, _ time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	return payload, ok
}

func (c *memoryCache) PutSearch(key, _ string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	c.puts++
	return nil
}

const searchResponseBody = `{
	"searchInformation": {"totalResults": "42"},
	"items": [
		{"title": "Seller reviews", "link": "https://reviews.example/seller", "snippet": "good"},
		{"title": "Complaint thread", "link": "https://forum.example/t/1", "snippet": "scam report"}
	]
}`

func TestSearch(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()

		q := r.URL.Query()
		if q.Get("key") != "test-key" || q.Get("cx") != "test-cx" {
			t.Errorf("credentials not forwarded: key=%q cx=%q", q.Get("key"), q.Get("cx"))
		}
		if q.Get("num") != "8" || q.Get("gl") != "pk" || q.Get("hl") != "en" {
			t.Errorf("defaults not forwarded: num=%q gl=%q hl=%q", q.Get("num"), q.Get("gl"), q.Get("hl"))
		}
		fmt.Fprint(w, searchResponseBody)
	}))
	defer server.Close()

	cache := newMemoryCache()
	p := NewProber(
		WithSearchCredentials("test-key", "test-cx"),
		WithSearchEndpoint(server.URL),
		WithCache(cache),
	)

	got := p.Search(context.Background(), `"example.com"`)
	if !got.Enabled {
		t.Fatal("expected enabled response")
	}
	if got.Total != 42 {
		t.Errorf("total = %d, want 42", got.Total)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Title != "Seller reviews" {
		t.Errorf("first title = %q", got.Items[0].Title)
	}
	if got.Err != "" {
		t.Errorf("unexpected response error: %q", got.Err)
	}

	// Second call must come from the cache.
	again := p.Search(context.Background(), `"example.com"`)
	if again.Total != 42 || len(again.Items) != 2 {
		t.Errorf("cached response differs: total=%d items=%d", again.Total, len(again.Items))
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (cache hit expected)", requests)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestSearch_notConfigured(t *testing.T) {
	t.Parallel()

	p := NewProber()
	got := p.Search(context.Background(), "anything")
	if got.Enabled {
		t.Error("expected disabled response without credentials")
	}
	if got.Err == "" {
		t.Error("expected explanatory error message")
	}
}

func TestSearch_apiError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"message": "Daily quota exceeded"}}`)
	}))
	defer server.Close()

	cache := newMemoryCache()
	p := NewProber(
		WithSearchCredentials("k", "c"),
		WithSearchEndpoint(server.URL),
		WithCache(cache),
	)

	got := p.Search(context.Background(), "query")
	if !got.Enabled {
		t.Error("API errors still count as enabled")
	}
	if got.Err != "Daily quota exceeded" {
		t.Errorf("error = %q, want provider message", got.Err)
	}
	if got.Total != 0 || len(got.Items) != 0 {
		t.Errorf("error response should carry no results: total=%d items=%d", got.Total, len(got.Items))
	}

	// Error payloads are cached to avoid hammering a failing API.
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestSearch_apiErrorWithoutMessage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewProber(WithSearchCredentials("k", "c"), WithSearchEndpoint(server.URL))

	got := p.Search(context.Background(), "query")
	if !strings.Contains(got.Err, "HTTP 500") {
		t.Errorf("error = %q, want HTTP status fallback", got.Err)
	}
}

func TestSearch_truncatesFields(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"searchInformation": {"totalResults": "1"}, "items": [{"title": %q, "link": %q, "snippet": %q}]}`,
			long, "https://example.com/"+long, long)
	}))
	defer server.Close()

	p := NewProber(WithSearchCredentials("k", "c"), WithSearchEndpoint(server.URL))

	got := p.Search(context.Background(), "query")
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	if len(got.Items[0].Title) != 200 {
		t.Errorf("title length = %d, want 200", len(got.Items[0].Title))
	}
	if len(got.Items[0].Link) != 500 {
		t.Errorf("link length = %d, want 500", len(got.Items[0].Link))
	}
	if len(got.Items[0].Snippet) != 500 {
		t.Errorf("snippet length = %d, want 500", len(got.Items[0].Snippet))
	}
}

func TestSearch_clampsResultCount(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("num"); got != "10" {
			t.Errorf("num = %q, want clamped 10", got)
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	p := NewProber(
		WithSearchCredentials("k", "c"),
		WithSearchEndpoint(server.URL),
		WithSearchDefaults(25, "pk", "en"),
	)
	p.Search(context.Background(), "query")
}

func TestFootprint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != `"example.com"` {
			t.Errorf("query = %q, want quoted domain", got)
		}
		fmt.Fprint(w, searchResponseBody)
	}))
	defer server.Close()

	p := NewProber(WithSearchCredentials("k", "c"), WithSearchEndpoint(server.URL))

	got := p.Footprint(context.Background(), "https://example.com", "")
	if !got.Enabled {
		t.Fatal("expected enabled footprint")
	}
	if got.Total != 42 {
		t.Errorf("total = %d, want 42", got.Total)
	}
	if got.NegativeHits != 1 {
		t.Errorf("negative hits = %d, want 1", got.NegativeHits)
	}
	if len(got.TopDomains) != 2 {
		t.Errorf("top domains = %v, want 2 entries", got.TopDomains)
	}
}

func TestFootprint_disabled(t *testing.T) {
	t.Parallel()

	p := NewProber()
	got := p.Footprint(context.Background(), "example.com", "")
	if got.Enabled {
		t.Error("expected disabled footprint without credentials")
	}
	if got.Err == "" {
		t.Error("expected explanatory error")
	}
}

func TestFootprint_emptyValue(t *testing.T) {
	t.Parallel()

	p := NewProber(WithSearchCredentials("k", "c"))
	got := p.Footprint(context.Background(), "  ", "facebook")
	if got.Err == "" {
		t.Error("expected error for empty value")
	}
	if got.Total != 0 || got.NegativeHits != 0 {
		t.Error("empty value should produce an empty summary")
	}
}
