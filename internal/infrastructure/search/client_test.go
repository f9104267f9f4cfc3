package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(cfg *config.SearchConfig)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.SearchConfig{
		Endpoint:     server.URL + "/search?q={query}&count={limit}",
		APIKeyHeader: "X-Subscription-Token",
		APIKey:       "secret",
		ResultPath:   "web.results",
		TitleField:   "title",
		URLField:     "url",
		SnippetField: "description",
		MaxResults:   10,
		Timeout:      2 * time.Second,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg, server.Client())
}

func TestClientSearchParsesResults(t *testing.T) {
	var gotQuery, gotCount, gotToken string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		gotToken = r.Header.Get("X-Subscription-Token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"web":{"results":[
			{"title":"<strong>Jane Doe</strong> for Senate","url":"https://janedoe.com","description":"Official &amp; trusted <em>campaign</em>"},
			{"title":"no url"},
			{"title":"Jane Doe (@janedoe)","url":"https://twitter.com/janedoe","description":"  posts   from 2026 "}
		]}}`))
	}, nil)

	results, err := client.Search(context.Background(), "Jane Doe Senate", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "Jane Doe Senate" || gotCount != "5" || gotToken != "secret" {
		t.Fatalf("request q=%q count=%q token=%q", gotQuery, gotCount, gotToken)
	}
	if len(results) != 2 {
		t.Fatalf("Search() len = %d", len(results))
	}
	if results[0].Title != "Jane Doe for Senate" || results[0].Snippet != "Official & trusted campaign" {
		t.Fatalf("Search() first = %+v", results[0])
	}
	if results[1].Snippet != "posts from 2026" {
		t.Fatalf("Search() second snippet = %q", results[1].Snippet)
	}
	if results[0].RelevanceScore <= results[1].RelevanceScore {
		t.Fatalf("positional scores not decreasing: %v, %v", results[0].RelevanceScore, results[1].RelevanceScore)
	}
}

func TestClientSearchUsesScoreField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"title":"a","url":"https://a.example","score":0.42},{"title":"b","url":"https://b.example","score":7}]`))
	}, func(cfg *config.SearchConfig) {
		cfg.ResultPath = ""
		cfg.ScoreField = "score"
	})

	results, err := client.Search(context.Background(), "jane", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 || results[0].RelevanceScore != 0.42 || results[1].RelevanceScore != 1 {
		t.Fatalf("Search() = %+v", results)
	}
}

func TestClientSearchErrorsAreDependencyKind(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"web":`))
			},
		},
		{
			name: "path not array",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"web":{"results":{}}}`))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler, nil)
			_, err := client.Search(context.Background(), "jane", 3)
			if !errors.Is(err, errs.ErrDependency) {
				t.Fatalf("Search() error = %v, want dependency", err)
			}
		})
	}
}

func TestClientSearchHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *config.SearchConfig) {
		cfg.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	started := time.Now()
	_, err := client.Search(context.Background(), "jane", 3)
	if err == nil {
		t.Fatalf("Search() expected timeout error")
	}
	if time.Since(started) > time.Second {
		t.Fatalf("Search() took %s", time.Since(started))
	}
}

func TestClientSearchRequiresEndpoint(t *testing.T) {
	client := NewClient(config.SearchConfig{}, nil)
	if _, err := client.Search(context.Background(), "jane", 3); !errors.Is(err, ErrSearchNotConfigured) {
		t.Fatalf("Search() error = %v", err)
	}
}

type countingProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingProvider) Search(_ context.Context, query string, _ int) ([]ports.SearchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []ports.SearchResult{{Title: query, URL: "https://example.com/" + strings.ReplaceAll(query, " ", "-"), RelevanceScore: 0.9}}, nil
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	return value, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil {
		c.values = map[string]string{}
	}
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func TestCachedProviderServesRepeatQueriesFromCache(t *testing.T) {
	inner := &countingProvider{}
	provider := NewCachedProvider(inner, &memoryCache{}, time.Hour)
	ctx := context.Background()

	first, err := provider.Search(ctx, "Jane  Doe", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := provider.Search(ctx, "jane doe", 5)
	if err != nil {
		t.Fatalf("Search(second) error = %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
	if len(second) != 1 || second[0].URL != first[0].URL {
		t.Fatalf("cached result = %+v", second)
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("upstream down")}
	provider := NewCachedProvider(inner, &memoryCache{}, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := provider.Search(ctx, "jane", 5); err == nil {
			t.Fatalf("Search() expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("inner calls = %d, want 2", inner.calls)
	}
}
