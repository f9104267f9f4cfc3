package audit

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"candidatevet/internal/bootstrap/logging"
	domainaudit "candidatevet/internal/domain/audit"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

const (
	maxDiscoveryHops        = 3
	defaultQueryTimeout     = 15 * time.Second
	defaultResultsPerQuery  = 10
	defaultQueryConcurrency = 4
)

type DiscoveryConfig struct {
	MaxHops          int
	QueryTimeout     time.Duration
	QueryConcurrency int
	ResultsPerQuery  int
}

func (c DiscoveryConfig) normalized() DiscoveryConfig {
	if c.MaxHops < 1 || c.MaxHops > maxDiscoveryHops {
		c.MaxHops = maxDiscoveryHops
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = defaultQueryTimeout
	}
	if c.QueryConcurrency < 1 {
		c.QueryConcurrency = defaultQueryConcurrency
	}
	if c.ResultsPerQuery < 1 {
		c.ResultsPerQuery = defaultResultsPerQuery
	}
	return c
}

// Subject is the person being searched for.
type Subject struct {
	Name      string
	Office    string
	District  string
	State     string
	Party     string
	KnownURLs []string
}

// SearchAttempt is one line of the discovery log.
type SearchAttempt struct {
	Hop        int    `json:"hop"`
	Query      string `json:"query"`
	Results    int    `json:"results"`
	NewURLs    int    `json:"new_urls"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// DiscoveredURL keeps the search metadata scoring works from. Hop 0 marks a known URL.
type DiscoveredURL struct {
	URL            string  `json:"url"`
	Title          string  `json:"title,omitempty"`
	Snippet        string  `json:"snippet,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	Hop            int     `json:"hop"`
	Query          string  `json:"query,omitempty"`
}

func (d DiscoveredURL) Observation() domainaudit.Observation {
	return domainaudit.Observation{
		URL:            d.URL,
		Title:          d.Title,
		Snippet:        d.Snippet,
		RelevanceScore: d.RelevanceScore,
	}
}

type DiscoveryResult struct {
	URLs []DiscoveredURL `json:"urls"`
	Log  []SearchAttempt `json:"log"`
}

// AllQueriesFailed reports whether searches were attempted and none of them succeeded.
func (r DiscoveryResult) AllQueriesFailed() bool {
	if len(r.Log) == 0 {
		return false
	}
	for _, attempt := range r.Log {
		if attempt.Error == "" {
			return false
		}
	}
	return true
}

type Discovery struct {
	search ports.SearchProvider
	cfg    DiscoveryConfig
}

func NewDiscovery(search ports.SearchProvider, cfg DiscoveryConfig) *Discovery {
	return &Discovery{search: search, cfg: cfg.normalized()}
}

// Discover runs the full multi-hop search for a candidate. Search failures are logged
// per query and never abort the run; only a cancelled context returns an error.
func (d *Discovery) Discover(ctx context.Context, subject Subject) (DiscoveryResult, error) {
	return d.run(ctx, subject, d.cfg.MaxHops, CandidateQueries)
}

// DiscoverOpponent is the lightweight single-hop variant used for opponents.
func (d *Discovery) DiscoverOpponent(ctx context.Context, subject Subject) (DiscoveryResult, error) {
	return d.run(ctx, subject, 1, func(subject Subject, _ int) []string {
		return OpponentQueries(subject)
	})
}

func (d *Discovery) run(ctx context.Context, subject Subject, hops int, queriesFor func(Subject, int) []string) (DiscoveryResult, error) {
	if ctx == nil {
		return DiscoveryResult{}, errors.New("context is required")
	}
	if d == nil || d.search == nil {
		return DiscoveryResult{}, errors.New("search provider is required")
	}
	if strings.TrimSpace(subject.Name) == "" {
		return DiscoveryResult{}, errs.Validationf("discovery subject name is required")
	}

	logCtx := logging.WithAttrs(logging.WithComponent(ctx, "usecase.audit.discovery"), slog.String("subject", subject.Name))

	seen := make(map[string]struct{})
	result := DiscoveryResult{URLs: []DiscoveredURL{}, Log: []SearchAttempt{}}
	for _, known := range subject.KnownURLs {
		known = strings.TrimSpace(known)
		if known == "" {
			continue
		}
		key := domainaudit.DedupKey(known)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result.URLs = append(result.URLs, DiscoveredURL{URL: known, RelevanceScore: 1, Hop: 0})
	}

	for hop := 1; hop <= hops; hop++ {
		if err := ctx.Err(); err != nil {
			return result, errs.Wrapf(err, "discovery hop %d", hop)
		}

		queries := queriesFor(subject, hop)
		batches := d.searchHop(ctx, queries)

		// Merge in query order so dedup is deterministic for a given set of responses.
		for i, batch := range batches {
			attempt := SearchAttempt{
				Hop:        hop,
				Query:      queries[i],
				Results:    len(batch.results),
				DurationMS: batch.duration.Milliseconds(),
			}
			if batch.err != nil {
				attempt.Error = batch.err.Error()
				logging.Warn(logCtx, "search query failed",
					slog.Int("hop", hop),
					slog.String("query", queries[i]),
					slog.Any("err", errs.Loggable(batch.err)),
				)
			}
			for _, item := range batch.results {
				if strings.TrimSpace(item.URL) == "" {
					continue
				}
				key := domainaudit.DedupKey(item.URL)
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				attempt.NewURLs++
				result.URLs = append(result.URLs, DiscoveredURL{
					URL:            strings.TrimSpace(item.URL),
					Title:          item.Title,
					Snippet:        item.Snippet,
					RelevanceScore: item.RelevanceScore,
					Hop:            hop,
					Query:          queries[i],
				})
			}
			result.Log = append(result.Log, attempt)
		}
		logging.Debug(logCtx, "discovery hop done", slog.Int("hop", hop), slog.Int("queries", len(queries)), slog.Int("urls", len(result.URLs)))
	}

	logging.Info(logCtx, "discovery finished",
		slog.Int("hops", hops),
		slog.Int("queries", len(result.Log)),
		slog.Int("urls", len(result.URLs)),
	)
	return result, nil
}

type queryBatch struct {
	results  []ports.SearchResult
	err      error
	duration time.Duration
}

func (d *Discovery) searchHop(ctx context.Context, queries []string) []queryBatch {
	batches := make([]queryBatch, len(queries))

	var group errgroup.Group
	group.SetLimit(d.cfg.QueryConcurrency)
	for i, query := range queries {
		group.Go(func() error {
			batches[i] = d.searchOne(ctx, query)
			return nil
		})
	}
	_ = group.Wait()
	return batches
}

func (d *Discovery) searchOne(ctx context.Context, query string) (batch queryBatch) {
	started := time.Now()
	defer func() {
		if recovered := recover(); recovered != nil {
			batch = queryBatch{err: errs.Recovered("search", recovered)}
		}
		batch.duration = time.Since(started)
	}()

	queryCtx, cancel := context.WithTimeout(ctx, d.cfg.QueryTimeout)
	defer cancel()

	results, err := d.search.Search(queryCtx, query, d.cfg.ResultsPerQuery)
	if err != nil {
		return queryBatch{err: err}
	}
	return queryBatch{results: results}
}

var platformSites = []string{
	"facebook.com",
	"x.com",
	"instagram.com",
	"linkedin.com/in",
	"youtube.com",
	"tiktok.com",
}

var politicalSites = []string{
	"ballotpedia.org",
	"votesmart.org",
	"opensecrets.org",
	"fec.gov",
}

// CandidateQueries returns the fixed query templates for one hop: general identity
// queries, then platform site: queries, then political databases and news.
func CandidateQueries(subject Subject, hop int) []string {
	name := quoted(subject.Name)
	_, stateName := domainaudit.ResolveState(subject.State)
	stateLabel := titleWords(stateName)

	switch hop {
	case 1:
		queries := []string{
			joinQuery(name, subject.Office, stateLabel),
			joinQuery(name, "campaign"),
		}
		if strings.TrimSpace(subject.District) != "" {
			queries = append(queries, joinQuery(name, subject.District, "candidate"))
		}
		return queries
	case 2:
		queries := make([]string, 0, len(platformSites))
		for _, site := range platformSites {
			queries = append(queries, joinQuery(name, "site:"+site))
		}
		return queries
	case 3:
		queries := make([]string, 0, len(politicalSites)+1)
		for _, site := range politicalSites {
			queries = append(queries, joinQuery(name, "site:"+site))
		}
		queries = append(queries, joinQuery(name, subject.Office, "news"))
		return queries
	default:
		return nil
	}
}

func OpponentQueries(subject Subject) []string {
	_, stateName := domainaudit.ResolveState(subject.State)
	name := quoted(subject.Name)
	return []string{
		joinQuery(name, subject.Office, titleWords(stateName)),
		joinQuery(name, "site:ballotpedia.org"),
	}
}

func quoted(value string) string {
	return `"` + strings.Join(strings.Fields(value), " ") + `"`
}

func joinQuery(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

func titleWords(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
