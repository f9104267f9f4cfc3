package search

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tidwall/gjson"

	"candidatevet/internal/bootstrap/config"
	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

const maxResponseBytes = 10 * 1024 * 1024

var ErrSearchNotConfigured = fmt.Errorf("%w: search endpoint is not configured", errs.ErrDependency)

// Client calls a JSON search API. Endpoint is a URL template with {query} and {limit} placeholders.
type Client struct {
	cfg        config.SearchConfig
	httpClient *http.Client
	policy     *bluemonday.Policy
}

var _ ports.SearchProvider = (*Client)(nil)

func NewClient(cfg config.SearchConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		policy:     bluemonday.StrictPolicy(),
	}
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]ports.SearchResult, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if strings.TrimSpace(c.cfg.Endpoint) == "" {
		return nil, ErrSearchNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errs.Validationf("search query is required")
	}
	if limit <= 0 || (c.cfg.MaxResults > 0 && limit > c.cfg.MaxResults) {
		limit = c.cfg.MaxResults
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	searchURL := strings.ReplaceAll(c.cfg.Endpoint, "{query}", url.QueryEscape(query))
	searchURL = strings.ReplaceAll(searchURL, "{limit}", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build search request")
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKeyHeader != "" && c.cfg.APIKey != "" {
		req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Dependency(err, "search request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.Dependency(fmt.Errorf("status %d", resp.StatusCode), "search request")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errs.Dependency(err, "read search response")
	}

	results, err := c.parse(body, limit)
	if err != nil {
		return nil, err
	}

	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "infrastructure.search")),
		"search completed",
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return results, nil
}

func (c *Client) parse(body []byte, limit int) ([]ports.SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, errs.Dependency(errors.New("invalid json"), "decode search response")
	}

	items := gjson.ParseBytes(body)
	if c.cfg.ResultPath != "" {
		items = gjson.GetBytes(body, c.cfg.ResultPath)
	}
	if !items.IsArray() {
		return nil, errs.Dependency(fmt.Errorf("path %q is not an array", c.cfg.ResultPath), "decode search response")
	}

	entries := items.Array()
	results := make([]ports.SearchResult, 0, len(entries))
	for i, item := range entries {
		if limit > 0 && len(results) >= limit {
			break
		}
		link := strings.TrimSpace(item.Get(fieldOr(c.cfg.URLField, "url")).String())
		if link == "" {
			continue
		}

		score := positionalScore(i, len(entries))
		if c.cfg.ScoreField != "" {
			if value := item.Get(c.cfg.ScoreField); value.Exists() {
				score = clampScore(value.Float())
			}
		}

		results = append(results, ports.SearchResult{
			Title:          c.cleanText(item.Get(fieldOr(c.cfg.TitleField, "title")).String()),
			URL:            link,
			Snippet:        c.cleanText(item.Get(fieldOr(c.cfg.SnippetField, "snippet")).String()),
			RelevanceScore: score,
		})
	}
	return results, nil
}

// cleanText strips markup that engines put around highlighted terms.
func (c *Client) cleanText(raw string) string {
	sanitized := html.UnescapeString(c.policy.Sanitize(raw))
	return strings.Join(strings.Fields(sanitized), " ")
}

func fieldOr(field string, fallback string) string {
	if strings.TrimSpace(field) == "" {
		return fallback
	}
	return field
}

// positionalScore ranks by result order when the engine reports no score.
func positionalScore(index int, total int) float64 {
	if total <= 0 {
		return 0
	}
	return clampScore(1 - float64(index)/float64(total))
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
