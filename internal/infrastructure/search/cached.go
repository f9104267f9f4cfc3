package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"candidatevet/internal/bootstrap/logging"
	"candidatevet/internal/errs"
	"candidatevet/internal/ports"
)

// CachedProvider memoizes successful searches. Cache failures fall through to the inner provider.
type CachedProvider struct {
	inner ports.SearchProvider
	cache ports.Cache
	ttl   time.Duration
}

var _ ports.SearchProvider = (*CachedProvider)(nil)

func NewCachedProvider(inner ports.SearchProvider, cache ports.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl}
}

func (p *CachedProvider) Search(ctx context.Context, query string, limit int) ([]ports.SearchResult, error) {
	if p.inner == nil {
		return nil, ErrSearchNotConfigured
	}
	if p.cache == nil || p.ttl <= 0 {
		return p.inner.Search(ctx, query, limit)
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "infrastructure.search.cache"))
	key := cacheKey(query, limit)

	if raw, found, err := p.cache.Get(ctx, key); err != nil {
		logging.Warn(logCtx, "search cache read failed", slog.Any("err", errs.Loggable(err)))
	} else if found {
		var cached []ports.SearchResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		logging.Warn(logCtx, "search cache entry is corrupt", slog.String("key", key))
	}

	results, err := p.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		return results, nil
	}
	if err := p.cache.Set(ctx, key, string(encoded), p.ttl); err != nil {
		logging.Warn(logCtx, "search cache write failed", slog.Any("err", errs.Loggable(err)))
	}
	return results, nil
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("search:%d:%s", limit, strings.ToLower(strings.Join(strings.Fields(query), " ")))
}
