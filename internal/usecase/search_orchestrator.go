package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// SearchOrchestrator fans out one web search per identified food item. Cache
// hits are served without touching the network or the provider's rate
// limiter; all misses are dispatched concurrently and collected by input
// index, so output order always matches input order no matter which call
// finishes first. A degraded result for one item never affects the others.
type SearchOrchestrator struct {
	provider domain.SearchProvider
	cache    domain.ResultCache
	logger   *zap.Logger
}

// NewSearchOrchestrator wires the orchestrator to a shared provider and cache.
// Both are process-wide: pacing and caching protect the upstream service
// across all concurrent requests, not per request.
func NewSearchOrchestrator(provider domain.SearchProvider, cache domain.ResultCache, logger *zap.Logger) *SearchOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchOrchestrator{
		provider: provider,
		cache:    cache,
		logger:   logger,
	}
}

// SearchAll resolves one result per input item, order preserved. The only
// error it returns is the context's, when the encompassing request is
// cancelled; per-item failures are data, not errors.
func (o *SearchOrchestrator) SearchAll(ctx context.Context, items []string) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, len(items))

	var wg sync.WaitGroup
	misses := 0

	for i, item := range items {
		query := buildQuery(item)

		if cached, err := o.cache.Get(query); err == nil {
			results[i] = cached
			continue
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			o.logger.Warn("query cache lookup failed", zap.Error(err))
		}

		misses++
		wg.Add(1)
		go func(idx int, q string) {
			defer wg.Done()
			result := o.provider.Search(ctx, q)
			if result.IsSuccess() {
				o.cache.Add(q, result)
			}
			results[idx] = result
		}(i, query)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		// All-or-abandoned: a shorter result set would break the
		// index correspondence contract
		return nil, err
	}

	o.logger.Debug("search fan-out complete",
		zap.Int("items", len(items)),
		zap.Int("cache_misses", misses))
	return results, nil
}

// buildQuery normalizes an identified item into the search query used as the
// cache key. The portion qualifier stays in: "rice (1 cup)" and "rice (2
// cups)" are different questions.
func buildQuery(item string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(item)), " ")
	return normalized + " calories nutrition facts"
}
