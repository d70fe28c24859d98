package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/platewise/backend/internal/domain"
)

// QueryCache is a bounded LRU cache of resolved search results, shared by all
// requests for the lifetime of the process. Inserting past capacity evicts the
// least-recently-used entry; a Get refreshes recency.
type QueryCache struct {
	entries *lru.Cache[string, domain.SearchResult]
}

// New creates a query cache holding at most capacity entries
func New(capacity int) (*QueryCache, error) {
	entries, err := lru.New[string, domain.SearchResult](capacity)
	if err != nil {
		return nil, err
	}
	return &QueryCache{entries: entries}, nil
}

// Get returns the cached result for a query, refreshing its recency.
// Returns domain.ErrCacheMiss when the query is absent.
func (c *QueryCache) Get(query string) (domain.SearchResult, error) {
	result, ok := c.entries.Get(query)
	if !ok {
		return domain.SearchResult{}, domain.ErrCacheMiss
	}
	return result, nil
}

// Add stores a result. Degraded results are dropped so a transient provider
// failure can still resolve on a later identical query.
func (c *QueryCache) Add(query string, result domain.SearchResult) {
	if !result.IsSuccess() {
		return
	}
	c.entries.Add(query, result)
}

// Len returns the current number of cached entries
func (c *QueryCache) Len() int {
	return c.entries.Len()
}
