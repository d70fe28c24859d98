package domain

import "context"

// SearchProvider issues a single web search query. Implementations resolve all
// failure modes internally: the returned SearchResult is Success or Degraded,
// never an error, because the analysis pipeline must continue without search.
type SearchProvider interface {
	Search(ctx context.Context, query string) SearchResult
}

// ResultCache is a bounded cache of resolved search results keyed by the
// normalized query string. Implementations must be safe for concurrent use.
type ResultCache interface {
	Get(query string) (SearchResult, error)
	Add(query string, result SearchResult)
}

// ModelBackend is a single language-model candidate in a fallback chain
type ModelBackend interface {
	Name() string
	Generate(ctx context.Context, req *GenerationRequest) (string, error)
}
