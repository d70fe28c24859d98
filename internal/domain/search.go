package domain

import "encoding/json"

// SearchStatus indicates how a search query resolved.
type SearchStatus string

const (
	// SearchSuccess means the provider returned a usable payload
	SearchSuccess SearchStatus = "success"
	// SearchDegraded means no usable data was obtained; the pipeline continues
	// with the Reason as fallback context
	SearchDegraded SearchStatus = "degraded"
)

// Degraded reason codes. HTTP permanent failures use "http_<status>".
const (
	ReasonMissingAPIKey = "missing_api_key"
	ReasonRateLimited   = "rate_limited"
	ReasonServerError   = "server_error"
	ReasonInvalidJSON   = "invalid_json"
	ReasonNetworkError  = "network_error"
)

// SearchSnippet is a single organic result extracted from the search response
type SearchSnippet struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// SearchPayload holds the trimmed-down search data kept for synthesis.
// Only the top organic snippets and the knowledge graph survive extraction;
// the rest of the provider response is discarded.
type SearchPayload struct {
	Snippets       []SearchSnippet `json:"snippets"`
	KnowledgeGraph json.RawMessage `json:"knowledge_graph,omitempty"`
}

// SearchResult is the fully resolved outcome of one search query. By the time
// it leaves the search client there is no partial HTTP state: it is either a
// Success carrying a payload or a Degraded carrying a reason.
type SearchResult struct {
	Status  SearchStatus   `json:"status"`
	Payload *SearchPayload `json:"payload,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// Success builds a resolved successful result
func Success(payload *SearchPayload) SearchResult {
	return SearchResult{Status: SearchSuccess, Payload: payload}
}

// Degraded builds a resolved failure result that downstream code can still consume
func Degraded(reason string) SearchResult {
	return SearchResult{Status: SearchDegraded, Reason: reason}
}

// IsSuccess reports whether the result carries a usable payload
func (r SearchResult) IsSuccess() bool {
	return r.Status == SearchSuccess
}
