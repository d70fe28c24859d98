package serpapi

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/gjson"

	"github.com/platewise/backend/internal/domain"
)

const (
	// maxResponseBytes bounds how much of a provider response we read
	maxResponseBytes = 1 << 20

	// maxSnippets limits how many organic results are kept per query
	maxSnippets = 3
)

var errInvalidJSON = errors.New("response body is not valid JSON")

// extractPayload trims a raw SerpAPI response down to the fields synthesis
// needs: the top organic snippets and the knowledge graph. Everything else in
// the response is discarded.
func extractPayload(body []byte) (*domain.SearchPayload, error) {
	if !gjson.ValidBytes(body) {
		return nil, errInvalidJSON
	}

	payload := &domain.SearchPayload{}

	if kg := gjson.GetBytes(body, "knowledge_graph"); kg.IsObject() {
		payload.KnowledgeGraph = json.RawMessage(kg.Raw)
	}

	gjson.GetBytes(body, "organic_results").ForEach(func(_, res gjson.Result) bool {
		if len(payload.Snippets) >= maxSnippets {
			return false
		}
		payload.Snippets = append(payload.Snippets, domain.SearchSnippet{
			Title:   res.Get("title").String(),
			Snippet: res.Get("snippet").String(),
			Link:    res.Get("link").String(),
		})
		return true
	})

	return payload, nil
}

// readLimitedBody reads at most limit bytes from a response body
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, err
	}
	return body, nil
}
