package serpapi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload_SnippetsAndKnowledgeGraph(t *testing.T) {
	body := []byte(`{
		"search_metadata": {"id": "abc"},
		"knowledge_graph": {"title": "Salmon", "calories": "208 per 100g"},
		"organic_results": [
			{"title": "A", "snippet": "sa", "link": "la", "position": 1},
			{"title": "B", "snippet": "sb", "link": "lb", "position": 2}
		]
	}`)

	payload, err := extractPayload(body)
	require.NoError(t, err)

	require.Len(t, payload.Snippets, 2)
	assert.Equal(t, "A", payload.Snippets[0].Title)
	assert.Equal(t, "sb", payload.Snippets[1].Snippet)
	assert.Equal(t, "lb", payload.Snippets[1].Link)
	assert.Contains(t, string(payload.KnowledgeGraph), "208 per 100g")
}

func TestExtractPayload_LimitsSnippets(t *testing.T) {
	body := []byte(`{"organic_results": [
		{"title": "1"}, {"title": "2"}, {"title": "3"}, {"title": "4"}, {"title": "5"}
	]}`)

	payload, err := extractPayload(body)
	require.NoError(t, err)
	assert.Len(t, payload.Snippets, maxSnippets)
}

func TestExtractPayload_EmptyResponse(t *testing.T) {
	payload, err := extractPayload([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, payload.Snippets)
	assert.Empty(t, payload.KnowledgeGraph)
}

func TestExtractPayload_InvalidJSON(t *testing.T) {
	_, err := extractPayload([]byte("<html>rate limited</html>"))
	assert.ErrorIs(t, err, errInvalidJSON)
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader("short content"), 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader(strings.Repeat("0123456789", 100)), 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}
