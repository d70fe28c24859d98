package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/platewise/backend/internal/domain"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// CloudConfig holds settings for hosted model backends
type CloudConfig struct {
	APIKey      string
	BaseURL     string // OpenAI-compatible endpoint, defaults to Gemini's
	Timeout     time.Duration
	Temperature float32
}

// CloudBackend is one hosted model reached through an OpenAI-compatible chat
// API. A chain of these, ordered by priority, forms the cloud part of the
// model fallback list.
type CloudBackend struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewCloudBackends builds one backend per model name, all sharing a single
// HTTP client. Fails fast when the credential is absent so misconfiguration
// is caught at startup, not on the first request.
func NewCloudBackends(cfg CloudConfig, models []string) ([]*CloudBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: cloud model API key", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.4
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	client := openai.NewClientWithConfig(clientCfg)

	backends := make([]*CloudBackend, 0, len(models))
	for _, model := range models {
		backends = append(backends, &CloudBackend{
			client:      client,
			model:       model,
			temperature: cfg.Temperature,
		})
	}
	return backends, nil
}

// Name returns the model identifier
func (b *CloudBackend) Name() string {
	return b.model
}

// Generate runs one chat completion, attaching the image as a base64 data URL
// when present
func (b *CloudBackend) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    []openai.ChatCompletionMessage{userMessage(req)},
		Temperature: b.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion with %s: %w", b.model, err)
	}

	if len(resp.Choices) == 0 {
		return "", domain.ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", domain.ErrEmptyCompletion
	}
	return content, nil
}

// userMessage builds the chat message for a generation request
func userMessage(req *domain.GenerationRequest) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}

	if len(req.ImageJPEG) == 0 {
		msg.Content = req.Prompt
		return msg
	}

	msg.MultiContent = []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
		{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(req.ImageJPEG),
			},
		},
	}
	return msg
}
