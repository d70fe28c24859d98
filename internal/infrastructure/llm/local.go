package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// ModelFile describes one set of local GGUF weights
type ModelFile struct {
	Name        string // model name the llama.cpp server knows it by
	Filename    string // weight file expected under ModelsDir
	DownloadURL string // where to fetch the weights when missing
}

// LocalConfig holds settings for the on-device failsafe backend
type LocalConfig struct {
	ServerURL    string // OpenAI-compatible llama.cpp server endpoint
	ModelsDir    string
	Light        ModelFile // fast model for regular requests
	Heavy        ModelFile // slower model used when deep search is requested
	AutoDownload bool
	Timeout      time.Duration
}

// LocalBackend is the last candidate in the fallback chain: a llama.cpp server
// on the same host. Before each call it verifies the weight file exists,
// downloading it when permitted; absent-and-unfetchable weights mark the
// backend unavailable.
type LocalBackend struct {
	client     *openai.Client
	downloader *http.Client
	cfg        LocalConfig
	logger     *zap.Logger

	mu sync.Mutex // serializes weight downloads
}

// NewLocalBackend creates the local failsafe backend
func NewLocalBackend(cfg LocalConfig, logger *zap.Logger) *LocalBackend {
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://127.0.0.1:8081/v1"
	}
	if cfg.ModelsDir == "" {
		cfg.ModelsDir = "models"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// llama.cpp ignores the API key but the client requires one
	clientCfg := openai.DefaultConfig("local")
	clientCfg.BaseURL = cfg.ServerURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LocalBackend{
		client:     openai.NewClientWithConfig(clientCfg),
		downloader: &http.Client{},
		cfg:        cfg,
		logger:     logger,
	}
}

// Name identifies the backend in chain logs
func (b *LocalBackend) Name() string {
	return "local"
}

// Generate answers with the light model by default, the heavy one for deep
// search requests
func (b *LocalBackend) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	model := b.cfg.Light
	if req.DeepSearch {
		model = b.cfg.Heavy
	}

	if err := b.ensureWeights(ctx, model); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model.Name,
		Messages:    []openai.ChatCompletionMessage{userMessage(req)},
		Temperature: 0.2,
		MaxTokens:   localMaxTokens(req.DeepSearch),
	})
	if err != nil {
		return "", fmt.Errorf("local completion with %s: %w", model.Name, err)
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

func localMaxTokens(deepSearch bool) int {
	if deepSearch {
		return 1024
	}
	return 512
}

// ensureWeights checks the weight file exists, fetching it when allowed
func (b *LocalBackend) ensureWeights(ctx context.Context, model ModelFile) error {
	if model.Filename == "" {
		return fmt.Errorf("no weight file configured")
	}

	path := filepath.Join(b.cfg.ModelsDir, model.Filename)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if !b.cfg.AutoDownload || model.DownloadURL == "" {
		return fmt.Errorf("weights %s missing and auto-download disabled", model.Filename)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Another request may have finished the download while we waited
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	b.logger.Info("downloading local model weights",
		zap.String("file", model.Filename),
		zap.String("url", model.DownloadURL))
	return b.download(ctx, model.DownloadURL, path)
}

// download streams the weight file to a temp path and renames it into place so
// a failed transfer never leaves a truncated file behind
func (b *LocalBackend) download(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := b.downloader.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".weights-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	return os.Rename(tmp.Name(), dest)
}
