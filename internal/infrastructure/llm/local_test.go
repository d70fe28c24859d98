package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/domain"
)

func writeWeights(t *testing.T, dir, filename string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte("gguf"), 0644))
}

func TestLocalBackend_WeightsMissing_Unavailable(t *testing.T) {
	backend := NewLocalBackend(LocalConfig{
		ModelsDir:    t.TempDir(),
		Light:        ModelFile{Name: "light", Filename: "light.gguf"},
		AutoDownload: false,
	}, nil)

	_, err := backend.Generate(context.Background(), &domain.GenerationRequest{Prompt: "p"})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestLocalBackend_Generate_Success(t *testing.T) {
	dir := t.TempDir()
	writeWeights(t, dir, "light.gguf")

	server := newChatServer(t, func(w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "light", body["model"])
		fmt.Fprint(w, completionResponse(`{"overall_description": "a plate of rice", "items": []}`))
	})
	defer server.Close()

	backend := NewLocalBackend(LocalConfig{
		ServerURL: server.URL,
		ModelsDir: dir,
		Light:     ModelFile{Name: "light", Filename: "light.gguf"},
		Heavy:     ModelFile{Name: "heavy", Filename: "heavy.gguf"},
	}, nil)

	output, err := backend.Generate(context.Background(), &domain.GenerationRequest{Prompt: "analyze"})
	require.NoError(t, err)
	assert.Contains(t, output, "a plate of rice")
}

func TestLocalBackend_DeepSearchSelectsHeavyModel(t *testing.T) {
	dir := t.TempDir()
	writeWeights(t, dir, "heavy.gguf")

	server := newChatServer(t, func(w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "heavy", body["model"])
		fmt.Fprint(w, completionResponse("heavy output"))
	})
	defer server.Close()

	backend := NewLocalBackend(LocalConfig{
		ServerURL: server.URL,
		ModelsDir: dir,
		Light:     ModelFile{Name: "light", Filename: "light.gguf"},
		Heavy:     ModelFile{Name: "heavy", Filename: "heavy.gguf"},
	}, nil)

	output, err := backend.Generate(context.Background(), &domain.GenerationRequest{
		Prompt:     "analyze",
		DeepSearch: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "heavy output", output)
}

func TestLocalBackend_AutoDownloadFetchesWeights(t *testing.T) {
	dir := t.TempDir()

	weightsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("downloaded-gguf-bytes"))
	}))
	defer weightsServer.Close()

	chatServer := newChatServer(t, func(w http.ResponseWriter, body map[string]any) {
		fmt.Fprint(w, completionResponse("ok"))
	})
	defer chatServer.Close()

	backend := NewLocalBackend(LocalConfig{
		ServerURL:    chatServer.URL,
		ModelsDir:    dir,
		AutoDownload: true,
		Light: ModelFile{
			Name:        "light",
			Filename:    "light.gguf",
			DownloadURL: weightsServer.URL + "/light.gguf",
		},
	}, nil)

	output, err := backend.Generate(context.Background(), &domain.GenerationRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", output)

	data, err := os.ReadFile(filepath.Join(dir, "light.gguf"))
	require.NoError(t, err)
	assert.Equal(t, "downloaded-gguf-bytes", string(data))
}

func TestLocalBackend_DownloadFailure_Unavailable(t *testing.T) {
	weightsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer weightsServer.Close()

	backend := NewLocalBackend(LocalConfig{
		ModelsDir:    t.TempDir(),
		AutoDownload: true,
		Light: ModelFile{
			Name:        "light",
			Filename:    "light.gguf",
			DownloadURL: weightsServer.URL + "/missing.gguf",
		},
	}, nil)

	_, err := backend.Generate(context.Background(), &domain.GenerationRequest{Prompt: "p"})
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}
