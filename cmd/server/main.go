package main

import (
	"errors"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/platewise/backend/config"
	httpDelivery "github.com/platewise/backend/internal/delivery/http"
	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/cache"
	"github.com/platewise/backend/internal/infrastructure/llm"
	"github.com/platewise/backend/internal/infrastructure/serpapi"
	"github.com/platewise/backend/internal/pkg/logger"
	"github.com/platewise/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting platewise backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Strings("models", cfg.Gemini.Models))

	// Process-wide query cache and throttled search client, shared by all
	// requests so pacing and caching stay global
	queryCache, err := cache.New(cfg.Cache.Capacity)
	if err != nil {
		zapLogger.Fatal("failed to create query cache", zap.Error(err))
	}

	searchClient := serpapi.NewClient(serpapi.Config{
		APIKey:        cfg.SerpAPI.APIKey,
		BaseURL:       cfg.SerpAPI.BaseURL,
		MinInterval:   cfg.SerpAPI.MinIntervalDuration(),
		MaxRetries:    cfg.SerpAPI.MaxRetries,
		BackoffFactor: cfg.SerpAPI.BackoffFactor,
		Timeout:       cfg.SerpAPI.Timeout,
	}, zapLogger)

	if cfg.SerpAPI.APIKey == "" {
		zapLogger.Warn("serpapi key not configured, web search will run degraded")
	}

	backends := buildBackends(cfg, zapLogger)
	chain, err := usecase.NewFallbackChain(backends, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build model fallback chain", zap.Error(err))
	}

	orchestrator := usecase.NewSearchOrchestrator(searchClient, queryCache, zapLogger)
	analysisService := usecase.NewAnalysisService(chain, chain, orchestrator, zapLogger)

	handler := httpDelivery.NewHandler(analysisService, cfg.Gemini.Models, zapLogger)
	router := httpDelivery.SetupRouter(cfg, handler, zapLogger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zapLogger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

// buildBackends assembles the model candidate list: cloud models in priority
// order, local failsafe always last
func buildBackends(cfg *config.Config, zapLogger *zap.Logger) []domain.ModelBackend {
	var backends []domain.ModelBackend

	cloudBackends, err := llm.NewCloudBackends(llm.CloudConfig{
		APIKey:      cfg.Gemini.APIKey,
		BaseURL:     cfg.Gemini.BaseURL,
		Timeout:     cfg.Gemini.Timeout,
		Temperature: float32(cfg.Gemini.Temperature),
	}, cfg.Gemini.Models)
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		zapLogger.Warn("cloud model key not configured, running on local failsafe only")
	case err != nil:
		zapLogger.Fatal("failed to create cloud backends", zap.Error(err))
	default:
		for _, backend := range cloudBackends {
			backends = append(backends, backend)
		}
	}

	local := llm.NewLocalBackend(llm.LocalConfig{
		ServerURL:    cfg.Local.ServerURL,
		ModelsDir:    cfg.Local.ModelsDir,
		AutoDownload: cfg.Local.AutoDownload,
		Light: llm.ModelFile{
			Name:        cfg.Local.Light.Name,
			Filename:    cfg.Local.Light.File,
			DownloadURL: cfg.Local.Light.DownloadURL,
		},
		Heavy: llm.ModelFile{
			Name:        cfg.Local.Heavy.Name,
			Filename:    cfg.Local.Heavy.File,
			DownloadURL: cfg.Local.Heavy.DownloadURL,
		},
		Timeout: cfg.Local.Timeout,
	}, zapLogger)

	return append(backends, local)
}
