package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// FallbackChain tries model backends strictly in priority order: first success
// wins, each failed candidate is logged and skipped without a retry (any
// retry/backoff lives inside the candidate's own call). The local failsafe is
// expected to sit last. When every candidate fails the chain returns an error
// wrapping domain.ErrAllBackendsExhausted, the one failure that surfaces to
// the user.
type FallbackChain struct {
	backends []domain.ModelBackend
	logger   *zap.Logger
}

// NewFallbackChain builds a chain from at least one backend
func NewFallbackChain(backends []domain.ModelBackend, logger *zap.Logger) (*FallbackChain, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("fallback chain requires at least one backend")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackChain{backends: backends, logger: logger}, nil
}

// Generate runs the request through the candidates in order
func (c *FallbackChain) Generate(ctx context.Context, req *domain.GenerationRequest) (string, error) {
	var lastErr error

	for _, backend := range c.backends {
		output, err := backend.Generate(ctx, req)
		if err == nil {
			c.logger.Info("model backend succeeded", zap.String("backend", backend.Name()))
			return output, nil
		}

		c.logger.Warn("model backend failed, advancing to next candidate",
			zap.String("backend", backend.Name()),
			zap.Error(err))
		lastErr = err
	}

	return "", fmt.Errorf("%w: last error: %v", domain.ErrAllBackendsExhausted, lastErr)
}
