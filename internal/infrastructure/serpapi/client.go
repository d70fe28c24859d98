package serpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/platewise/backend/internal/domain"
)

const defaultBaseURL = "https://serpapi.com/search"

// Config holds tuning for the SerpAPI client
type Config struct {
	APIKey        string
	BaseURL       string
	MinInterval   time.Duration // minimum spacing between outbound requests
	MaxRetries    int           // retries after the first attempt
	BackoffBase   time.Duration // first retry delay
	BackoffFactor float64       // geometric growth per retry, >= 1
	MaxBackoff    time.Duration // upper bound on any single delay
	Timeout       time.Duration // per-request HTTP timeout
}

// Client issues throttled search queries against SerpAPI. The rate limiter is
// a shared gate: concurrent callers are serialized so downstream requests stay
// at least MinInterval apart, and retries re-acquire it like any other call.
//
// Search never returns an error. Every failure mode resolves into a Degraded
// result so the analysis pipeline can continue without web context.
type Client struct {
	httpClient    *http.Client
	apiKey        string
	baseURL       string
	limiter       *rate.Limiter
	maxRetries    int
	backoffBase   time.Duration
	backoffFactor float64
	maxBackoff    time.Duration
	logger        *zap.Logger
}

// NewClient creates a SerpAPI client from config, filling unset fields with
// the same defaults the service ships with.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 1
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		limiter:       rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		maxRetries:    cfg.MaxRetries,
		backoffBase:   cfg.BackoffBase,
		backoffFactor: cfg.BackoffFactor,
		maxBackoff:    cfg.MaxBackoff,
		logger:        logger,
	}
}

// attemptOutcome is the classification of a single HTTP attempt. resolved
// means the result is final; otherwise the attempt failed transiently and may
// be retried with the given reason and optional server-requested delay.
type attemptOutcome struct {
	resolved   bool
	result     domain.SearchResult
	reason     string
	retryAfter time.Duration
}

// Search runs one query through the throttle/retry pipeline
func (c *Client) Search(ctx context.Context, query string) domain.SearchResult {
	if c.apiKey == "" {
		c.logger.Warn("serpapi key missing, skipping web search", zap.String("query", query))
		return domain.Degraded(domain.ReasonMissingAPIKey)
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("hl", "en")
	params.Set("gl", "us")
	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	state := newRetryState(c.maxRetries, c.backoffBase, c.backoffFactor, c.maxBackoff)

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.Degraded(domain.ReasonNetworkError)
		}

		outcome := c.attempt(ctx, reqURL)
		if outcome.resolved {
			return outcome.result
		}

		if !state.shouldRetry() {
			c.logger.Warn("serpapi retries exhausted",
				zap.String("query", query),
				zap.String("reason", outcome.reason))
			return domain.Degraded(outcome.reason)
		}

		delay := state.nextDelay(outcome.retryAfter)
		c.logger.Warn("serpapi transient failure, backing off",
			zap.String("query", query),
			zap.String("reason", outcome.reason),
			zap.Duration("delay", delay),
			zap.Int("attempt", state.attempt),
			zap.Int("max_retries", state.maxRetries))

		select {
		case <-ctx.Done():
			return domain.Degraded(domain.ReasonNetworkError)
		case <-time.After(delay):
		}
	}
}

// attempt issues one HTTP request and classifies the response
func (c *Client) attempt(ctx context.Context, reqURL string) attemptOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return attemptOutcome{resolved: true, result: domain.Degraded(domain.ReasonNetworkError)}
	}
	req.Header.Set("User-Agent", "PlateWise/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return attemptOutcome{reason: domain.ReasonNetworkError}
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxResponseBytes)
	if err != nil {
		return attemptOutcome{reason: domain.ReasonNetworkError}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		payload, err := extractPayload(body)
		if err != nil {
			// A 2xx with a broken body is treated as provider flakiness,
			// eligible for retry up to the cap
			return attemptOutcome{reason: domain.ReasonInvalidJSON}
		}
		return attemptOutcome{resolved: true, result: domain.Success(payload)}

	case resp.StatusCode == http.StatusTooManyRequests:
		return attemptOutcome{
			reason:     domain.ReasonRateLimited,
			retryAfter: parseRetryAfter(resp.Header),
		}

	case resp.StatusCode >= 500:
		return attemptOutcome{reason: domain.ReasonServerError}

	default:
		// Remaining 4xx statuses are permanent: retrying the same bad
		// request cannot help
		return attemptOutcome{
			resolved: true,
			result:   domain.Degraded(fmt.Sprintf("http_%d", resp.StatusCode)),
		}
	}
}
