package serpapi

import (
	"math"
	"net/http"
	"strconv"
	"time"
)

// retryState drives the retry loop as an explicit state machine: the attempt
// counter never exceeds maxRetries and the computed delay grows geometrically
// (base * factor^attempt), capped at maxDelay.
type retryState struct {
	attempt    int
	maxRetries int
	base       time.Duration
	factor     float64
	maxDelay   time.Duration
}

func newRetryState(maxRetries int, base time.Duration, factor float64, maxDelay time.Duration) *retryState {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if factor < 1 {
		factor = 1
	}
	return &retryState{
		maxRetries: maxRetries,
		base:       base,
		factor:     factor,
		maxDelay:   maxDelay,
	}
}

// shouldRetry reports whether another attempt is allowed
func (s *retryState) shouldRetry() bool {
	return s.attempt < s.maxRetries
}

// nextDelay consumes one retry and returns how long to wait before it.
// A server-supplied Retry-After overrides the computed backoff; both are
// capped at maxDelay.
func (s *retryState) nextDelay(retryAfter time.Duration) time.Duration {
	delay := time.Duration(math.Pow(s.factor, float64(s.attempt)) * float64(s.base))
	s.attempt++

	if retryAfter > 0 {
		delay = retryAfter
	}
	if s.maxDelay > 0 && delay > s.maxDelay {
		delay = s.maxDelay
	}
	return delay
}

// parseRetryAfter reads a Retry-After header value, either delta-seconds or an
// HTTP date. Returns 0 when absent or unparseable.
func parseRetryAfter(h http.Header) time.Duration {
	value := h.Get("Retry-After")
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}

	return 0
}
