package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMissingCredential is returned when a required provider API key is absent
	ErrMissingCredential = errors.New("provider credential missing")

	// ErrCacheMiss is returned when a query is not found in the cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrModelUnavailable is returned when a model backend cannot serve requests,
	// e.g. local weights are missing and could not be downloaded
	ErrModelUnavailable = errors.New("model backend unavailable")

	// ErrEmptyCompletion is returned when a model responds without any usable text
	ErrEmptyCompletion = errors.New("model returned empty completion")

	// ErrAllBackendsExhausted is returned when every model in the fallback chain failed
	ErrAllBackendsExhausted = errors.New("all model backends exhausted")

	// ErrMalformedReport is returned when synthesis output cannot be parsed as JSON
	ErrMalformedReport = errors.New("malformed analysis report")
)
