package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors for the common failure modes. Use errors.Is() to check.
var (
	ErrFragmentNotFound       = errors.New("ragfuse: fragment not found")
	ErrInvalidRequest         = errors.New("ragfuse: invalid request")
	ErrRateLimited            = errors.New("ragfuse: rate limited")
	ErrEmbeddingProviderError = errors.New("ragfuse: embedding provider error")
	ErrUnauthorized           = errors.New("ragfuse: unauthorized")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ragfuse: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap maps well-known error codes to sentinels.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "fragment_not_found":
		return ErrFragmentNotFound
	case "rate_limited":
		return ErrRateLimited
	case "embedding_provider_error":
		return ErrEmbeddingProviderError
	case "bad_request", "validation_failed", "dimension_mismatch", "invalid_weight":
		if e.StatusCode == 401 {
			return ErrUnauthorized
		}
		return ErrInvalidRequest
	}
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	return nil
}
