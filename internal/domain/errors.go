package domain

import "errors"

var (
	// ErrFragmentNotFound signals a missing fragment.
	ErrFragmentNotFound = errors.New("fragment not found")
	// ErrInvalidFragment signals a fragment that fails validation.
	ErrInvalidFragment = errors.New("invalid fragment")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit on the embedding provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable signals that the fragment store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)
