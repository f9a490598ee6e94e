package index

import (
	"context"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/domain"
)

// Repository defines the storage contract for fragment persistence.
type Repository interface {
	Upsert(ctx context.Context, f *ragfuse.Fragment) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]ragfuse.Fragment, error)
}

// Embedder vectorizes fragment text when the caller supplies none.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
