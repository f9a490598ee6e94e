package search

import (
	"context"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/domain"
)

// CorpusProvider hands out the current immutable corpus snapshot.
type CorpusProvider interface {
	Snapshot() *ragfuse.Corpus
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
