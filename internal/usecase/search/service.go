// Package search orchestrates hybrid queries: it embeds the query text,
// applies configured ranking defaults, and scores the current corpus
// snapshot.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/domain"
	"github.com/ragfuse/ragfuse/internal/metrics"
)

// Defaults are the ranking parameters applied when a request leaves them
// unset.
type Defaults struct {
	VectorWeight float64
	BM25Weight   float64
	K            int
	MaxK         int
}

// Request is a single search request. Nil weights mean "use the configured
// default"; K <= 0 means the configured default; K above MaxK is clamped.
type Request struct {
	Query        string
	K            int
	VectorWeight *float64
	BM25Weight   *float64
	Filter       map[string]string
}

// Service handles hybrid fragment search.
type Service struct {
	corpus   CorpusProvider
	embed    Embedder
	defaults Defaults
	logger   *zap.Logger
}

// New creates a search service.
func New(corpus CorpusProvider, embed Embedder, defaults Defaults, logger *zap.Logger) *Service {
	return &Service{corpus: corpus, embed: embed, defaults: defaults, logger: logger}
}

// Search scores the current snapshot against the request and returns the
// top results. Embedding provider errors come back unwrapped so callers can
// match them with errors.Is.
func (s *Service) Search(ctx context.Context, req Request) ([]ragfuse.ScoredResult, error) {
	q := s.buildQuery(req)
	snapshot := s.corpus.Snapshot()

	start := time.Now()
	results, err := snapshot.Score(ctx, s.embedFunc(), q)
	if err != nil {
		return nil, err
	}

	metrics.RankingDuration.Observe(time.Since(start).Seconds())
	metrics.RankingCandidates.Observe(float64(snapshot.Len()))

	s.logger.Debug("Search scored",
		zap.Int("corpus_size", snapshot.Len()),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)))
	return results, nil
}

// buildQuery fills unset request fields from the configured defaults.
func (s *Service) buildQuery(req Request) ragfuse.Query {
	q := ragfuse.Query{
		Text:         req.Query,
		K:            req.K,
		VectorWeight: s.defaults.VectorWeight,
		BM25Weight:   s.defaults.BM25Weight,
		Filter:       req.Filter,
	}
	if req.VectorWeight != nil {
		q.VectorWeight = *req.VectorWeight
	}
	if req.BM25Weight != nil {
		q.BM25Weight = *req.BM25Weight
	}
	if q.K <= 0 {
		q.K = s.defaults.K
	}
	if s.defaults.MaxK > 0 && q.K > s.defaults.MaxK {
		q.K = s.defaults.MaxK
	}
	return q
}

// embedFunc adapts the domain embedder to the ranker's collaborator shape
// and records token usage on the request context.
func (s *Service) embedFunc() ragfuse.EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		result, err := s.embed.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)
		return result.Embedding, nil
	}
}
