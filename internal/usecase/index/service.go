// Package index owns the corpus lifecycle: it keeps an immutable in-memory
// snapshot in sync with the fragment store and hands that snapshot to the
// search path.
package index

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/domain"
	"github.com/ragfuse/ragfuse/internal/metrics"
)

// Service maintains the fragment corpus. Reads go through an immutable
// snapshot; writes rebuild the snapshot under a mutex and persist first, so
// a store failure never leaves the snapshot ahead of the store.
type Service struct {
	repo   Repository
	embed  Embedder
	bm25   ragfuse.BM25Params
	logger *zap.Logger

	mu     sync.RWMutex
	corpus *ragfuse.Corpus
}

// New creates an index service with an empty corpus snapshot.
func New(repo Repository, embed Embedder, bm25 ragfuse.BM25Params, logger *zap.Logger) (*Service, error) {
	corpus, err := ragfuse.BuildCorpus(nil, ragfuse.WithBM25Params(bm25))
	if err != nil {
		return nil, fmt.Errorf("build empty corpus: %w", err)
	}
	return &Service{
		repo:   repo,
		embed:  embed,
		bm25:   bm25,
		logger: logger,
		corpus: corpus,
	}, nil
}

// Load rebuilds the snapshot from the store. Called once on startup.
func (s *Service) Load(ctx context.Context) error {
	fragments, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list fragments: %w", err)
	}

	corpus, err := ragfuse.BuildCorpus(fragments, ragfuse.WithBM25Params(s.bm25))
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}

	s.mu.Lock()
	s.corpus = corpus
	s.mu.Unlock()

	metrics.CorpusFragments.Set(float64(corpus.Len()))
	s.logger.Info("Corpus loaded",
		zap.Int("fragments", corpus.Len()),
		zap.Int("dimensions", corpus.Dimensions()))
	return nil
}

// Snapshot returns the current immutable corpus.
func (s *Service) Snapshot() *ragfuse.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// Count returns the number of indexed fragments.
func (s *Service) Count() int {
	return s.Snapshot().Len()
}

// Upsert validates, embeds (when no vector is supplied), persists, and swaps
// in a new snapshot. Returns true when the fragment is new.
func (s *Service) Upsert(ctx context.Context, f ragfuse.Fragment) (bool, error) {
	if strings.TrimSpace(f.ID) == "" {
		return false, fmt.Errorf("empty fragment ID: %w", domain.ErrInvalidFragment)
	}
	if strings.TrimSpace(f.Text) == "" {
		return false, fmt.Errorf("empty fragment text: %w", domain.ErrInvalidFragment)
	}

	if len(f.Embedding) == 0 {
		result, err := s.embed.Embed(ctx, f.Text)
		if err != nil {
			return false, err
		}
		domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)
		f.Embedding = result.Embedding
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate against the current snapshot before touching the store.
	corpus, err := s.corpus.WithFragment(f)
	if err != nil {
		return false, err
	}

	created, err := s.repo.Upsert(ctx, &f)
	if err != nil {
		return false, fmt.Errorf("persist fragment %q: %w", f.ID, err)
	}

	s.corpus = corpus
	metrics.CorpusFragments.Set(float64(corpus.Len()))

	s.logger.Info("Fragment upserted",
		zap.String("id", f.ID),
		zap.Bool("created", created),
		zap.Int("corpus_size", corpus.Len()))
	return created, nil
}

// Get returns a fragment from the current snapshot.
func (s *Service) Get(_ context.Context, id string) (ragfuse.Fragment, error) {
	f, ok := s.Snapshot().Fragment(id)
	if !ok {
		return ragfuse.Fragment{}, domain.ErrFragmentNotFound
	}
	return f, nil
}

// Delete removes a fragment from the store and the snapshot.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.corpus.Fragment(id); !ok {
		return domain.ErrFragmentNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete fragment %q: %w", id, err)
	}

	corpus, err := s.corpus.WithoutFragment(id)
	if err != nil {
		return fmt.Errorf("rebuild corpus: %w", err)
	}
	s.corpus = corpus
	metrics.CorpusFragments.Set(float64(corpus.Len()))

	s.logger.Info("Fragment deleted",
		zap.String("id", id),
		zap.Int("corpus_size", corpus.Len()))
	return nil
}

// List returns all indexed fragments sorted by ID.
func (s *Service) List(_ context.Context) []ragfuse.Fragment {
	fragments := s.Snapshot().Fragments()
	sort.Slice(fragments, func(i, j int) bool { return fragments[i].ID < fragments[j].ID })
	return fragments
}
