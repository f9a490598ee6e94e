package ragfuse

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Score ranks the corpus against the query and returns at most q.K results.
//
// Every fragment passing the metadata filter is scored on both channels
// (no per-channel prefilter, so a fragment strong on only one channel is
// never dropped before fusion), the channels are min-max normalized within
// the candidate set, and the normalized scores are blended with the
// normalized weights. Ordering is deterministic: combined score descending,
// then normalized vector score descending, then fragment ID ascending.
//
// The query embedding comes from the injected embed collaborator; its
// errors are returned unchanged. An empty corpus or a filter matching
// nothing yields an empty, non-error result.
func (c *Corpus) Score(ctx context.Context, embed EmbedFunc, q Query) ([]ScoredResult, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if embed == nil {
		return nil, fmt.Errorf("nil embed collaborator: %w", ErrInvalidArgument)
	}

	candidates := make([]*Fragment, 0, len(c.fragments))
	for i := range c.fragments {
		if c.fragments[i].matches(q.Filter) {
			candidates = append(candidates, &c.fragments[i])
		}
	}
	if len(candidates) == 0 {
		return []ScoredResult{}, nil
	}

	queryEmbedding, err := embed(ctx, q.Text)
	if err != nil {
		return nil, err
	}
	if len(queryEmbedding) != c.dim {
		return nil, fmt.Errorf("query embedding dim %d, corpus dim %d: %w",
			len(queryEmbedding), c.dim, ErrDimensionMismatch)
	}

	queryTokens := c.tokenize(q.Text)

	results := make([]ScoredResult, len(candidates))
	for i, f := range candidates {
		results[i] = ScoredResult{
			Fragment:    *f,
			VectorScore: cosineSimilarity(queryEmbedding, f.Embedding),
			BM25Score:   c.bm25Score(queryTokens, f),
		}
	}

	normalizeChannel(results,
		func(r *ScoredResult) float64 { return r.VectorScore },
		func(r *ScoredResult, v float64) { r.VectorScoreNorm = v },
	)
	normalizeChannel(results,
		func(r *ScoredResult) float64 { return r.BM25Score },
		func(r *ScoredResult, v float64) { r.BM25ScoreNorm = v },
	)

	wv := q.VectorWeight / (q.VectorWeight + q.BM25Weight)
	wb := q.BM25Weight / (q.VectorWeight + q.BM25Weight)
	for i := range results {
		results[i].CombinedScore = wv*results[i].VectorScoreNorm + wb*results[i].BM25ScoreNorm
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		if results[i].VectorScoreNorm != results[j].VectorScoreNorm {
			return results[i].VectorScoreNorm > results[j].VectorScoreNorm
		}
		return results[i].Fragment.ID < results[j].Fragment.ID
	})

	if len(results) > q.K {
		results = results[:q.K]
	}
	return results, nil
}

func (q Query) validate() error {
	if q.K <= 0 {
		return fmt.Errorf("k must be positive, got %d: %w", q.K, ErrInvalidArgument)
	}
	if q.VectorWeight < 0 || q.VectorWeight > 1 {
		return fmt.Errorf("vector weight %v outside [0,1]: %w", q.VectorWeight, ErrInvalidArgument)
	}
	if q.BM25Weight < 0 || q.BM25Weight > 1 {
		return fmt.Errorf("bm25 weight %v outside [0,1]: %w", q.BM25Weight, ErrInvalidArgument)
	}
	if q.VectorWeight == 0 && q.BM25Weight == 0 {
		return fmt.Errorf("both fusion weights are zero: %w", ErrInvalidWeight)
	}
	return nil
}

// cosineSimilarity computes dot(a,b)/(|a||b|) in float64. Either vector
// having zero norm yields 0 rather than dividing by zero.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalizeChannel min-max rescales one score channel to [0,1] within the
// candidate set. A channel where every candidate scored the same carries no
// discriminative information and normalizes to 0 for everyone.
func normalizeChannel(
	results []ScoredResult,
	get func(*ScoredResult) float64,
	set func(*ScoredResult, float64),
) {
	minV, maxV := get(&results[0]), get(&results[0])
	for i := 1; i < len(results); i++ {
		v := get(&results[i])
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	if maxV == minV {
		for i := range results {
			set(&results[i], 0)
		}
		return
	}
	for i := range results {
		set(&results[i], (get(&results[i])-minV)/(maxV-minV))
	}
}
