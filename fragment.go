package ragfuse

import "context"

// Fragment is an immutable unit of retrievable text: a chunk of a source
// document plus its precomputed dense embedding and pass-through metadata.
type Fragment struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	// Derived lexical view, populated once at corpus build time and reused
	// across queries. Never serialized.
	tokens   []string
	termFreq map[string]int
}

// Tokens returns the cached lexical tokens of the fragment text.
// Empty until the fragment has been through BuildCorpus.
func (f *Fragment) Tokens() []string { return f.tokens }

// matches reports whether every filter key/value pair is present verbatim
// in the fragment metadata.
func (f *Fragment) matches(filter map[string]string) bool {
	for k, v := range filter {
		if f.Metadata[k] != v {
			return false
		}
	}
	return true
}

// EmbedFunc vectorizes text. It is an injected collaborator: the ranker
// never computes embeddings itself, and errors returned here propagate out
// of Score unchanged.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// Query is a single ranking request against a Corpus.
type Query struct {
	// Text is the raw query string. It may be empty, in which case the
	// lexical channel scores zero for every candidate.
	Text string `json:"text"`
	// K is the maximum number of results to return. Must be positive.
	K int `json:"k"`
	// VectorWeight and BM25Weight blend the two channels. Each must lie in
	// [0,1]; they need not sum to one (Score normalizes them), but they must
	// not both be zero.
	VectorWeight float64 `json:"vector_weight"`
	BM25Weight   float64 `json:"bm25_weight"`
	// Filter is an exact-match predicate over fragment metadata. A fragment
	// is a candidate only if it carries every listed key/value pair.
	Filter map[string]string `json:"filter,omitempty"`
}

// ScoredResult is one ranked hit with per-channel subscores for
// explainability. Raw scores keep their native ranges (cosine in [-1,1],
// BM25 unbounded >= 0); the *Norm fields are min-max rescaled to [0,1]
// within the result's candidate set.
type ScoredResult struct {
	Fragment        Fragment `json:"fragment"`
	VectorScore     float64  `json:"vector_score"`
	BM25Score       float64  `json:"bm25_score"`
	VectorScoreNorm float64  `json:"vector_score_norm"`
	BM25ScoreNorm   float64  `json:"bm25_score_norm"`
	CombinedScore   float64  `json:"combined_score"`
}
