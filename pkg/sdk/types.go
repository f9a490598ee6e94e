package sdk

// Fragment is an indexed unit of text with optional metadata. Embedding is
// populated only when requested with IncludeVector.
type Fragment struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// UpsertFragmentRequest creates or replaces a fragment. When Embedding is
// nil the server computes one from Text.
type UpsertFragmentRequest struct {
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SearchRequest is a hybrid search query. Zero K and nil weights use the
// server's configured defaults.
type SearchRequest struct {
	Query        string            `json:"query"`
	K            int               `json:"k,omitempty"`
	VectorWeight *float64          `json:"vector_weight,omitempty"`
	BM25Weight   *float64          `json:"bm25_weight,omitempty"`
	Filter       map[string]string `json:"filter,omitempty"`
}

// SearchResult is a single ranked hit with per-channel subscores.
type SearchResult struct {
	ID              string            `json:"id"`
	Text            string            `json:"text"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	VectorScore     float64           `json:"vector_score"`
	BM25Score       float64           `json:"bm25_score"`
	VectorScoreNorm float64           `json:"vector_score_norm"`
	BM25ScoreNorm   float64           `json:"bm25_score_norm"`
	CombinedScore   float64           `json:"combined_score"`
}

// HealthReport is the aggregated service health.
type HealthReport struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Fragments int               `json:"fragments"`
}

type fragmentListResponse struct {
	Items []Fragment `json:"items"`
	Total int        `json:"total"`
}

type searchResponse struct {
	Items []SearchResult `json:"items"`
	Total int            `json:"total"`
}
