package chi

import "github.com/ragfuse/ragfuse"

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "fragment_not_found"
	codeDimMismatch      = "dimension_mismatch"
	codeInvalidWeight    = "invalid_weight"
	codeRateLimited      = "rate_limited"
	codeProviderError    = "embedding_provider_error"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type upsertFragmentRequest struct {
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type fragmentResponse struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type fragmentListResponse struct {
	Items []fragmentResponse `json:"items"`
	Total int                `json:"total"`
}

type searchRequest struct {
	Query        string            `json:"query"`
	K            int               `json:"k,omitempty"`
	VectorWeight *float64          `json:"vector_weight,omitempty"`
	BM25Weight   *float64          `json:"bm25_weight,omitempty"`
	Filter       map[string]string `json:"filter,omitempty"`
}

type searchResultItem struct {
	ID              string            `json:"id"`
	Text            string            `json:"text"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	VectorScore     float64           `json:"vector_score"`
	BM25Score       float64           `json:"bm25_score"`
	VectorScoreNorm float64           `json:"vector_score_norm"`
	BM25ScoreNorm   float64           `json:"bm25_score_norm"`
	CombinedScore   float64           `json:"combined_score"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Fragments int               `json:"fragments"`
}

func fragmentToDTO(f ragfuse.Fragment, includeVector bool) fragmentResponse {
	resp := fragmentResponse{
		ID:       f.ID,
		Text:     f.Text,
		Metadata: f.Metadata,
	}
	if includeVector {
		resp.Embedding = f.Embedding
	}
	return resp
}

func resultToDTO(r ragfuse.ScoredResult) searchResultItem {
	return searchResultItem{
		ID:              r.Fragment.ID,
		Text:            r.Fragment.Text,
		Metadata:        r.Fragment.Metadata,
		VectorScore:     r.VectorScore,
		BM25Score:       r.BM25Score,
		VectorScoreNorm: r.VectorScoreNorm,
		BM25ScoreNorm:   r.BM25ScoreNorm,
		CombinedScore:   r.CombinedScore,
	}
}
