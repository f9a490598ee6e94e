// Package chi exposes the fragment index and hybrid search over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/domain"
	healthuc "github.com/ragfuse/ragfuse/internal/usecase/health"
	indexuc "github.com/ragfuse/ragfuse/internal/usecase/index"
	searchuc "github.com/ragfuse/ragfuse/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the fragment and search API.
type Server struct {
	index         *indexuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	index *indexuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		index:  index,
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrFragmentNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidFragment, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(ragfuse.ErrDimensionMismatch, http.StatusBadRequest, codeDimMismatch),
		sentinelHandler(ragfuse.ErrInvalidWeight, http.StatusBadRequest, codeInvalidWeight),
		sentinelHandler(ragfuse.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Register mounts the API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Put("/fragments/{id}", s.UpsertFragment)
		r.Get("/fragments/{id}", s.GetFragment)
		r.Delete("/fragments/{id}", s.DeleteFragment)
		r.Get("/fragments", s.ListFragments)
		r.Post("/search", s.Search)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UpsertFragment handles PUT /api/v1/fragments/{id}.
func (s *Server) UpsertFragment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req upsertFragmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	created, err := s.index.Upsert(ctx, ragfuse.Fragment{
		ID:        id,
		Text:      req.Text,
		Embedding: req.Embedding,
		Metadata:  req.Metadata,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/fragments/%s", id))
	}
	setEmbeddingHeaders(w, usage)

	f, err := s.index.Get(ctx, id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, status, fragmentToDTO(f, false))
}

// GetFragment handles GET /api/v1/fragments/{id}.
// ?include_vector=true adds the stored embedding to the response.
func (s *Server) GetFragment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f, err := s.index.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	includeVector := r.URL.Query().Get("include_vector") == "true"
	writeJSON(w, http.StatusOK, fragmentToDTO(f, includeVector))
}

// DeleteFragment handles DELETE /api/v1/fragments/{id}.
func (s *Server) DeleteFragment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.index.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFragments handles GET /api/v1/fragments.
func (s *Server) ListFragments(w http.ResponseWriter, r *http.Request) {
	fragments := s.index.List(r.Context())

	items := make([]fragmentResponse, len(fragments))
	for i, f := range fragments {
		items[i] = fragmentToDTO(f, false)
	}

	writeJSON(w, http.StatusOK, fragmentListResponse{
		Items: items,
		Total: len(items),
	})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, searchuc.Request{
		Query:        req.Query,
		K:            req.K,
		VectorWeight: req.VectorWeight,
		BM25Weight:   req.BM25Weight,
		Filter:       req.Filter,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i, res := range results {
		items[i] = resultToDTO(res)
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{
		Items: items,
		Total: len(items),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Fragments: report.Fragments,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrFragmentNotFound,
		domain.ErrInvalidFragment,
		ragfuse.ErrDimensionMismatch,
		ragfuse.ErrInvalidWeight,
		ragfuse.ErrInvalidArgument,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProviderError,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
