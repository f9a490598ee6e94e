package chi

import (
	"context"
	"net/http/httptest"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/domain"
	healthuc "github.com/ragfuse/ragfuse/internal/usecase/health"
	indexuc "github.com/ragfuse/ragfuse/internal/usecase/index"
	searchuc "github.com/ragfuse/ragfuse/internal/usecase/search"
)

// --- Mocks ---

type mockRepo struct {
	fragments map[string]ragfuse.Fragment
	upsertErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{fragments: make(map[string]ragfuse.Fragment)}
}

func (m *mockRepo) Upsert(_ context.Context, f *ragfuse.Fragment) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	_, exists := m.fragments[f.ID]
	m.fragments[f.ID] = *f
	return !exists, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	delete(m.fragments, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]ragfuse.Fragment, error) {
	out := make([]ragfuse.Fragment, 0, len(m.fragments))
	for _, f := range m.fragments {
		out = append(out, f)
	}
	return out, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// testEnv bundles the wired stack behind an httptest server.
type testEnv struct {
	server   *httptest.Server
	repo     *mockRepo
	embedder *mockEmbedder
	pinger   *mockPinger
	index    *indexuc.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMockRepo()
	embedder := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.5, 0.5},
		TotalTokens: 6,
	}}
	pinger := &mockPinger{}

	logger := zap.NewNop()
	indexSvc, err := indexuc.New(repo, embedder, ragfuse.DefaultBM25Params(), logger)
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	searchSvc := searchuc.New(indexSvc, embedder,
		searchuc.Defaults{VectorWeight: 0.7, BM25Weight: 0.3, K: 5, MaxK: 100}, logger)
	healthSvc := healthuc.New(pinger, nil, indexSvc)

	srv := NewServer(indexSvc, searchSvc, healthSvc, logger)
	r := gochi.NewRouter()
	srv.Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	return &testEnv{
		server:   ts,
		repo:     repo,
		embedder: embedder,
		pinger:   pinger,
		index:    indexSvc,
	}
}
