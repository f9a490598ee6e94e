package index

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ragfuse/ragfuse"
	"github.com/ragfuse/ragfuse/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	fragments map[string]ragfuse.Fragment

	upsertErr error
	deleteErr error
	listErr   error
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
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.fragments, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]ragfuse.Fragment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]ragfuse.Fragment, 0, len(m.fragments))
	for _, f := range m.fragments {
		out = append(out, f)
	}
	return out, nil
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockEmbedder) {
	t.Helper()
	repo := newMockRepo()
	emb := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2},
		TotalTokens: 3,
	}}
	svc, err := New(repo, emb, ragfuse.DefaultBM25Params(), zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, repo, emb
}
