package ragfuse

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"
)

// fixedEmbed returns the same vector for every input.
func fixedEmbed(vec []float32) EmbedFunc {
	return func(context.Context, string) ([]float32, error) {
		return vec, nil
	}
}

// policyCorpus is the three-fragment refund/shipping corpus used across the
// scoring tests.
func policyCorpus(t *testing.T) *Corpus {
	t.Helper()
	return mustCorpus(t, []Fragment{
		{
			ID:        "f1",
			Text:      "refund policy covers thirty days",
			Embedding: []float32{0.9, 0.1},
			Metadata:  map[string]string{"doc": "policy"},
		},
		{
			ID:        "f2",
			Text:      "shipping costs are separate",
			Embedding: []float32{0.1, 0.9},
			Metadata:  map[string]string{"doc": "shipping"},
		},
		{
			ID:        "f3",
			Text:      "thirty day return window for refunds",
			Embedding: []float32{0.85, 0.15},
			Metadata:  map[string]string{"doc": "policy"},
		},
	})
}

func refundQuery(k int, vw, bw float64) Query {
	return Query{Text: "refund window", K: k, VectorWeight: vw, BM25Weight: bw}
}

var refundEmbedding = []float32{0.88, 0.12}

func TestScore_HybridRanking(t *testing.T) {
	corpus := policyCorpus(t)

	results, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), refundQuery(2, 0.5, 0.5))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Both channels favor f1 and f3; f2 must not make the top two.
	for _, r := range results {
		if r.Fragment.ID == "f2" {
			t.Fatalf("f2 ranked in top 2: %+v", results)
		}
	}

	// With k=3, f2 is last.
	all, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), refundQuery(3, 0.5, 0.5))
	if err != nil {
		t.Fatalf("Score k=3: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
	if all[2].Fragment.ID != "f2" {
		t.Errorf("expected f2 last, got order %s %s %s",
			all[0].Fragment.ID, all[1].Fragment.ID, all[2].Fragment.ID)
	}
}

func TestScore_Deterministic(t *testing.T) {
	corpus := policyCorpus(t)
	q := refundQuery(3, 0.6, 0.4)

	first, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), q)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), q)
		if err != nil {
			t.Fatalf("Score repeat %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst %+v\nagain %+v", i, first, again)
		}
	}
}

func TestScore_TieBreakByID(t *testing.T) {
	// Identical embeddings and disjoint vocabulary against the query:
	// every candidate ties on both channels, so order falls back to ID asc.
	corpus := mustCorpus(t, []Fragment{
		makeFragment("charlie", "gamma", []float32{1, 0}),
		makeFragment("alpha", "alpha", []float32{1, 0}),
		makeFragment("bravo", "beta", []float32{1, 0}),
	})

	results, err := corpus.Score(context.Background(), fixedEmbed([]float32{1, 0}),
		Query{Text: "unrelated", K: 3, VectorWeight: 0.5, BM25Weight: 0.5})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	got := []string{results[0].Fragment.ID, results[1].Fragment.ID, results[2].Fragment.ID}
	want := []string{"alpha", "bravo", "charlie"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tie-break order %v, want %v", got, want)
	}
}

func TestScore_Cardinality(t *testing.T) {
	corpus := policyCorpus(t)

	cases := []struct {
		k      int
		filter map[string]string
		want   int
	}{
		{k: 1, want: 1},
		{k: 3, want: 3},
		{k: 10, want: 3},
		{k: 10, filter: map[string]string{"doc": "policy"}, want: 2},
		{k: 1, filter: map[string]string{"doc": "policy"}, want: 1},
		{k: 5, filter: map[string]string{"doc": "missing"}, want: 0},
	}

	for _, tc := range cases {
		q := refundQuery(tc.k, 0.5, 0.5)
		q.Filter = tc.filter
		results, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), q)
		if err != nil {
			t.Fatalf("Score k=%d filter=%v: %v", tc.k, tc.filter, err)
		}
		if len(results) != tc.want {
			t.Errorf("k=%d filter=%v: got %d results, want %d", tc.k, tc.filter, len(results), tc.want)
		}
	}
}

func TestScore_NormalizedBounds(t *testing.T) {
	corpus := policyCorpus(t)

	results, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), refundQuery(3, 0.5, 0.5))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	checkChannel := func(name string, get func(ScoredResult) float64) {
		var sawOne bool
		allZero := true
		for _, r := range results {
			v := get(r)
			if v < 0 || v > 1 {
				t.Errorf("%s: %v outside [0,1] for %s", name, v, r.Fragment.ID)
			}
			if v == 1 {
				sawOne = true
			}
			if v != 0 {
				allZero = false
			}
		}
		if !sawOne && !allZero {
			t.Errorf("%s: min-max property violated (no 1, not all 0)", name)
		}
	}

	checkChannel("vector_norm", func(r ScoredResult) float64 { return r.VectorScoreNorm })
	checkChannel("bm25_norm", func(r ScoredResult) float64 { return r.BM25ScoreNorm })
}

func TestScore_WeightSensitivity(t *testing.T) {
	// f1 closest by cosine; f3 has the stronger lexical overlap ("window").
	corpus := policyCorpus(t)

	order := func(vw, bw float64) []string {
		results, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), refundQuery(3, vw, bw))
		if err != nil {
			t.Fatalf("Score vw=%v bw=%v: %v", vw, bw, err)
		}
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.Fragment.ID
		}
		return ids
	}

	// Pure vector: rank by cosine against [0.88,0.12]: f1 > f3 > f2.
	pureVector := order(1, 0)
	if !reflect.DeepEqual(pureVector, []string{"f1", "f3", "f2"}) {
		t.Errorf("pure vector order %v, want [f1 f3 f2]", pureVector)
	}

	// Pure lexical: tokens match verbatim ("refunds" is not "refund"), so
	// f1 matches "refund", f3 matches "window", f2 matches nothing.
	// Only f2's last place is stable; f1 vs f3 depends on length norm.
	pureBM25 := order(0, 1)
	if pureBM25[2] != "f2" {
		t.Errorf("pure bm25 order %v, want f2 last", pureBM25)
	}

	// Equivalent weight pairs normalize to the same blend.
	if a, b := order(0.5, 0.5), order(1, 1); !reflect.DeepEqual(a, b) {
		t.Errorf("weight normalization broken: (0.5,0.5) %v vs (1,1) %v", a, b)
	}
}

func TestScore_EmptyCorpus(t *testing.T) {
	corpus, err := BuildCorpus([]Fragment{})
	if err != nil {
		t.Fatalf("BuildCorpus: %v", err)
	}

	results, err := corpus.Score(context.Background(), fixedEmbed([]float32{1}), refundQuery(5, 0.5, 0.5))
	if err != nil {
		t.Fatalf("Score on empty corpus: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestScore_EmptyQueryText(t *testing.T) {
	corpus := policyCorpus(t)

	results, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding),
		Query{Text: "", K: 3, VectorWeight: 0.5, BM25Weight: 0.5})
	if err != nil {
		t.Fatalf("Score with empty query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.BM25Score != 0 || r.BM25ScoreNorm != 0 {
			t.Errorf("%s: lexical channel should be zero for empty query, got raw %v norm %v",
				r.Fragment.ID, r.BM25Score, r.BM25ScoreNorm)
		}
	}
}

func TestScore_ZeroNormEmbeddings(t *testing.T) {
	corpus := mustCorpus(t, []Fragment{
		makeFragment("zero", "alpha", []float32{0, 0}),
		makeFragment("unit", "beta", []float32{1, 0}),
	})

	// Degenerate query embedding: every cosine is 0 by policy, no panic.
	results, err := corpus.Score(context.Background(), fixedEmbed([]float32{0, 0}),
		Query{Text: "alpha", K: 2, VectorWeight: 0.5, BM25Weight: 0.5})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for _, r := range results {
		if r.VectorScore != 0 {
			t.Errorf("%s: zero-norm cosine = %v, want 0", r.Fragment.ID, r.VectorScore)
		}
	}
}

func TestScore_ArgumentValidation(t *testing.T) {
	corpus := policyCorpus(t)
	embed := fixedEmbed(refundEmbedding)

	cases := []struct {
		name string
		q    Query
		want error
	}{
		{"k zero", Query{Text: "x", K: 0, VectorWeight: 1}, ErrInvalidArgument},
		{"k negative", Query{Text: "x", K: -3, VectorWeight: 1}, ErrInvalidArgument},
		{"both weights zero", Query{Text: "x", K: 1}, ErrInvalidWeight},
		{"vector weight above one", Query{Text: "x", K: 1, VectorWeight: 1.5}, ErrInvalidArgument},
		{"negative bm25 weight", Query{Text: "x", K: 1, VectorWeight: 1, BM25Weight: -0.1}, ErrInvalidArgument},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := corpus.Score(context.Background(), embed, tc.q)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestScore_EmbedErrorPropagatesUnchanged(t *testing.T) {
	corpus := policyCorpus(t)
	sentinel := errors.New("provider exploded")

	_, err := corpus.Score(context.Background(),
		func(context.Context, string) ([]float32, error) { return nil, sentinel },
		refundQuery(2, 0.5, 0.5))
	if err != sentinel {
		t.Fatalf("expected the collaborator error unchanged, got %v", err)
	}
}

func TestScore_QueryEmbeddingDimMismatch(t *testing.T) {
	corpus := policyCorpus(t)

	_, err := corpus.Score(context.Background(), fixedEmbed([]float32{1, 2, 3}), refundQuery(2, 0.5, 0.5))
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestScore_SortedByCombinedScore(t *testing.T) {
	corpus := policyCorpus(t)

	results, err := corpus.Score(context.Background(), fixedEmbed(refundEmbedding), refundQuery(3, 0.7, 0.3))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if !sort.SliceIsSorted(results, func(i, j int) bool {
		return results[i].CombinedScore > results[j].CombinedScore
	}) {
		t.Fatalf("results not sorted by combined score: %+v", results)
	}

	for _, r := range results {
		blend := 0.7*r.VectorScoreNorm + 0.3*r.BM25ScoreNorm
		if math.Abs(r.CombinedScore-blend) > 1e-12 {
			t.Errorf("%s: combined %v != blend %v", r.Fragment.ID, r.CombinedScore, blend)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero left", []float32{0, 0}, []float32{1, 0}, 0},
		{"zero right", []float32{1, 0}, []float32{0, 0}, 0},
		{"scale invariant", []float32{2, 0}, []float32{5, 0}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("cosine(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
