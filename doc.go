// Package ragfuse ranks text fragments against a query by fusing semantic
// (cosine over dense embeddings) and lexical (Okapi BM25) relevance into a
// single weighted score.
//
// The package exposes two entry points. BuildCorpus turns a set of fragments
// into an immutable Corpus carrying the lexical statistics BM25 needs, and
// Corpus.Score produces a ranked, explainable result list:
//
//	corpus, _ := ragfuse.BuildCorpus(fragments)
//	results, _ := corpus.Score(ctx, embed, ragfuse.Query{
//	    Text:         "refund window",
//	    K:            5,
//	    VectorWeight: 0.7,
//	    BM25Weight:   0.3,
//	})
//
// A Corpus is a value: mutation goes through WithFragment / WithoutFragment,
// which return new Corpus values with statistics recomputed. Score never
// observes statistics that disagree with the fragment set it is ranking, and
// concurrent Score calls over the same Corpus are safe.
//
// Embedding is an injected collaborator (EmbedFunc); the package never
// computes embeddings itself. Tokenization is pluggable but must be the same
// at corpus build time and query time.
package ragfuse
