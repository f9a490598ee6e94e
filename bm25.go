package ragfuse

import "math"

// Standard Okapi BM25 free parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// BM25Params are the Okapi BM25 free parameters. K1 controls term frequency
// saturation; B controls document length normalization (0 = none, 1 = full).
type BM25Params struct {
	K1 float64
	B  float64
}

// DefaultBM25Params returns the standard parameters (k1=1.5, b=0.75).
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: DefaultK1, B: DefaultB}
}

// idf is the Lucene variant of the BM25 inverse document frequency:
//
//	idf(t) = ln(1 + (N - df + 0.5) / (df + 0.5))
//
// which, unlike the classic formula, never goes negative for terms present
// in more than half the corpus.
func (c *Corpus) idf(docFreq int) float64 {
	if docFreq == 0 || len(c.fragments) == 0 {
		return 0
	}
	n := float64(len(c.fragments))
	df := float64(docFreq)
	return math.Log(1 + (n-df+0.5)/(df+0.5))
}

// bm25Score sums the Okapi BM25 contribution of every query token against
// one fragment. Fragments sharing no token with the query score exactly 0.
func (c *Corpus) bm25Score(queryTokens []string, f *Fragment) float64 {
	if len(queryTokens) == 0 || len(f.tokens) == 0 {
		return 0
	}

	lengthNorm := 1 - c.bm25.B
	if c.avgLen > 0 {
		lengthNorm += c.bm25.B * float64(len(f.tokens)) / c.avgLen
	}

	var score float64
	for _, t := range queryTokens {
		tf := float64(f.termFreq[t])
		if tf == 0 {
			continue
		}
		idf := c.idf(c.docFreq[t])
		score += idf * tf * (c.bm25.K1 + 1) / (tf + c.bm25.K1*lengthNorm)
	}
	return score
}
