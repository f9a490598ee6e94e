package ragfuse

import "fmt"

// Corpus is an immutable collection of fragments plus the derived lexical
// statistics BM25 needs. Build one with BuildCorpus; derive changed ones
// with WithFragment / WithoutFragment. A Corpus is safe for concurrent use.
type Corpus struct {
	fragments []Fragment
	byID      map[string]int
	docFreq   map[string]int
	avgLen    float64
	dim       int
	tokenize  Tokenizer
	bm25      BM25Params
}

// CorpusOption customizes corpus construction.
type CorpusOption func(*Corpus)

// WithTokenizer replaces the default tokenizer. The corpus applies it to
// every fragment and to every query scored against it.
func WithTokenizer(t Tokenizer) CorpusOption {
	return func(c *Corpus) {
		if t != nil {
			c.tokenize = t
		}
	}
}

// WithBM25Params overrides the Okapi BM25 free parameters.
func WithBM25Params(p BM25Params) CorpusOption {
	return func(c *Corpus) { c.bm25 = p }
}

// BuildCorpus tokenizes the fragments and computes document frequency and
// average fragment length. All fragments must share one embedding
// dimensionality (ErrDimensionMismatch otherwise) and carry unique,
// non-empty IDs (ErrInvalidArgument). An empty input yields an empty,
// scoreable corpus.
func BuildCorpus(fragments []Fragment, opts ...CorpusOption) (*Corpus, error) {
	c := &Corpus{
		tokenize: DefaultTokenizer,
		bm25:     DefaultBM25Params(),
	}
	for _, o := range opts {
		o(c)
	}

	c.fragments = make([]Fragment, len(fragments))
	copy(c.fragments, fragments)
	c.byID = make(map[string]int, len(fragments))
	c.docFreq = make(map[string]int)

	var totalLen int
	for i := range c.fragments {
		f := &c.fragments[i]
		if f.ID == "" {
			return nil, fmt.Errorf("fragment %d: empty ID: %w", i, ErrInvalidArgument)
		}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate fragment ID %q: %w", f.ID, ErrInvalidArgument)
		}
		c.byID[f.ID] = i

		if i == 0 {
			c.dim = len(f.Embedding)
		} else if len(f.Embedding) != c.dim {
			return nil, fmt.Errorf("fragment %q: embedding dim %d, corpus dim %d: %w",
				f.ID, len(f.Embedding), c.dim, ErrDimensionMismatch)
		}

		f.tokens = c.tokenize(f.Text)
		f.termFreq = make(map[string]int, len(f.tokens))
		for _, t := range f.tokens {
			f.termFreq[t]++
		}
		for t := range f.termFreq {
			c.docFreq[t]++
		}
		totalLen += len(f.tokens)
	}

	if len(c.fragments) > 0 {
		c.avgLen = float64(totalLen) / float64(len(c.fragments))
	}

	return c, nil
}

// WithFragment returns a new Corpus with the fragment added, replacing any
// existing fragment with the same ID. Statistics are recomputed; the
// receiver is unchanged.
func (c *Corpus) WithFragment(f Fragment) (*Corpus, error) {
	next := make([]Fragment, 0, len(c.fragments)+1)
	replaced := false
	for i := range c.fragments {
		if c.fragments[i].ID == f.ID {
			next = append(next, f)
			replaced = true
			continue
		}
		next = append(next, c.fragments[i])
	}
	if !replaced {
		next = append(next, f)
	}
	return BuildCorpus(next, WithTokenizer(c.tokenize), WithBM25Params(c.bm25))
}

// WithoutFragment returns a new Corpus with the identified fragment removed.
// Removing an unknown ID returns an equivalent corpus.
func (c *Corpus) WithoutFragment(id string) (*Corpus, error) {
	next := make([]Fragment, 0, len(c.fragments))
	for i := range c.fragments {
		if c.fragments[i].ID == id {
			continue
		}
		next = append(next, c.fragments[i])
	}
	return BuildCorpus(next, WithTokenizer(c.tokenize), WithBM25Params(c.bm25))
}

// Len returns the number of fragments in the corpus.
func (c *Corpus) Len() int { return len(c.fragments) }

// Dimensions returns the embedding dimensionality (0 for an empty corpus).
func (c *Corpus) Dimensions() int { return c.dim }

// AverageFragmentLength returns the mean token count across fragments.
func (c *Corpus) AverageFragmentLength() float64 { return c.avgLen }

// DocumentFrequency returns the number of fragments containing the token.
func (c *Corpus) DocumentFrequency(token string) int { return c.docFreq[token] }

// Fragment returns the fragment with the given ID.
func (c *Corpus) Fragment(id string) (Fragment, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Fragment{}, false
	}
	return c.fragments[i], true
}

// Fragments returns a copy of the fragment set in corpus order.
func (c *Corpus) Fragments() []Fragment {
	out := make([]Fragment, len(c.fragments))
	copy(out, c.fragments)
	return out
}
