package ragfuse

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into lexical tokens for BM25 scoring. The same
// tokenizer must be used at corpus build time and query time: BM25 matches
// tokens verbatim, so mismatched vocabulary normalization silently breaks
// the lexical channel.
type Tokenizer func(text string) []string

// DefaultTokenizer lower-cases the text and splits on runs of
// non-alphanumeric characters. "Thirty-day refund!" becomes
// ["thirty" "day" "refund"].
func DefaultTokenizer(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
