package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into lowercase terms for the keyword index. No
// stemming and no stopword removal: BM25's IDF already discounts terms that
// appear everywhere, and keeping terms verbatim makes keyword matches exact.
type Tokenizer struct{}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text on unicode word boundaries, lowercases each word and
// drops single-character terms.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() >= 2 {
			tokens = append(tokens, strings.ToLower(current.String()))
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
