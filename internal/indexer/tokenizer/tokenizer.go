// Package tokenizer provides text normalisation for the search engine.
// It lower-cases input, splits on runes that are not letters, digits or
// combining marks and removes stop-words. The same Normalizer must be used for documents and queries.
package tokenizer

import (
	"strings"
	"unicode"
)

// DefaultStopWords is the stop-word set used when Config.StopWords is nil.
var DefaultStopWords = []string{
	"the", "is", "at", "on", "and", "a", "an", "of", "to", "in",
}

// Config controls how text is normalised.
type Config struct {
	// StopWords are dropped after lower-casing. A nil slice selects
	// DefaultStopWords; an empty non-nil slice disables stop-word removal.
	StopWords []string

	// IsSeparator reports whether r splits tokens. Separator runes never
	// appear in a term. Defaults to any rune that is not a letter, digit or
	// combining mark.
	IsSeparator func(r rune) bool
}

// Normalizer turns raw text into index terms. It is immutable and safe for
// concurrent use.
type Normalizer struct {
	stopWords   map[string]struct{}
	isSeparator func(r rune) bool
}

// New builds a Normalizer from cfg.
func New(cfg Config) *Normalizer {
	words := cfg.StopWords
	if words == nil {
		words = DefaultStopWords
	}
	stop := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	sep := cfg.IsSeparator
	if sep == nil {
		sep = isNotAlphanumeric
	}
	return &Normalizer{stopWords: stop, isSeparator: sep}
}

// Default returns a Normalizer with DefaultStopWords and the default
// separator rule.
func Default() *Normalizer {
	return New(Config{})
}

// Normalize returns the lower-cased terms of text in left-to-right order,
// with stop-words removed. Repeated terms are kept.
func (n *Normalizer) Normalize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), n.isSeparator)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if n.IsStopWord(word) {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// IsStopWord reports whether the already lower-cased word is excluded.
func (n *Normalizer) IsStopWord(word string) bool {
	_, ok := n.stopWords[word]
	return ok
}

// StopWords returns the configured stop words in no particular order.
func (n *Normalizer) StopWords() []string {
	out := make([]string, 0, len(n.stopWords))
	for w := range n.stopWords {
		out = append(out, w)
	}
	return out
}

// isNotAlphanumeric keeps combining marks so words in scripts such as
// Devanagari, and decomposed accents, stay whole.
func isNotAlphanumeric(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}
