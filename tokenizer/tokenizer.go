// Package tokenizer produces the token sequences the BM25 scorer and
// inverted index operate over. Two variants exist, selected by a
// process-wide policy: a morphological analyzer when one is configured
// and initializes successfully, a regex/Hangul tokenizer otherwise.
package tokenizer

import (
	"regexp"
	"strings"
)

// Tokenizer turns text into a sequence of lowercase tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Tag is a part-of-speech tag as produced by an Analyzer.
type Tag string

// Tags kept by MorphTokenizer, per the morphological variant's POS
// allowlist: general/proper nouns, verbs, adjectives, foreign words,
// Han characters.
const (
	TagNounGeneral Tag = "NNG"
	TagNounProper  Tag = "NNP"
	TagVerb        Tag = "VV"
	TagAdjective   Tag = "VA"
	TagForeign     Tag = "SL"
	TagHan         Tag = "SH"
)

var keptTags = map[Tag]bool{
	TagNounGeneral: true,
	TagNounProper:  true,
	TagVerb:        true,
	TagAdjective:   true,
	TagForeign:     true,
	TagHan:         true,
}

// Morpheme is one analyzer output: a surface form and its POS tag.
type Morpheme struct {
	Surface string
	Tag     Tag
}

// Analyzer is the capability a morphological tokenizer delegates to.
// No Go implementation of a Korean morphological analyzer exists
// anywhere in the corpus this module was grounded on; the capability
// is declared so one can be plugged in without changing MorphTokenizer,
// per the "polymorphism over tokenizer" design note.
type Analyzer interface {
	Analyze(text string) ([]Morpheme, error)
}

var wordPattern = regexp.MustCompile(`[\p{Hangul}a-zA-Z0-9]+`)

// RegexTokenizer lowercases the input and matches runs of Hangul,
// Latin letters, or digits, classifying CJK characters with the
// standard library's unicode range tables the way the corpus's BM25
// example does for Chinese text.
type RegexTokenizer struct {
	MinLength int
}

// NewRegexTokenizer builds a RegexTokenizer with the given minimum
// token length (tokens shorter than this are dropped).
func NewRegexTokenizer(minLength int) *RegexTokenizer {
	if minLength < 1 {
		minLength = 1
	}
	return &RegexTokenizer{MinLength: minLength}
}

// Tokenize implements Tokenizer.
func (t *RegexTokenizer) Tokenize(text string) []string {
	lower := strings.ToLower(text)
	matches := wordPattern.FindAllString(lower, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if len([]rune(m)) < t.MinLength {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// MorphTokenizer delegates to an Analyzer and keeps morphemes whose
// tag is in the allowlist, lowercasing and length-filtering the
// surviving surface forms. When no Analyzer is configured, or the
// Analyzer fails, it silently degrades to a RegexTokenizer, matching
// the "fails over silently on morphological init error" policy.
type MorphTokenizer struct {
	Analyzer  Analyzer
	MinLength int
	fallback  *RegexTokenizer
}

// NewMorphTokenizer builds a MorphTokenizer. analyzer may be nil, in
// which case Tokenize always uses the regex fallback.
func NewMorphTokenizer(analyzer Analyzer, minLength int) *MorphTokenizer {
	return &MorphTokenizer{
		Analyzer:  analyzer,
		MinLength: minLength,
		fallback:  NewRegexTokenizer(minLength),
	}
}

// Tokenize implements Tokenizer.
func (t *MorphTokenizer) Tokenize(text string) []string {
	if t.Analyzer == nil {
		return t.fallback.Tokenize(text)
	}
	morphemes, err := t.Analyzer.Analyze(text)
	if err != nil {
		return t.fallback.Tokenize(text)
	}
	tokens := make([]string, 0, len(morphemes))
	for _, m := range morphemes {
		if !keptTags[m.Tag] {
			continue
		}
		surface := strings.ToLower(m.Surface)
		if len([]rune(surface)) < t.MinLength {
			continue
		}
		tokens = append(tokens, surface)
	}
	return tokens
}

// Select implements the Tokenizer selection policy: prefer the
// morphological variant when preferMorph is true and analyzer is
// non-nil, otherwise use the regex variant. The choice is meant to be
// made once, process-wide.
func Select(preferMorph bool, analyzer Analyzer, minLength int) Tokenizer {
	if preferMorph && analyzer != nil {
		return NewMorphTokenizer(analyzer, minLength)
	}
	return NewRegexTokenizer(minLength)
}
