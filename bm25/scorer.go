// Package bm25 implements Okapi/Plus BM25 scoring, both over small
// per-request candidate lists and over a prebuilt, process-lifetime
// inverted index. The scoring formula includes a query-term-frequency
// boost factor on top of classical BM25, matching the system this
// module's behavior is grounded on.
package bm25

import (
	"math"
	"strings"

	extbm25 "github.com/iwilltry42/bm25-go/bm25"
	"github.com/hanlease/retrieval-core/tokenizer"
)

// Algorithm selects the BM25 variant.
type Algorithm string

const (
	Okapi Algorithm = "okapi"
	Plus  Algorithm = "plus"
)

// Params configures a Scorer.
type Params struct {
	K1           float64
	B            float64
	Algorithm    Algorithm
	MaxDocChars  int
	Tokenizer    tokenizer.Tokenizer
}

// DefaultParams mirrors the configuration defaults for body scoring.
func DefaultParams() Params {
	return Params{
		K1:          1.8,
		B:           0.85,
		Algorithm:   Okapi,
		MaxDocChars: 4000,
		Tokenizer:   tokenizer.NewRegexTokenizer(1),
	}
}

// Scorer computes BM25 scores for a query against a corpus known at
// call time (as opposed to InvertedIndex, which is built once and
// queried repeatedly).
type Scorer interface {
	// ScoreCandidates scores query against each of docs, truncating
	// each document to Params.MaxDocChars before tokenizing.
	ScoreCandidates(query string, docs []string) []float64
	// ScoreTexts is ScoreCandidates under a different name, used when
	// scoring an arbitrary field (e.g. titles) rather than bodies; the
	// mathematics are identical.
	ScoreTexts(query string, texts []string) []float64
}

// NewScorer builds the formula Scorer for p — the implementation that
// matches the required query-term-frequency-boosted BM25 formula
// exactly and deterministically. The same formula is used whatever
// p.Algorithm says.
// Callers that want the third-party github.com/iwilltry42/bm25-go
// implementation instead (classical Okapi, no qf-boost) can construct
// a LibraryScorer directly via NewLibraryScorer.
func NewScorer(p Params) Scorer {
	if p.Tokenizer == nil {
		p.Tokenizer = tokenizer.NewRegexTokenizer(1)
	}
	if p.MaxDocChars <= 0 {
		p.MaxDocChars = 4000
	}
	return &FormulaScorer{params: p}
}

func truncate(s string, maxChars int) string {
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars])
}

// FormulaScorer is the hand-rolled Scorer NewScorer returns: given tokens, document
// lengths, the average length, and per-term IDF, it computes
//
//	score_d = Σ_t idf(t) · f_t,d·(k1+1) / (f_t,d + k1·((1-b) + b·|d|/avgdl)) · (1 + 0.1·(qf_t - 1))
//
// exactly as specified, including the query-term-frequency boost the
// classical formula omits.
type FormulaScorer struct {
	params Params
}

func (s *FormulaScorer) ScoreCandidates(query string, docs []string) []float64 {
	return scoreFormula(s.params, query, docs)
}

func (s *FormulaScorer) ScoreTexts(query string, texts []string) []float64 {
	return scoreFormula(s.params, query, texts)
}

func scoreFormula(p Params, query string, docs []string) []float64 {
	n := len(docs)
	scores := make([]float64, n)
	if n == 0 {
		return scores
	}
	queryTokens := p.Tokenizer.Tokenize(query)
	if len(queryTokens) == 0 {
		return scores
	}

	docTokens := make([][]string, n)
	var totalLen float64
	df := map[string]int{}
	for i, d := range docs {
		toks := p.Tokenizer.Tokenize(truncate(d, p.MaxDocChars))
		docTokens[i] = toks
		totalLen += float64(len(toks))
		seen := map[string]bool{}
		for _, t := range toks {
			if !seen[t] {
				df[t]++
				seen[t] = true
			}
		}
	}
	avgdl := totalLen / float64(n)
	if avgdl == 0 {
		avgdl = 1
	}

	qf := map[string]int{}
	for _, t := range queryTokens {
		qf[t]++
	}

	idf := func(term string) float64 {
		d := df[term]
		return math.Log(1 + (float64(n)-float64(d)+0.5)/(float64(d)+0.5))
	}

	k1, b := p.K1, p.B
	for i, toks := range docTokens {
		tf := map[string]int{}
		for _, t := range toks {
			tf[t]++
		}
		dl := float64(len(toks))
		var score float64
		for term, q := range qf {
			f, ok := tf[term]
			if !ok || f == 0 {
				continue
			}
			ft := float64(f)
			boost := 1 + 0.1*(float64(q)-1)
			score += idf(term) * (ft * (k1 + 1)) / (ft + k1*((1-b)+b*dl/avgdl)) * boost
		}
		scores[i] = score
	}
	return scores
}

// LibraryScorer wraps github.com/iwilltry42/bm25-go's Okapi
// implementation, the mature third-party BM25 library. It does not
// implement the query-term-frequency boost the formula scorer does,
// and NewScorer never returns it: callers that want it construct it
// directly with NewLibraryScorer.
type LibraryScorer struct {
	params Params
}

// NewLibraryScorer attempts to build a LibraryScorer, returning an
// error if the parameters are unusable by the underlying library.
func NewLibraryScorer(p Params) (*LibraryScorer, error) {
	if p.K1 <= 0 || p.B < 0 || p.B > 1 {
		return nil, errInvalidParams
	}
	return &LibraryScorer{params: p}, nil
}

var errInvalidParams = &paramsError{"bm25: k1 must be > 0 and b must be in [0,1]"}

type paramsError struct{ msg string }

func (e *paramsError) Error() string { return e.msg }

func (s *LibraryScorer) ScoreCandidates(query string, docs []string) []float64 {
	return s.score(query, docs)
}

func (s *LibraryScorer) ScoreTexts(query string, texts []string) []float64 {
	return s.score(query, texts)
}

func (s *LibraryScorer) score(query string, docs []string) []float64 {
	n := len(docs)
	scores := make([]float64, n)
	if n == 0 || strings.TrimSpace(query) == "" {
		return scores
	}
	corpus := make([]string, n)
	for i, d := range docs {
		corpus[i] = truncate(d, s.params.MaxDocChars)
	}
	tok := s.params.Tokenizer
	engine, err := extbm25.NewBM25Okapi(corpus, tok.Tokenize, s.params.K1, s.params.B, nil)
	if err != nil {
		return scores
	}
	queryTokens := tok.Tokenize(query)
	got, err := engine.GetScores(queryTokens)
	if err != nil {
		return scores
	}
	copy(scores, got)
	return scores
}
