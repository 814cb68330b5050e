package bm25

import (
	"math"
	"sort"

	"github.com/hanlease/retrieval-core/tokenizer"
)

// Posting is one (document, term-frequency) pair in a term's posting
// list.
type Posting struct {
	DocIdx int
	Freq   int
}

// Scored pairs a document index from the index's corpus with its
// accumulated BM25 score.
type Scored struct {
	DocIdx int
	Score  float64
}

// InvertedIndex is the optional per-source, process-lifetime global
// sparse index: built once from the full corpus for a source, queried
// many times, never mutated after Build returns.
type InvertedIndex struct {
	docs     []string
	postings map[string][]Posting
	df       map[string]int
	avgdl    float64
	docLens  []int
	params   Params
	built    bool
}

// NewInvertedIndex creates an empty index configured with p. Call
// Build to populate it.
func NewInvertedIndex(p Params) *InvertedIndex {
	if p.Tokenizer == nil {
		p.Tokenizer = tokenizer.NewRegexTokenizer(1)
	}
	if p.MaxDocChars <= 0 {
		p.MaxDocChars = 4000
	}
	return &InvertedIndex{
		postings: map[string][]Posting{},
		df:       map[string]int{},
		params:   p,
	}
}

// Build populates the index from docs. It is idempotent: calling it
// again replaces the previous contents.
func (idx *InvertedIndex) Build(docs []string) {
	idx.docs = make([]string, len(docs))
	idx.docLens = make([]int, len(docs))
	idx.postings = map[string][]Posting{}
	idx.df = map[string]int{}

	var totalLen float64
	for i, d := range docs {
		truncated := truncate(d, idx.params.MaxDocChars)
		idx.docs[i] = truncated
		toks := idx.params.Tokenizer.Tokenize(truncated)
		idx.docLens[i] = len(toks)
		totalLen += float64(len(toks))

		tf := map[string]int{}
		for _, t := range toks {
			tf[t]++
		}
		for term, freq := range tf {
			idx.postings[term] = append(idx.postings[term], Posting{DocIdx: i, Freq: freq})
			idx.df[term]++
		}
	}
	if len(docs) > 0 {
		idx.avgdl = totalLen / float64(len(docs))
	}
	if idx.avgdl == 0 {
		idx.avgdl = 1
	}
	idx.built = true
}

// IsBuilt reports whether Build has run.
func (idx *InvertedIndex) IsBuilt() bool { return idx.built }

// ScoreTexts scores arbitrary texts (typically a per-request candidate
// set, not the indexed corpus itself) against query using this index's
// global idf and avgdl statistics rather than statistics recomputed
// from the small candidate pool, so the scores are stable across
// requests. The orchestrator's sparse_mode=global path does not call
// it; that path uses Search and merges the hits into the candidates.
func (idx *InvertedIndex) ScoreTexts(query string, texts []string) []float64 {
	n := len(texts)
	scores := make([]float64, n)
	if !idx.built || n == 0 {
		return scores
	}
	queryTokens := idx.params.Tokenizer.Tokenize(query)
	if len(queryTokens) == 0 {
		return scores
	}
	qf := map[string]int{}
	for _, t := range queryTokens {
		qf[t]++
	}
	k1, b := idx.params.K1, idx.params.B
	for i, text := range texts {
		toks := idx.params.Tokenizer.Tokenize(truncate(text, idx.params.MaxDocChars))
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
			score += idx.idf(term) * (ft * (k1 + 1)) / (ft + k1*((1-b)+b*dl/idx.avgdl)) * boost
		}
		scores[i] = score
	}
	return scores
}

func (idx *InvertedIndex) idf(term string) float64 {
	n := len(idx.docs)
	d := idx.df[term]
	return math.Log(1 + (float64(n)-float64(d)+0.5)/(float64(d)+0.5))
}

// Search accumulates BM25 contributions over the posting lists of the
// query's terms only (not a full corpus scan) and returns the top_k
// documents by score descending, using the same qf-boosted formula as
// the candidate-level Scorer so fusion scores stay comparable across
// the candidate and global sparse paths.
func (idx *InvertedIndex) Search(query string, topK int) []Scored {
	if !idx.built || len(idx.docs) == 0 {
		return nil
	}
	queryTokens := idx.params.Tokenizer.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}
	qf := map[string]int{}
	for _, t := range queryTokens {
		qf[t]++
	}

	acc := map[int]float64{}
	k1, b := idx.params.K1, idx.params.B
	for term, q := range qf {
		postings, ok := idx.postings[term]
		if !ok {
			continue
		}
		idfVal := idx.idf(term)
		boost := 1 + 0.1*(float64(q)-1)
		for _, p := range postings {
			dl := float64(idx.docLens[p.DocIdx])
			ft := float64(p.Freq)
			score := idfVal * (ft * (k1 + 1)) / (ft + k1*((1-b)+b*dl/idx.avgdl)) * boost
			acc[p.DocIdx] += score
		}
	}

	results := make([]Scored, 0, len(acc))
	for docIdx, score := range acc {
		results = append(results, Scored{DocIdx: docIdx, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocIdx < results[j].DocIdx
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}
