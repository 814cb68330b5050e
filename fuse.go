package retrieval

import (
	"sort"

	"github.com/hanlease/retrieval-core/bm25"
	"github.com/hanlease/retrieval-core/fusion"
)

// fuseSource implements the Hybrid Fuser (spec.md §4.5) for one
// source: dedupe, compute each channel's per-doc rank, combine via the
// configured fusion rule, and return candidates reordered by fused
// score with __hybrid_rank renumbered densely from 1.
//
// Under sparse_mode=global (or auto resolving to global), the sparse
// channel is not computed by rescoring the dense candidates: it comes
// from actually querying the source's InvertedIndex and merging its
// hits into the candidate set before fusion, per the global-merge
// design (SPEC_FULL.md, mirroring rag_module.py's
// _hybrid_fuse_per_source).
func (c *Core) fuseSource(source SourceIndex, query string, cands []candidate) []candidate {
	cands = dedupeCandidates(cands, c.cfg.DedupeKeyFields)
	if len(cands) == 0 {
		return cands
	}

	merged := cands
	var denseRanks, bodyRanks []int

	if c.cfg.EnableBM25 && c.resolveSparseMode(source) == "global" {
		merged, denseRanks, bodyRanks = c.globalMerge(source, query, cands)
	} else {
		denseRanks = make([]int, len(cands))
		for i, cd := range cands {
			if r, ok := cd.getInt(annDenseRank); ok {
				denseRanks[i] = r
			}
		}
		if c.cfg.EnableBM25 {
			bodies := make([]string, len(cands))
			for i, cd := range cands {
				bodies[i] = cd.doc.Content
			}
			scores := c.bm25Scorer.ScoreCandidates(query, bodies)
			bodyRanks = ranksFromScores(scores)
		}
	}

	n := len(merged)
	for i := range merged {
		merged[i].set(annSourceIndex, string(source))
	}

	channels := []fusion.Channel{{Ranks: denseRanks, Weight: c.cfg.HybridDenseWeight}}

	if c.cfg.EnableBM25 {
		for i := range merged {
			merged[i].set(annBM25Rank, bodyRanks[i])
		}
		wBody := c.cfg.HybridSparseWeight
		if c.cfg.EnableBM25Title {
			wBody = c.cfg.HybridSparseWeight * (1 - c.cfg.HybridSparseTitleRatio)
		}
		channels = append(channels, fusion.Channel{Ranks: bodyRanks, Weight: wBody})

		if c.cfg.EnableBM25Title {
			titles := make([]string, n)
			for i, cd := range merged {
				titles[i] = metaString(cd.doc.Metadata, c.cfg.BM25TitleField)
			}
			titleScores := c.titleScorer.ScoreTexts(query, titles)
			titleRanks := ranksFromScores(titleScores)
			for i := range merged {
				merged[i].set(annBM25TitleRank, titleRanks[i])
			}
			wTitle := c.cfg.HybridSparseWeight * c.cfg.HybridSparseTitleRatio
			channels = append(channels, fusion.Channel{Ranks: titleRanks, Weight: wTitle})
		}
	}

	fused := fusion.Fuse(n, channels, fusion.Mode(c.cfg.HybridFusion), c.cfg.RRFK)
	out := make([]candidate, n)
	for i, f := range fused {
		cd := merged[f.DocIdx]
		cd.set(annHybridScore, f.Score)
		cd.set(annHybridRank, f.Rank)
		out[i] = cd
	}
	return out
}

// globalMerge queries source's InvertedIndex for query, unions the
// hits into dense (dense candidates win dedup ties, matching
// rag_module.py's dense-before-sparse ordering), and returns the
// merged set alongside dense-rank and body-rank arrays aligned to it.
// A document present on only one side gets that channel's
// worst-observed-rank-plus-1000 as its rank, the same fill used by
// the Python ground truth, so it still participates in fusion without
// being mistaken for a top hit on the channel it's missing from.
func (c *Core) globalMerge(source SourceIndex, query string, dense []candidate) (merged []candidate, denseRanks, bodyRanks []int) {
	idx := c.invertedIdx[source]
	var hits []bm25.Scored
	if idx != nil && idx.IsBuilt() {
		hits = idx.Search(query, c.globalSearchTopK(source))
	}

	corpus := c.globalCorpus[source]
	sparse := make([]candidate, 0, len(hits))
	for rank, h := range hits {
		if h.DocIdx < 0 || h.DocIdx >= len(corpus) {
			continue
		}
		sc := newCandidate(corpus[h.DocIdx])
		sc.set(annBM25Score, h.Score)
		sc.set(annBM25Rank, rank+1)
		sparse = append(sparse, sc)
	}

	denseRankMap := rankMap(dense, c.cfg.DedupeKeyFields, annDenseRank)
	sparseRankMap := rankMap(sparse, c.cfg.DedupeKeyFields, annBM25Rank)
	fillDense := maxRank(denseRankMap) + 1000
	fillSparse := maxRank(sparseRankMap) + 1000

	combined := make([]candidate, 0, len(dense)+len(sparse))
	combined = append(combined, dense...)
	combined = append(combined, sparse...)
	merged = dedupeCandidates(combined, c.cfg.DedupeKeyFields)

	denseRanks = make([]int, len(merged))
	bodyRanks = make([]int, len(merged))
	for i, cd := range merged {
		key := cd.dedupeKey(c.cfg.DedupeKeyFields)
		if r, ok := denseRankMap[key]; ok {
			denseRanks[i] = r
		} else {
			denseRanks[i] = fillDense
		}
		if r, ok := sparseRankMap[key]; ok {
			bodyRanks[i] = r
		} else {
			bodyRanks[i] = fillSparse
		}
	}
	return merged, denseRanks, bodyRanks
}

// globalSearchTopK returns how many hits to pull from source's
// InvertedIndex. Config.SparseK{Law,Rule,Case} override the
// inherited default (k*search_multiplier, or for the case source the
// larger of k_case*search_multiplier and case_candidate_k) when set
// to a positive value.
func (c *Core) globalSearchTopK(source SourceIndex) int {
	switch source {
	case SourceLaw:
		if c.cfg.SparseKLaw > 0 {
			return c.cfg.SparseKLaw
		}
		return c.cfg.KLaw * c.cfg.SearchMultiplier
	case SourceRule:
		if c.cfg.SparseKRule > 0 {
			return c.cfg.SparseKRule
		}
		return c.cfg.KRule * c.cfg.SearchMultiplier
	default: // SourceCase
		if c.cfg.SparseKCase > 0 {
			return c.cfg.SparseKCase
		}
		byMultiplier := c.cfg.KCase * c.cfg.SearchMultiplier
		if c.cfg.CaseCandidateK > byMultiplier {
			return c.cfg.CaseCandidateK
		}
		return byMultiplier
	}
}

// rankMap builds a dedupe-key -> rank lookup from cands, preferring
// each candidate's rankAnn annotation and falling back to its
// 1-based position when the annotation is absent. Where a key repeats
// the smallest (best) rank wins.
func rankMap(cands []candidate, keyFields []string, rankAnn string) map[string]int {
	m := make(map[string]int, len(cands))
	for i, cd := range cands {
		r, ok := cd.getInt(rankAnn)
		if !ok {
			r = i + 1
		}
		key := cd.dedupeKey(keyFields)
		if cur, ok := m[key]; !ok || r < cur {
			m[key] = r
		}
	}
	return m
}

// maxRank returns the largest rank in m, or 1000 if m is empty,
// matching rag_module.py's default fill basis.
func maxRank(m map[string]int) int {
	max := 0
	for _, r := range m {
		if r > max {
			max = r
		}
	}
	if max == 0 {
		return 1000
	}
	return max
}

// resolveSparseMode applies the sparse_mode policy: "candidate" and
// "global" are taken literally; "auto" (the default) uses the global
// path when a built InvertedIndex exists for source, candidate-level
// scoring otherwise.
func (c *Core) resolveSparseMode(source SourceIndex) string {
	switch c.cfg.SparseMode {
	case "global":
		return "global"
	case "candidate":
		return "candidate"
	default:
		if idx, ok := c.invertedIdx[source]; ok && idx != nil && idx.IsBuilt() {
			return "global"
		}
		return "candidate"
	}
}

// ranksFromScores assigns dense 1-based ranks to scores, descending,
// ties broken by original (stable) position so two equally-scored
// documents keep whatever order the caller handed them in.
func ranksFromScores(scores []float64) []int {
	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })
	ranks := make([]int, n)
	for rank, idx := range order {
		ranks[idx] = rank + 1
	}
	return ranks
}
