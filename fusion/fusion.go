// Package fusion combines per-channel ranks (dense, BM25-over-body,
// BM25-over-title) into a single fused ranking, via Reciprocal Rank
// Fusion or one of two weighted variants.
package fusion

import "sort"

// Mode selects the fusion rule.
type Mode string

const (
	RRF      Mode = "rrf"
	RankSum  Mode = "rank_sum"
	Weighted Mode = "weighted"
)

// Channel holds one ranking over a common, index-aligned document set:
// Ranks[i] is the 1-based rank of document i in this channel, or 0 if
// the document did not appear in this channel's candidate set (treated
// as maximally unranked — see rankOrWorst).
type Channel struct {
	Ranks  []int
	Weight float64
}

// Fused is one document's combined score after fusion.
type Fused struct {
	DocIdx int
	Score  float64
	Rank   int // 1-based, dense, assigned after sorting
}

// Fuse combines channels into a single ranking over n documents,
// applying the configured mode, and returns Fused entries sorted
// descending by Score with Rank re-numbered densely from 1.
func Fuse(n int, channels []Channel, mode Mode, rrfK float64) []Fused {
	if rrfK <= 0 {
		rrfK = 60
	}
	scores := make([]float64, n)

	switch mode {
	case RankSum:
		for _, ch := range channels {
			for i := 0; i < n; i++ {
				r := rankOrWorst(ch.Ranks, i, n)
				normalized := 1.0
				if n > 1 {
					normalized = 1 - (float64(r)-1)/float64(n-1)
				}
				scores[i] += ch.Weight * normalized
			}
		}
	case Weighted:
		for _, ch := range channels {
			inv := make([]float64, n)
			minV, maxV := 0.0, 0.0
			for i := 0; i < n; i++ {
				r := rankOrWorst(ch.Ranks, i, n)
				inv[i] = 1.0 / float64(r)
				if i == 0 || inv[i] < minV {
					minV = inv[i]
				}
				if i == 0 || inv[i] > maxV {
					maxV = inv[i]
				}
			}
			spread := maxV - minV
			for i := 0; i < n; i++ {
				normalized := 1.0
				if spread > 0 {
					normalized = (inv[i] - minV) / spread
				}
				scores[i] += ch.Weight * normalized
			}
		}
	default: // RRF
		for _, ch := range channels {
			for i := 0; i < n; i++ {
				r := rankOrWorst(ch.Ranks, i, n)
				scores[i] += ch.Weight / (rrfK + float64(r))
			}
		}
	}

	fused := make([]Fused, n)
	for i := 0; i < n; i++ {
		fused[i] = Fused{DocIdx: i, Score: scores[i]}
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	for i := range fused {
		fused[i].Rank = i + 1
	}
	return fused
}

// rankOrWorst returns the channel's rank for document i, or n+1 (worse
// than any real rank) if the document never appeared in that channel's
// candidate set.
func rankOrWorst(ranks []int, i, n int) int {
	if i < len(ranks) && ranks[i] > 0 {
		return ranks[i]
	}
	return n + 1
}
