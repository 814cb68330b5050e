package retrieval

import (
	"context"
	"sort"

	"github.com/hanlease/retrieval-core/rerank"
)

// capForRerank caps merged (the law/rule/case candidates concatenated
// in that order, each already fused) at maxDocs, preferring law+rule
// over case when overflowing, per spec.md §4.6.
func capForRerank(merged []candidate, maxDocs int) []candidate {
	if maxDocs <= 0 || len(merged) <= maxDocs {
		return merged
	}
	var lawRule, caseCands []candidate
	for _, cd := range merged {
		if cd.source() == SourceCase {
			caseCands = append(caseCands, cd)
		} else {
			lawRule = append(lawRule, cd)
		}
	}
	if len(lawRule) >= maxDocs {
		return append([]candidate{}, lawRule[:maxDocs]...)
	}
	out := append([]candidate{}, lawRule...)
	remaining := maxDocs - len(lawRule)
	if remaining > len(caseCands) {
		remaining = len(caseCands)
	}
	return append(out, caseCands[:remaining]...)
}

// applyRerank invokes the Reranker Adapter over capped, truncating
// each body to rerank_doc_max_chars first, filters by
// rerank_threshold, and falls back to the reranker's own top
// k_law+k_rule+k_case (ignoring the threshold) when filtering would
// otherwise empty the list — spec.md §4.6 and §9 Open Question 1. Any
// reranker failure is non-fatal: capped's pre-rerank order is
// returned unchanged.
func (c *Core) applyRerank(ctx context.Context, query string, capped []candidate) []candidate {
	if len(capped) == 0 {
		return capped
	}

	docs := make([]Document, len(capped))
	for i, cd := range capped {
		d := cd.doc
		d.Content = truncateText(d.Content, c.cfg.RerankDocMaxChars)
		docs[i] = d
	}

	results, err := c.reranker.Rerank(ctx, query, docs)
	if err != nil {
		c.log.Warn("reranker failed, using pre-rerank order", "err", err)
		return capped
	}

	ordered := append([]rerank.Result{}, results...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Score > ordered[j].Score })

	filtered := make([]rerank.Result, 0, len(ordered))
	for _, r := range ordered {
		if r.Score >= c.cfg.RerankThreshold {
			filtered = append(filtered, r)
		}
	}

	final := filtered
	if len(filtered) == 0 && len(ordered) > 0 {
		topN := c.cfg.KLaw + c.cfg.KRule + c.cfg.KCase
		if topN > len(ordered) {
			topN = len(ordered)
		}
		final = ordered[:topN]
	}

	out := make([]candidate, 0, len(final))
	for _, r := range final {
		if r.Index < 0 || r.Index >= len(capped) {
			continue
		}
		out = append(out, capped[r.Index])
	}
	return out
}
