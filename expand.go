package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hanlease/retrieval-core/dense"
	"github.com/hanlease/retrieval-core/document"
	"github.com/hanlease/retrieval-core/prompts"
)

// expandCases implements the two-stage case expansion of spec.md
// §4.7 step 5: walk caseChunks in their post-rerank order, and for
// each distinct unseen case_no fetch every chunk sharing that case
// number, reassemble the full text in chunk_id order, and replace the
// chunk with the reassembled Document. Stops once
// case_expand_top_n distinct cases have been assembled, then caps the
// result at k_case (case_expand_top_n may be configured larger than
// k_case; the final slice never is).
//
// Already-expanded candidates (annExpanded set) pass through
// untouched and still count toward the distinct-case budget, which
// makes re-running expansion on an already-expanded list a no-op.
func (c *Core) expandCases(ctx context.Context, query string, caseChunks []candidate) []candidate {
	topN := c.cfg.EffectiveCaseExpandTopN()
	if topN <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	type seed struct {
		cand        candidate
		passthrough bool
	}
	var seeds []seed
	for _, cc := range caseChunks {
		caseNo := metaString(cc.doc.Metadata, MetaCaseNo)
		if caseNo == "" || seen[caseNo] {
			continue
		}
		seen[caseNo] = true
		seeds = append(seeds, seed{cand: cc, passthrough: cc.getBool(annExpanded)})
		if len(seeds) >= topN {
			break
		}
	}
	if len(seeds) == 0 {
		return nil
	}

	results := make([]candidate, len(seeds))
	ok := make([]bool, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range seeds {
		i, s := i, s
		g.Go(func() error {
			if s.passthrough {
				results[i] = s.cand
				ok[i] = true
				return nil
			}
			expanded, err := c.expandOneCase(gctx, query, s.cand)
			if err != nil {
				// Degrade to the unexpanded chunk rather than
				// dropping the evidence (spec.md §7: a partial
				// backend failure is non-fatal), matching
				// get_full_case_context's "" fallback in the
				// Python ground truth, whose caller appends the
				// original chunk unchanged.
				c.log.Warn("case expansion failed, keeping unexpanded chunk", "case_no", metaString(s.cand.doc.Metadata, MetaCaseNo), "err", err)
				results[i] = s.cand
				ok[i] = true
				return nil
			}
			results[i] = expanded
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]candidate, 0, len(seeds))
	for i, didExpand := range ok {
		if didExpand {
			out = append(out, results[i])
		}
	}
	// case_expand_top_n may exceed k_case when configured explicitly;
	// the final case slice is still capped at k_case, matching
	// rag_module.py's expanded_cases[:cfg.k_case] and the size-cap
	// invariant |final| <= k_law+k_rule+k_case.
	if len(out) > c.cfg.KCase {
		out = out[:c.cfg.KCase]
	}
	return out
}

// expandOneCase fetches up to case_context_top_k chunks sharing
// seed's case_no from the case index, sorts them by chunk_id,
// dedupes, and joins the bodies to reconstruct the full case text.
func (c *Core) expandOneCase(ctx context.Context, query string, seed candidate) (candidate, error) {
	caseIdx, ok := c.dense[SourceCase]
	if !ok {
		return candidate{}, fmt.Errorf("retrieval: case index not configured")
	}

	caseNo := metaString(seed.doc.Metadata, MetaCaseNo)
	hits, err := caseIdx.SearchFiltered(ctx, query, c.cfg.CaseContextTopK, MetaCaseNo, caseNo)
	if err != nil {
		return candidate{}, err
	}
	if len(hits) == 0 {
		hits = []dense.Result{{Doc: seed.doc}}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return metaString(hits[i].Doc.Metadata, MetaChunkID) < metaString(hits[j].Doc.Metadata, MetaChunkID)
	})

	seenChunk := make(map[string]bool)
	var bodies []string
	for _, h := range hits {
		key := metaString(h.Doc.Metadata, MetaChunkID)
		if key == "" {
			key = contentHash(h.Doc.Content)
		}
		if seenChunk[key] {
			continue
		}
		seenChunk[key] = true
		bodies = append(bodies, h.Doc.Content)
	}

	title := metaString(seed.doc.Metadata, MetaCaseName)
	if title == "" {
		title = metaString(seed.doc.Metadata, MetaSrcTitle)
	}
	content := fmt.Sprintf(prompts.CaseFullTextPrefix, title) + strings.Join(bodies, "\n")

	meta := make(map[string]any, len(seed.doc.Metadata))
	for k, v := range seed.doc.Metadata {
		meta[k] = v
	}

	nc := newCandidate(document.Document{Content: content, Metadata: meta})
	nc.set(annSourceIndex, string(SourceCase))
	nc.set(annExpanded, true)
	return nc, nil
}
