package retrieval

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hanlease/retrieval-core/prompts"
	"github.com/hanlease/retrieval-core/rcerrors"
)

// QueryOptions configures one call to AnswerWithTrace.
type QueryOptions struct {
	// SkipNormalization bypasses the Normalizer and retrieves using
	// text verbatim.
	SkipNormalization bool
	// ExtraContext is the caller's OCR'd contract text, rendered as
	// SECTION 0 ahead of the retrieved evidence when non-empty.
	ExtraContext string
	// UseContractMode selects the contract-analysis system prompt
	// instead of the general one.
	UseContractMode bool
}

// Result is the outcome of one AnswerWithTrace call.
type Result struct {
	// NormalizedQuery is the text actually used for retrieval, after
	// normalization (or the original text on skip/failure).
	NormalizedQuery string
	// References is the UI-facing short reference list, parallel to
	// Docs.
	References []string
	// Answer is the generator's output, or one of the fixed
	// user-visible fallback strings on EmptyResult/generator failure.
	Answer string
	// Docs is the final, deduplicated, priority-ordered evidence
	// list.
	Docs []Document
}

// Fixed, user-visible fallback strings (spec.md §4.8, §7). The core
// never surfaces a backend error message in their place.
const (
	noResultAnswer   = prompts.FixedAnswerEmptyResult
	generatorApology = prompts.FixedAnswerGeneratorFailure
)

// AnswerWithTrace is the Retrieval Orchestrator's single public
// operation (spec.md §4.7): normalize, fan out to the three dense
// sources, fuse per source, rerank, split back with case expansion,
// sort by legal priority, format context, and generate an answer.
func (c *Core) AnswerWithTrace(ctx context.Context, text string, opts QueryOptions) (Result, error) {
	normalized := c.normalizeQuery(ctx, text, opts.SkipNormalization)

	kLaw := c.cfg.KLaw * c.cfg.SearchMultiplier
	kRule := c.cfg.KRule * c.cfg.SearchMultiplier
	kCase := c.cfg.CaseCandidateK

	raw := c.fetchAll(ctx, normalized, kLaw, kRule, kCase)

	fusedLaw := c.fuseSource(SourceLaw, normalized, raw[SourceLaw])
	fusedRule := c.fuseSource(SourceRule, normalized, raw[SourceRule])
	fusedCase := c.fuseSource(SourceCase, normalized, raw[SourceCase])

	if len(fusedLaw) == 0 && len(fusedRule) == 0 && len(fusedCase) == 0 {
		return Result{
			NormalizedQuery: normalized,
			References:      []string{},
			Answer:          noResultAnswer,
		}, nil
	}

	merged := make([]candidate, 0, len(fusedLaw)+len(fusedRule)+len(fusedCase))
	merged = append(merged, fusedLaw...)
	merged = append(merged, fusedRule...)
	merged = append(merged, fusedCase...)

	capped := capForRerank(merged, c.cfg.RerankMaxDocuments)
	reranked := c.applyRerank(ctx, normalized, capped)

	lawOut, ruleOut, caseChunks := splitBySource(reranked, c.cfg.KLaw, c.cfg.KRule)
	caseOut := c.expandCases(ctx, normalized, caseChunks)

	items := buildFinalItems(lawOut, ruleOut, caseOut)
	sort.SliceStable(items, func(i, j int) bool {
		return priorityOf(items[i].doc) < priorityOf(items[j].doc)
	})

	docs := make([]Document, len(items))
	sourceOf := make([]SourceIndex, len(items))
	for i, it := range items {
		docs[i] = it.doc
		sourceOf[i] = it.source
	}

	renderedContext := c.formatContext(docs, opts.ExtraContext)
	refs := formatReferences(docs, sourceOf)

	answer, err := c.generator.Generate(ctx, normalized, renderedContext, opts.UseContractMode)
	if err != nil {
		c.log.Warn("generator failed, using fixed apology", "err", err)
		answer = generatorApology
	}

	return Result{
		NormalizedQuery: normalized,
		References:      refs,
		Answer:          answer,
		Docs:            docs,
	}, nil
}

// normalizeQuery runs the Normalizer unless skipped or unconfigured,
// falling back to the original text on any failure (spec.md §4.7 step
// 1, §7 DependencyUnavailable policy for the normalizer).
func (c *Core) normalizeQuery(ctx context.Context, text string, skip bool) string {
	if skip || c.normalizer == nil {
		return text
	}
	out, err := c.normalizer.Normalize(ctx, text)
	if err != nil {
		c.log.Warn("normalizer failed, using original text", "err", err)
		return text
	}
	return out
}

// fetchAll runs the three dense fetches concurrently (spec.md §5: the
// three dense-index fetches SHOULD run concurrently). A per-source
// failure is recovered here and contributes an empty candidate list;
// it never aborts the other two sources.
func (c *Core) fetchAll(ctx context.Context, query string, kLaw, kRule, kCase int) map[SourceIndex][]candidate {
	out := map[SourceIndex][]candidate{SourceLaw: nil, SourceRule: nil, SourceCase: nil}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(source SourceIndex, k int) {
		g.Go(func() error {
			cands, err := c.retrieveSource(gctx, source, query, k)
			if err != nil {
				c.log.Warn("dense fetch failed, source contributes nothing", "source", source, "err", err)
				cands = nil
			}
			mu.Lock()
			out[source] = cands
			mu.Unlock()
			return nil
		})
	}
	fetch(SourceLaw, kLaw)
	fetch(SourceRule, kRule)
	fetch(SourceCase, kCase)
	_ = g.Wait()

	return out
}

// retrieveSource calls the Dense Retriever Adapter for one source and
// annotates each hit with __dense_rank (and __dense_score when the
// backend produced one).
func (c *Core) retrieveSource(ctx context.Context, source SourceIndex, query string, k int) ([]candidate, error) {
	idx, ok := c.dense[source]
	if !ok || k <= 0 {
		return nil, nil
	}
	results, err := idx.Search(ctx, query, k)
	if err != nil {
		return nil, rcerrors.New(rcerrors.DependencyUnavailable, "retrieval.retrieveSource:"+string(source), err)
	}
	cands := make([]candidate, len(results))
	for i, r := range results {
		nc := newCandidate(r.Doc)
		nc.set(annSourceIndex, string(source))
		nc.set(annDenseRank, i+1)
		if r.Scored {
			nc.set(annDenseScore, r.Score)
		}
		cands[i] = nc
	}
	return cands, nil
}

// splitBySource partitions a post-rerank candidate list back into
// per-source slices, keeping at most kLaw law candidates and kRule
// rule candidates (spec.md §4.7 step 5). Case candidates are returned
// in full for expandCases to select from.
func splitBySource(cands []candidate, kLaw, kRule int) (law, rule, caseChunks []candidate) {
	for _, cd := range cands {
		switch cd.source() {
		case SourceLaw:
			if len(law) < kLaw {
				law = append(law, cd)
			}
		case SourceRule:
			if len(rule) < kRule {
				rule = append(rule, cd)
			}
		case SourceCase:
			caseChunks = append(caseChunks, cd)
		}
	}
	return
}

// finalItem pairs a final Document with the source it came from, kept
// alongside the document through the priority sort so formatReferences
// can still tell a rule from a case once both land in the same
// section.
type finalItem struct {
	doc    Document
	source SourceIndex
}

func buildFinalItems(law, rule, caseOut []candidate) []finalItem {
	items := make([]finalItem, 0, len(law)+len(rule)+len(caseOut))
	for _, cd := range law {
		items = append(items, finalItem{doc: cd.doc, source: SourceLaw})
	}
	for _, cd := range rule {
		items = append(items, finalItem{doc: cd.doc, source: SourceRule})
	}
	for _, cd := range caseOut {
		items = append(items, finalItem{doc: cd.doc, source: SourceCase})
	}
	return items
}
