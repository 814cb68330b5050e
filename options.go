package retrieval

import (
	"github.com/hanlease/retrieval-core/bm25"
	"github.com/hanlease/retrieval-core/config"
	"github.com/hanlease/retrieval-core/dense"
	"github.com/hanlease/retrieval-core/generator"
	"github.com/hanlease/retrieval-core/internal/ingestdoc"
	"github.com/hanlease/retrieval-core/logger"
	"github.com/hanlease/retrieval-core/normalizer"
	"github.com/hanlease/retrieval-core/rcerrors"
	"github.com/hanlease/retrieval-core/rerank"
	"github.com/hanlease/retrieval-core/tokenizer"
)

// Core is the Retrieval Orchestrator: the single entry point of the
// Hybrid Retrieval and Fusion Core, built once via New and safe for
// concurrent use by multiple in-flight requests (it owns no mutable
// per-request state).
type Core struct {
	cfg *config.Config
	log logger.Logger

	dense map[SourceIndex]dense.Index

	tok          tokenizer.Tokenizer
	analyzer     tokenizer.Analyzer
	bodyParams   bm25.Params
	titleParams  bm25.Params
	bm25Scorer   bm25.Scorer
	titleScorer  bm25.Scorer
	invertedIdx  map[SourceIndex]*bm25.InvertedIndex
	globalCorpus map[SourceIndex][]Document

	reranker     rerank.Reranker
	normalizer   normalizer.Normalizer
	generator    generator.Generator
	tokenCounter ingestdoc.TokenCounter
}

// Option configures a Core at construction time.
type Option func(*Core)

// WithConfig overrides the default Config.
func WithConfig(cfg *config.Config) Option {
	return func(c *Core) { c.cfg = cfg }
}

// WithLogger overrides the default Logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Core) { c.log = l }
}

// WithDenseIndex registers the Dense Retriever Adapter for one
// source. All three sources should be registered; an unregistered
// source behaves as if it always returns zero candidates.
func WithDenseIndex(source SourceIndex, idx dense.Index) Option {
	return func(c *Core) { c.dense[source] = idx }
}

// WithTokenizer overrides the tokenizer selection outright, bypassing
// Config.BM25UseMorph and tokenizer.Select entirely.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(c *Core) { c.tok = t }
}

// WithAnalyzer registers the morphological Analyzer used when
// Config.BM25UseMorph is true. New selects between a MorphTokenizer
// wrapping this analyzer and a RegexTokenizer via tokenizer.Select;
// WithTokenizer, if also given, takes precedence over this selection.
func WithAnalyzer(a tokenizer.Analyzer) Option {
	return func(c *Core) { c.analyzer = a }
}

// WithReranker overrides the Reranker Adapter. When not set and
// Config.EnableRerank is true, construction fails with ConfigInvalid:
// rerank cannot be enabled without an adapter to call.
func WithReranker(r rerank.Reranker) Option {
	return func(c *Core) { c.reranker = r }
}

// WithNormalizer sets the query Normalizer. When unset, normalization
// is always skipped (equivalent to every call passing
// QueryOptions.SkipNormalization).
func WithNormalizer(n normalizer.Normalizer) Option {
	return func(c *Core) { c.normalizer = n }
}

// WithGenerator sets the answer Generator. Required: construction
// fails with ConfigInvalid if unset.
func WithGenerator(g generator.Generator) Option {
	return func(c *Core) { c.generator = g }
}

// WithInvertedIndex registers a prebuilt, process-lifetime
// BM25InvertedIndex for one source, enabling the global sparse path
// for that source under sparse_mode=auto or sparse_mode=global.
// corpus must be the same documents (same order) idx.Build was called
// with: Search returns indices into that corpus, and the global fuse
// path needs the full Document behind each hit, not just its index.
func WithInvertedIndex(source SourceIndex, idx *bm25.InvertedIndex, corpus []Document) Option {
	return func(c *Core) {
		if c.invertedIdx == nil {
			c.invertedIdx = map[SourceIndex]*bm25.InvertedIndex{}
		}
		if c.globalCorpus == nil {
			c.globalCorpus = map[SourceIndex][]Document{}
		}
		c.invertedIdx[source] = idx
		c.globalCorpus[source] = corpus
	}
}

// WithTokenCounter sets the token counter used, in addition to the
// SECTION 0 character cap, to bound the caller-supplied contract text
// by token count. Optional: when unset, only the character cap
// applies.
func WithTokenCounter(tc ingestdoc.TokenCounter) Option {
	return func(c *Core) { c.tokenCounter = tc }
}

// New builds a Core. Construction-time validation failures are
// returned as *rcerrors.Error with Kind ConfigInvalid.
func New(opts ...Option) (*Core, error) {
	c := &Core{
		cfg:   config.Default(),
		log:   logger.New(logger.Warn),
		dense: map[SourceIndex]dense.Index{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.Validate(); err != nil {
		return nil, rcerrors.New(rcerrors.ConfigInvalid, "retrieval.New", err)
	}
	if c.generator == nil {
		return nil, rcerrors.New(rcerrors.ConfigInvalid, "retrieval.New", errGeneratorRequired)
	}
	if c.cfg.EnableRerank && c.reranker == nil {
		return nil, rcerrors.New(rcerrors.ConfigInvalid, "retrieval.New", errRerankerRequired)
	}
	if !c.cfg.EnableRerank {
		// enable_rerank gates the stage itself, not just construction:
		// a Reranker supplied via WithReranker must not run when the
		// flag is off.
		c.reranker = rerank.NoopReranker{}
	}
	if c.reranker == nil {
		c.reranker = rerank.NoopReranker{}
	}
	if c.tok == nil {
		c.tok = tokenizer.Select(c.cfg.BM25UseMorph, c.analyzer, 1)
	}

	c.bodyParams = bm25.Params{
		K1:          c.cfg.BM25K1,
		B:           c.cfg.BM25B,
		Algorithm:   bm25.Algorithm(c.cfg.BM25Algorithm),
		MaxDocChars: c.cfg.BM25MaxDocChars,
		Tokenizer:   c.tok,
	}
	c.titleParams = bm25.Params{
		K1:          c.cfg.BM25K1,
		B:           c.cfg.BM25B,
		Algorithm:   bm25.Algorithm(c.cfg.BM25Algorithm),
		MaxDocChars: c.cfg.BM25TitleMaxChars,
		Tokenizer:   c.tok,
	}
	c.bm25Scorer = bm25.NewScorer(c.bodyParams)
	c.titleScorer = bm25.NewScorer(c.titleParams)

	return c, nil
}

var (
	errGeneratorRequired = simpleError("retrieval: a Generator must be configured via WithGenerator")
	errRerankerRequired  = simpleError("retrieval: enable_rerank is true but no Reranker was configured via WithReranker")
)

type simpleError string

func (e simpleError) Error() string { return string(e) }
