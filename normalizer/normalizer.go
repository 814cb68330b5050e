// Package normalizer rewrites a colloquial Korean question into legal
// terminology before retrieval, using a chat LLM guided by a fixed
// dictionary-based prompt. Failures fall back to the original text.
package normalizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teilomillet/gollm"

	"github.com/hanlease/retrieval-core/dictionary"
	"github.com/hanlease/retrieval-core/prompts"
)

// Normalizer is the capability the orchestrator calls before
// retrieval. Implementations must never return an error the caller is
// expected to treat as fatal: on failure the orchestrator uses the
// original text, so a Normalizer that cannot proceed should do the
// same internally and return (text, nil).
type Normalizer interface {
	Normalize(ctx context.Context, text string) (string, error)
}

// LLMNormalizer is the production Normalizer, backed by gollm the same
// way the teacher lineage's contextual generation is.
type LLMNormalizer struct {
	llm gollm.LLM
}

// Config configures an LLMNormalizer.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	MaxTokens  int
	MaxRetries int
	RetryDelay time.Duration
}

// New builds an LLMNormalizer. A ConfigInvalid-shaped error from the
// underlying gollm constructor propagates; callers are expected to
// treat it as construction-time failure, not a runtime
// DependencyUnavailable.
func New(cfg Config) (*LLMNormalizer, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	llm, err := gollm.NewLLM(
		gollm.SetProvider(cfg.Provider),
		gollm.SetModel(cfg.Model),
		gollm.SetAPIKey(cfg.APIKey),
		gollm.SetMaxTokens(cfg.MaxTokens),
		gollm.SetMaxRetries(cfg.MaxRetries),
		gollm.SetRetryDelay(cfg.RetryDelay),
	)
	if err != nil {
		return nil, err
	}
	return &LLMNormalizer{llm: llm}, nil
}

// Normalize renders the normalization template with the dictionary
// and the user's text, invokes the LLM, and falls back to the
// original text on any failure (DependencyUnavailable, per the error
// handling design — the normalizer never surfaces an error upward).
func (n *LLMNormalizer) Normalize(ctx context.Context, text string) (string, error) {
	prompt := gollm.NewPrompt(fmt.Sprintf(prompts.NormalizationTemplate, renderDictionary(), text))
	out, err := n.llm.Generate(ctx, prompt)
	if err != nil {
		return text, nil
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return text, nil
	}
	return out, nil
}

// renderDictionary produces a deterministic, sorted-by-key textual
// rendering of the dictionary for inclusion in the prompt.
func renderDictionary() string {
	keys := make([]string, 0, len(dictionary.KeywordDict))
	for k := range dictionary.KeywordDict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s -> %s\n", k, dictionary.KeywordDict[k])
	}
	return b.String()
}
