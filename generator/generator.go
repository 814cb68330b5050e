// Package generator produces the final answer from a formatted
// context string, choosing between the general and contract-analysis
// system prompts.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/teilomillet/gollm"

	"github.com/hanlease/retrieval-core/prompts"
)

// Generator is the capability the orchestrator calls last. On
// failure, the orchestrator substitutes a fixed apology string; a
// Generator implementation may either return that error or do the
// substitution itself, but must not panic.
type Generator interface {
	Generate(ctx context.Context, query, renderedContext string, useContractMode bool) (string, error)
}

// LLMGenerator is the production Generator, backed by gollm.
type LLMGenerator struct {
	llm gollm.LLM
}

// Config configures an LLMGenerator.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	MaxTokens  int
	MaxRetries int
	RetryDelay time.Duration
}

// New builds an LLMGenerator.
func New(cfg Config) (*LLMGenerator, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1200
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
	return &LLMGenerator{llm: llm}, nil
}

// Generate selects the contract-analysis or general system prompt,
// embeds renderedContext into it, and invokes the LLM with query as
// the human turn — matching the Python ground truth's
// ChatPromptTemplate, which sends the system prompt (carrying the
// retrieved context) alongside a separate human message holding
// {question}. Without this, the LLM never sees the user's query.
func (g *LLMGenerator) Generate(ctx context.Context, query, renderedContext string, useContractMode bool) (string, error) {
	template := prompts.SystemPromptGeneral
	if useContractMode {
		template = prompts.SystemPromptContract
	}
	systemPrompt := fmt.Sprintf(template, renderedContext)
	prompt := gollm.NewPrompt(query, gollm.WithSystemPrompt(systemPrompt, gollm.CacheTypeEphemeral))
	out, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return out, nil
}
