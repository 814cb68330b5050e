// Package ingestdoc holds the one piece of the teacher lineage's
// document-ingestion layer this core still needs: counting tokens in
// the user-supplied SECTION 0 contract text, so it can be bounded by
// token count in addition to the character cap the context formatter
// already applies. Ingestion pipelines themselves remain out of
// scope.
package ingestdoc

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens in text.
type TokenCounter interface {
	Count(text string) int
}

// TikTokenCounter counts tokens the way OpenAI-family models do, using
// the same library the teacher lineage's chunker uses.
type TikTokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTikTokenCounter builds a TikTokenCounter for the given encoding
// (e.g. "cl100k_base").
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("ingestdoc: get encoding: %w", err)
	}
	return &TikTokenCounter{enc: enc}, nil
}

// Count implements TokenCounter.
func (c *TikTokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
