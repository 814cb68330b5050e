// Package rerank adapts an external cross-encoder reranker service.
// The service itself is an external collaborator consumed through a
// narrow interface; this package never scores documents itself.
package rerank

import (
	"context"

	"github.com/hanlease/retrieval-core/document"
)

// Result is one reranked document: its position in the input slice
// and the reranker's relevance score in [0,1].
type Result struct {
	Index int
	Score float64
}

// Reranker is the capability the orchestrator calls once, after
// fusion and before the final split/expansion. A failing call is
// non-fatal: the caller keeps the pre-rerank order.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []document.Document) ([]Result, error)
}

// NoopReranker returns documents in their given order with a uniform
// score of 1, used when rerank is disabled by configuration.
type NoopReranker struct{}

// Rerank implements Reranker.
func (NoopReranker) Rerank(ctx context.Context, query string, docs []document.Document) ([]Result, error) {
	out := make([]Result, len(docs))
	for i := range docs {
		out[i] = Result{Index: i, Score: 1}
	}
	return out, nil
}
