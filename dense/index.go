// Package dense adapts the three external vector indices (law, rule,
// case) to a single capability the orchestrator fetches from. The
// indices themselves, and the embedding model that populated them, are
// external collaborators; this package only wraps the client calls.
package dense

import (
	"context"

	"github.com/hanlease/retrieval-core/document"
)

// Index is the capability the orchestrator fans out to. A Search
// failure is recovered by the caller (DependencyUnavailable: that
// source contributes nothing), so implementations should return the
// error rather than hide it.
type Index interface {
	// Search returns up to k documents for query, annotated by the
	// caller with __dense_rank (and __dense_score when Scored is
	// true).
	Search(ctx context.Context, query string, k int) ([]Result, error)
	// SearchFiltered is Search narrowed to documents whose metadata
	// field matches value exactly; used by case-chunk expansion to
	// fetch every chunk of one case_no.
	SearchFiltered(ctx context.Context, query string, k int, field, value string) ([]Result, error)
}

// Result is one dense hit: a Document plus its similarity score and
// whether the backend actually produced a score (as opposed to an
// unscored ordering the caller must treat as rank-only).
type Result struct {
	Doc    document.Document
	Score  float64
	Scored bool
}
