package dense

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"

	"github.com/hanlease/retrieval-core/document"
)

// ChromemIndex wraps github.com/philippgille/chromem-go, a
// lighter-weight embeddable vector store used here as the local/dev
// backend for the three source collections, selectable the same way
// the teacher lineage's vector_interface.go switches backend type.
type ChromemIndex struct {
	collection *chromem.Collection
	embedder   Embedder
}

// NewChromemIndex opens or creates collectionName in db, using
// embedder to turn query text into vectors at search time.
func NewChromemIndex(db *chromem.DB, collectionName string, embedder Embedder) (*ChromemIndex, error) {
	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		v, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return toFloat32(v), nil
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("dense: chromem collection: %w", err)
	}
	return &ChromemIndex{collection: col, embedder: embedder}, nil
}

// Search implements Index.
func (c *ChromemIndex) Search(ctx context.Context, query string, k int) ([]Result, error) {
	results, err := c.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("dense: chromem query: %w", err)
	}
	return chromemResultsToResults(results), nil
}

// SearchFiltered implements Index using chromem's metadata filter.
func (c *ChromemIndex) SearchFiltered(ctx context.Context, query string, k int, field, value string) ([]Result, error) {
	results, err := c.collection.Query(ctx, query, k, map[string]string{field: value}, nil)
	if err != nil {
		return nil, fmt.Errorf("dense: chromem filtered query: %w", err)
	}
	return chromemResultsToResults(results), nil
}

func chromemResultsToResults(results []chromem.Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		out = append(out, Result{
			Doc:    document.Document{Content: r.Content, Metadata: meta},
			Score:  float64(r.Similarity),
			Scored: true,
		})
	}
	return out
}
