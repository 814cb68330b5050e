package dense

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hanlease/retrieval-core/document"
)

// MemoryIndex is an in-memory Index, grounded on the teacher lineage's
// MemoryDB linear-scan search. It exists for tests and local
// development: it has no real embedding model behind it (the
// embedding model is an external collaborator out of this core's
// scope), so "similarity" is a simple token-overlap score over
// Content — good enough to produce a stable, inspectable ordering for
// fakes, not a production ranking function.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []document.Document
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add appends documents to the index.
func (m *MemoryIndex) Add(docs ...document.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, docs...)
}

func tokenOverlap(query, content string) float64 {
	qTokens := strings.Fields(strings.ToLower(query))
	if len(qTokens) == 0 {
		return 0
	}
	lowerContent := strings.ToLower(content)
	var hits float64
	for _, t := range qTokens {
		if strings.Contains(lowerContent, t) {
			hits++
		}
	}
	return hits / float64(len(qTokens))
}

// Search implements Index by scoring every document against query
// with a token-overlap heuristic and returning the top k descending.
func (m *MemoryIndex) Search(ctx context.Context, query string, k int) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Result, 0, len(m.docs))
	for _, d := range m.docs {
		results = append(results, Result{Doc: d, Score: tokenOverlap(query, d.Content), Scored: true})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// SearchFiltered implements Index, narrowing the linear scan to
// documents whose metadata[field] equals value before scoring.
func (m *MemoryIndex) SearchFiltered(ctx context.Context, query string, k int, field, value string) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []document.Document
	for _, d := range m.docs {
		if document.MetaString(d.Metadata, field) == value {
			filtered = append(filtered, d)
		}
	}
	results := make([]Result, 0, len(filtered))
	for _, d := range filtered {
		results = append(results, Result{Doc: d, Score: tokenOverlap(query, d.Content), Scored: true})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}
