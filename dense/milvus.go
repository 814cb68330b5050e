package dense

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/hanlease/retrieval-core/document"
)

// Embedder turns query text into the vector a Milvus/chromem
// collection was indexed on. The embedding model itself is an
// external collaborator out of this core's scope; Embedder is the
// narrow seam the adapter calls through.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// MilvusIndex wraps github.com/milvus-io/milvus-sdk-go/v2, the
// teacher lineage's production vector database client, narrowed to
// the single collection backing one SourceIndex (law, rule, or case).
type MilvusIndex struct {
	cli        client.Client
	collection string
	vectorField string
	outputFields []string
	metricType  entity.MetricType
	embedder    Embedder
}

// MilvusConfig configures a MilvusIndex.
type MilvusConfig struct {
	Address      string
	Collection   string
	VectorField  string
	OutputFields []string
	MetricType   entity.MetricType
	Embedder     Embedder
}

// NewMilvusIndex connects to a Milvus instance and wraps the named
// collection.
func NewMilvusIndex(ctx context.Context, cfg MilvusConfig) (*MilvusIndex, error) {
	cli, err := client.NewGrpcClient(ctx, cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("dense: connect milvus: %w", err)
	}
	metric := cfg.MetricType
	if metric == "" {
		metric = entity.L2
	}
	return &MilvusIndex{
		cli:          cli,
		collection:   cfg.Collection,
		vectorField:  cfg.VectorField,
		outputFields: cfg.OutputFields,
		metricType:   metric,
		embedder:     cfg.Embedder,
	}, nil
}

func (m *MilvusIndex) search(ctx context.Context, query string, k int, expr string) ([]Result, error) {
	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dense: embed query: %w", err)
	}
	vectors := []entity.Vector{entity.FloatVector(toFloat32(vec))}
	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("dense: search param: %w", err)
	}
	searchResult, err := m.cli.Search(ctx, m.collection, nil, expr, m.outputFields, vectors, m.vectorField, m.metricType, k, sp)
	if err != nil {
		return nil, fmt.Errorf("dense: search: %w", err)
	}

	var results []Result
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			results = append(results, Result{
				Doc:    rowToDocument(sr, i, m.outputFields),
				Score:  float64(sr.Scores[i]),
				Scored: true,
			})
		}
	}
	return results, nil
}

// Search implements Index.
func (m *MilvusIndex) Search(ctx context.Context, query string, k int) ([]Result, error) {
	return m.search(ctx, query, k, "")
}

// SearchFiltered implements Index using a Milvus boolean expression
// equality filter, the mechanism the case index needs to fetch every
// chunk sharing a case_no.
func (m *MilvusIndex) SearchFiltered(ctx context.Context, query string, k int, field, value string) ([]Result, error) {
	expr := fmt.Sprintf("%s == %q", field, value)
	return m.search(ctx, query, k, expr)
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// rowToDocument reconstructs a document.Document from one row of a
// Milvus search result's field data.
func rowToDocument(sr client.SearchResult, row int, outputFields []string) document.Document {
	meta := make(map[string]any, len(outputFields))
	content := ""
	for _, f := range sr.Fields {
		v, ok := fieldValueAt(f, row)
		if !ok {
			continue
		}
		if f.Name() == "content" {
			if s, ok := v.(string); ok {
				content = s
			}
			continue
		}
		meta[f.Name()] = v
	}
	return document.Document{Content: content, Metadata: meta}
}

// fieldValueAt extracts the row-th value from a Milvus column field,
// handling the string and varchar cases this adapter's metadata
// columns use.
func fieldValueAt(f entity.Column, row int) (any, bool) {
	if row < 0 || row >= f.Len() {
		return nil, false
	}
	v, err := f.Get(row)
	if err != nil {
		return nil, false
	}
	return v, true
}
