package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hanlease/retrieval-core/document"
)

// HTTPReranker is a generic JSON-over-HTTP cross-encoder client, built
// with the same raw net/http + encoding/json idiom the teacher
// lineage uses for its OpenAI embedding provider. No reranker/
// cross-encoder Go SDK appears anywhere in the corpus this module was
// grounded on, so the adapter speaks a narrow, documented JSON
// contract instead of a vendor SDK:
//
//	POST {Endpoint}
//	{"model": "...", "query": "...", "documents": ["...", ...]}
//	-> {"results": [{"index": 0, "relevance_score": 0.93}, ...]}
type HTTPReranker struct {
	apiKey   string
	client   *http.Client
	endpoint string
	model    string
}

// Config configures an HTTPReranker.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// New builds an HTTPReranker.
func New(cfg Config) (*HTTPReranker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rerank: API key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &HTTPReranker{
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
	}, nil
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank implements Reranker.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, docs []document.Document) ([]Result, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	body, err := json.Marshal(rerankRequest{Model: r.model, Query: query, Documents: texts})
	if err != nil {
		return nil, fmt.Errorf("rerank: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rerank: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank: call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank: status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("rerank: decode response: %w", err)
	}

	results := make([]Result, len(parsed.Results))
	for i, r := range parsed.Results {
		results[i] = Result{Index: r.Index, Score: r.RelevanceScore}
	}
	return results, nil
}
