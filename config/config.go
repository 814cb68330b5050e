// Package config loads and validates the tuning parameters of the
// Hybrid Retrieval and Fusion Core. It handles configuration loading
// and validation with support for multiple sources:
//   - Configuration files (JSON)
//   - Environment variables
//   - Programmatic defaults
//
// Settings are overridden in the following order (highest to lowest
// precedence): environment variables, configuration file, defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds every recognized tuning option of the retrieval core.
type Config struct {
	KLaw             int `json:"k_law" validate:"gt=0"`
	KRule            int `json:"k_rule" validate:"gt=0"`
	KCase            int `json:"k_case" validate:"gt=0"`
	SearchMultiplier int `json:"search_multiplier" validate:"gt=0"`
	CaseCandidateK   int `json:"case_candidate_k" validate:"gt=0"`
	CaseExpandTopN   int `json:"case_expand_top_n" validate:"gte=0"`
	CaseContextTopK  int `json:"case_context_top_k" validate:"gt=0"`

	EnableBM25      bool    `json:"enable_bm25"`
	BM25Algorithm   string  `json:"bm25_algorithm" validate:"oneof=okapi plus"`
	BM25K1          float64 `json:"bm25_k1" validate:"gt=0"`
	BM25B           float64 `json:"bm25_b" validate:"gte=0,lte=1"`
	BM25MaxDocChars int     `json:"bm25_max_doc_chars" validate:"gt=0"`
	BM25UseMorph    bool    `json:"bm25_use_morph"`

	EnableBM25Title        bool    `json:"enable_bm25_title"`
	BM25TitleField         string  `json:"bm25_title_field"`
	BM25TitleMaxChars      int     `json:"bm25_title_max_chars" validate:"gt=0"`
	HybridSparseTitleRatio float64 `json:"hybrid_sparse_title_ratio" validate:"gte=0,lte=1"`

	HybridFusion      string  `json:"hybrid_fusion" validate:"oneof=rrf rank_sum weighted"`
	HybridDenseWeight float64 `json:"hybrid_dense_weight" validate:"gt=0"`
	HybridSparseWeight float64 `json:"hybrid_sparse_weight" validate:"gt=0"`
	RRFK              float64 `json:"rrf_k" validate:"gte=1"`

	EnableRerank       bool    `json:"enable_rerank"`
	RerankThreshold    float64 `json:"rerank_threshold" validate:"gte=0,lte=1"`
	RerankMaxDocuments int     `json:"rerank_max_documents" validate:"gt=0"`
	RerankDocMaxChars  int     `json:"rerank_doc_max_chars" validate:"gt=0"`
	RerankModel        string  `json:"rerank_model"`

	SparseMode      string   `json:"sparse_mode" validate:"oneof=candidate global auto"`
	DedupeKeyFields []string `json:"dedupe_key_fields"`

	// SparseK{Law,Rule,Case} cap how many hits the global sparse
	// index's Search returns for that source. 0 means "inherited":
	// k_law or k_rule times search_multiplier, or for the case source
	// the larger of k_case times search_multiplier and case_candidate_k.
	SparseKLaw  int `json:"sparse_k_law" validate:"gte=0"`
	SparseKRule int `json:"sparse_k_rule" validate:"gte=0"`
	SparseKCase int `json:"sparse_k_case" validate:"gte=0"`

	IndexNames map[string]string `json:"index_names"`

	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries" validate:"gte=0"`
}

// Default returns the configuration defaults enumerated in the
// external-interfaces specification.
func Default() *Config {
	return &Config{
		KLaw:             7,
		KRule:            7,
		KCase:            3,
		SearchMultiplier: 4,
		CaseCandidateK:   40,
		CaseExpandTopN:   0, // 0 means "use KCase", resolved by EffectiveCaseExpandTopN
		CaseContextTopK:  50,

		EnableBM25:      true,
		BM25Algorithm:   "okapi",
		BM25K1:          1.8,
		BM25B:           0.85,
		BM25MaxDocChars: 4000,
		BM25UseMorph:    true,

		EnableBM25Title:        true,
		BM25TitleField:         "title",
		BM25TitleMaxChars:      512,
		HybridSparseTitleRatio: 0.6,

		HybridFusion:       "rrf",
		HybridDenseWeight:  0.5,
		HybridSparseWeight: 0.5,
		RRFK:               60,

		EnableRerank:       true,
		RerankThreshold:    0.2,
		RerankMaxDocuments: 80,
		RerankDocMaxChars:  2600,
		RerankModel:        "rerank-multilingual-v3.0",

		SparseMode:      "auto",
		DedupeKeyFields: []string{"chunk_id", "id"},
		SparseKLaw:      0,
		SparseKRule:     0,
		SparseKCase:     0,

		IndexNames: map[string]string{
			"law":  "law",
			"rule": "rule",
			"case": "case",
		},

		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// EffectiveCaseExpandTopN returns CaseExpandTopN if set, else KCase,
// per the configuration default "case_expand_top_n (= k_case)".
func (c *Config) EffectiveCaseExpandTopN() int {
	if c.CaseExpandTopN > 0 {
		return c.CaseExpandTopN
	}
	return c.KCase
}

var validate = validator.New()

// Validate checks the configuration and returns a descriptive error
// for the first violated constraint. Construction code should surface
// this as a ConfigInvalid error.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Load builds a Config from defaults, a discovered JSON file, and
// environment variable overrides, in that precedence order, then
// validates the result.
//
// Configuration file search paths:
//  1. $RAGCORE_CONFIG
//  2. ~/.ragcore/config.json
//  3. ~/.config/ragcore/config.json
//  4. ./ragcore.json
//
// Environment variable overrides:
//   - LAW_INDEX, RULE_INDEX, CASE_INDEX
//   - RAGCORE_ENABLE_RERANK ("true"/"false")
//   - RAGCORE_TIMEOUT (Go duration string, e.g. "30s")
func Load() (*Config, error) {
	cfg := Default()

	configFile := os.Getenv("RAGCORE_CONFIG")
	if configFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidates := []string{
				filepath.Join(home, ".ragcore", "config.json"),
				filepath.Join(home, ".config", "ragcore", "config.json"),
				"ragcore.json",
			}
			for _, candidate := range candidates {
				if _, err := os.Stat(candidate); err == nil {
					configFile = candidate
					break
				}
			}
		}
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if v := os.Getenv("LAW_INDEX"); v != "" {
		cfg.IndexNames["law"] = v
	}
	if v := os.Getenv("RULE_INDEX"); v != "" {
		cfg.IndexNames["rule"] = v
	}
	if v := os.Getenv("CASE_INDEX"); v != "" {
		cfg.IndexNames["case"] = v
	}
	if v := os.Getenv("RAGCORE_ENABLE_RERANK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EnableRerank = b
		}
	}
	if v := os.Getenv("RAGCORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to a JSON file at path, creating
// parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
