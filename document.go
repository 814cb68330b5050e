// Package retrieval implements the Hybrid Retrieval and Fusion Core: a
// request-scoped pipeline that normalizes a query, fans out to three
// dense vector indices, fuses dense and BM25 signal, reranks, expands
// case chunks to full text, orders by legal hierarchy, and formats a
// structured context for a generator model.
package retrieval

import "github.com/hanlease/retrieval-core/document"

// Document is the atomic retrievable unit. It is an alias of
// document.Document so that adapter packages (dense, rerank) can
// describe their inputs and outputs without importing this package.
type Document = document.Document

// SourceIndex enumerates the three collections the core retrieves
// from.
type SourceIndex = document.SourceIndex

const (
	SourceLaw  = document.SourceLaw
	SourceRule = document.SourceRule
	SourceCase = document.SourceCase
)

// Recognized Document.Metadata keys.
const (
	MetaChunkID  = document.MetaChunkID
	MetaID       = document.MetaID
	MetaSrcTitle = document.MetaSrcTitle
	MetaArticle  = document.MetaArticle
	MetaTitle    = document.MetaTitle
	MetaCaseNo   = document.MetaCaseNo
	MetaCaseName = document.MetaCaseName
	MetaPriority = document.MetaPriority
)

// priorityDefault is used when a document carries no recognized
// priority value.
const priorityDefault = 99

// priorityToSection maps the priority metadata value to the context
// formatter's section number, per the legal hierarchy: statutes take
// precedence over rules, which take precedence over cases.
func priorityToSection(p int) int {
	switch p {
	case 1, 2, 4, 5:
		return 1
	case 3, 6, 7, 8, 11:
		return 2
	default:
		return 3
	}
}

// metaString returns metadata[key] as a string, or "" if absent or
// not a string.
func metaString(meta map[string]any, key string) string {
	return document.MetaString(meta, key)
}
