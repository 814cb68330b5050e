package retrieval

// Reserved in-flight annotation keys, all prefixed with __ per the
// data model. Rather than mutate a caller-supplied Document.Metadata
// map, the core carries these in a separate per-candidate map
// (candidate.ann) that travels with the Document through the
// request's stages.
const (
	annSourceIndex   = "__source_index"
	annDenseScore    = "__dense_score"
	annDenseRank     = "__dense_rank"
	annBM25Score     = "__bm25_score"
	annBM25Rank      = "__bm25_rank"
	annBM25TitleSc   = "__bm25_title_score"
	annBM25TitleRank = "__bm25_title_rank"
	annHybridScore   = "__hybrid_score"
	annHybridRank    = "__hybrid_rank"
	annExpanded      = "__expanded"
)

// candidate pairs a Document with its in-flight annotations for the
// duration of one request. The Document itself is never mutated.
type candidate struct {
	doc Document
	ann map[string]any
}

func newCandidate(doc Document) candidate {
	return candidate{doc: doc, ann: map[string]any{}}
}

func (c *candidate) set(key string, value any) { c.ann[key] = value }

func (c *candidate) getInt(key string) (int, bool) {
	v, ok := c.ann[key]
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

func (c *candidate) getFloat(key string) (float64, bool) {
	v, ok := c.ann[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (c *candidate) getBool(key string) bool {
	v, ok := c.ann[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (c *candidate) getString(key string) string {
	v, ok := c.ann[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// source returns the candidate's recognized source index.
func (c *candidate) source() SourceIndex {
	return SourceIndex(c.getString(annSourceIndex))
}

// dedupeKey returns the identity used for deduplication: the first
// metadata field in keyFields (Config.DedupeKeyFields) that the
// candidate has a non-empty value for, else a content hash.
func (c *candidate) dedupeKey(keyFields []string) string {
	for _, f := range keyFields {
		if v := metaString(c.doc.Metadata, f); v != "" {
			return f + ":" + v
		}
	}
	return "content:" + contentHash(c.doc.Content)
}
