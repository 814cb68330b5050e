package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/hanlease/retrieval-core/internal/ingestdoc"
)

// safeInt coerces a metadata value to an int, defaulting to def on any
// type it cannot interpret. The source data mixes integers, floats,
// and numeric strings in the priority field (and occasionally other
// fields), per the Design Notes' safe-integer-coercion resolution.
func safeInt(v any, def int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case float32:
		return int(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return def
	default:
		return def
	}
}

// priorityOf returns the document's priority, defaulting to
// priorityDefault when absent or uninterpretable.
func priorityOf(doc Document) int {
	if doc.Metadata == nil {
		return priorityDefault
	}
	v, ok := doc.Metadata[MetaPriority]
	if !ok {
		return priorityDefault
	}
	return safeInt(v, priorityDefault)
}

// truncateText truncates s to at most maxChars runes, appending an
// ellipsis when truncation occurred.
func truncateText(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars]) + "…"
}

// flatten replaces newlines with spaces, used when rendering a
// document body on a single reference line.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

// truncateByTokens trims s, rune by rune via binary search, until
// counter reports at most maxTokens tokens. Assumes s already passed
// through truncateText, so it only ever shortens further.
func truncateByTokens(s string, counter ingestdoc.TokenCounter, maxTokens int) string {
	if counter.Count(s) <= maxTokens {
		return s
	}
	r := []rune(s)
	lo, hi := 0, len(r)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if counter.Count(string(r[:mid])) <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(r[:lo]) + "…"
}

func contentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// dedupeCandidates removes candidates sharing a dedupe key, keeping
// the first occurrence (earlier entries win, preserving whatever
// ordering the caller already established). keyFields is
// Config.DedupeKeyFields, the ordered list of metadata fields that
// identify a document; see candidate.dedupeKey.
func dedupeCandidates(cands []candidate, keyFields []string) []candidate {
	seen := make(map[string]bool, len(cands))
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		key := c.dedupeKey(keyFields)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
