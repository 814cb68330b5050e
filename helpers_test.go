package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeInt_CoercesMixedTypes(t *testing.T) {
	assert.Equal(t, 3, safeInt(3, 99))
	assert.Equal(t, 3, safeInt(int64(3), 99))
	assert.Equal(t, 3, safeInt(float64(3.7), 99))
	assert.Equal(t, 3, safeInt("3", 99))
	assert.Equal(t, 3, safeInt("3.9", 99))
	assert.Equal(t, 99, safeInt("not-a-number", 99))
	assert.Equal(t, 99, safeInt("", 99))
	assert.Equal(t, 99, safeInt(nil, 99))
	assert.Equal(t, 99, safeInt([]int{1}, 99))
}

func TestPriorityOf_DefaultsWhenAbsentOrUninterpretable(t *testing.T) {
	assert.Equal(t, priorityDefault, priorityOf(Document{}))
	assert.Equal(t, priorityDefault, priorityOf(Document{Metadata: map[string]any{MetaPriority: "???"}}))
	assert.Equal(t, 2, priorityOf(Document{Metadata: map[string]any{MetaPriority: 2}}))
	assert.Equal(t, 2, priorityOf(Document{Metadata: map[string]any{MetaPriority: "2"}}))
}

func TestTruncateText_AppendsEllipsisOnlyWhenTruncated(t *testing.T) {
	assert.Equal(t, "hello", truncateText("hello", 10))
	assert.Equal(t, "hel…", truncateText("hello", 3))
	assert.Equal(t, "hello", truncateText("hello", 0))
}

func TestFlatten_CollapsesWhitespaceAndNewlines(t *testing.T) {
	assert.Equal(t, "a b c", flatten("a\nb\r\nc"))
	assert.Equal(t, "a b", flatten("a   b"))
}

type fakeTokenCounter struct{}

// Count approximates one token per two runes, deterministic and cheap
// enough for exercising truncateByTokens's binary search.
func (fakeTokenCounter) Count(text string) int {
	return (len([]rune(text)) + 1) / 2
}

func TestTruncateByTokens_StopsAtBudget(t *testing.T) {
	var tc fakeTokenCounter
	s := strings.Repeat("가", 20) // 20 runes -> 10 tokens under fakeTokenCounter
	out := truncateByTokens(s, tc, 5)
	assert.LessOrEqual(t, tc.Count(out), 5+1) // allow the trailing ellipsis rune
	assert.True(t, strings.HasSuffix(out, "…"))

	untouched := truncateByTokens(s, tc, 10)
	assert.Equal(t, s, untouched)
}

func TestDedupeCandidates_KeepsFirstOccurrencePerKey(t *testing.T) {
	a := newCandidate(Document{Content: "body a", Metadata: map[string]any{MetaChunkID: "x"}})
	b := newCandidate(Document{Content: "body b (duplicate chunk_id)", Metadata: map[string]any{MetaChunkID: "x"}})
	c := newCandidate(Document{Content: "body c", Metadata: map[string]any{MetaChunkID: "y"}})

	out := dedupeCandidates([]candidate{a, b, c}, []string{"chunk_id", "id"})
	require.Len(t, out, 2)
	assert.Equal(t, "body a", out[0].doc.Content)
	assert.Equal(t, "body c", out[1].doc.Content)
}

func TestDedupeCandidates_FallsBackToContentHashWhenNoIdentityFields(t *testing.T) {
	a := newCandidate(Document{Content: "identical body"})
	b := newCandidate(Document{Content: "identical body"})
	c := newCandidate(Document{Content: "different body"})

	out := dedupeCandidates([]candidate{a, b, c}, []string{"chunk_id", "id"})
	assert.Len(t, out, 2)
}
