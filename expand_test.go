package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanlease/retrieval-core/config"
	"github.com/hanlease/retrieval-core/dense"
	"github.com/hanlease/retrieval-core/document"
)

// erroringCaseIndex fails every SearchFiltered call, standing in for a
// partial backend failure during case expansion.
type erroringCaseIndex struct{}

func (erroringCaseIndex) Search(context.Context, string, int) ([]dense.Result, error) {
	return nil, errors.New("boom")
}

func (erroringCaseIndex) SearchFiltered(context.Context, string, int, string, string) ([]dense.Result, error) {
	return nil, errors.New("boom")
}

func newExpandTestCore(t *testing.T, caseIdx dense.Index, topN int) *Core {
	t.Helper()
	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.CaseExpandTopN = topN
	return newTestCore(t, cfg, WithDenseIndex(SourceCase, caseIdx))
}

func TestExpandCases_ReassemblesDistinctCasesUpToTopN(t *testing.T) {
	caseIdx := dense.NewMemoryIndex()
	caseIdx.Add(
		document.Document{Content: "사건 A 본문 1", Metadata: map[string]any{document.MetaChunkID: "a1", document.MetaCaseNo: "case-A"}},
		document.Document{Content: "사건 A 본문 2", Metadata: map[string]any{document.MetaChunkID: "a2", document.MetaCaseNo: "case-A"}},
		document.Document{Content: "사건 B 본문 1", Metadata: map[string]any{document.MetaChunkID: "b1", document.MetaCaseNo: "case-B"}},
	)
	core := newExpandTestCore(t, caseIdx, 2)

	seedA := newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-A"}})
	seedB := newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-B"}})

	out := core.expandCases(context.Background(), "사건", []candidate{seedA, seedB})
	require.Len(t, out, 2)
	for _, cd := range out {
		assert.True(t, cd.getBool(annExpanded))
	}
}

func TestExpandCases_DedupesRepeatedCaseNumbers(t *testing.T) {
	caseIdx := dense.NewMemoryIndex()
	caseIdx.Add(document.Document{Content: "사건 A 본문", Metadata: map[string]any{document.MetaChunkID: "a1", document.MetaCaseNo: "case-A"}})
	core := newExpandTestCore(t, caseIdx, 5)

	seeds := []candidate{
		newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-A"}}),
		newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-A"}}),
	}
	out := core.expandCases(context.Background(), "사건", seeds)
	assert.Len(t, out, 1, "repeated case_no must only be expanded once")
}

func TestExpandCases_IsIdempotentOnAlreadyExpandedCandidates(t *testing.T) {
	caseIdx := dense.NewMemoryIndex()
	caseIdx.Add(document.Document{Content: "사건 A 본문", Metadata: map[string]any{document.MetaChunkID: "a1", document.MetaCaseNo: "case-A"}})
	core := newExpandTestCore(t, caseIdx, 5)

	first := core.expandCases(context.Background(), "사건", []candidate{
		newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-A"}}),
	})
	require.Len(t, first, 1)

	second := core.expandCases(context.Background(), "사건", first)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].doc.Content, second[0].doc.Content)
}

func TestExpandCases_FallsBackToUnexpandedChunkOnFailure(t *testing.T) {
	core := newExpandTestCore(t, erroringCaseIndex{}, 3)

	seed := newCandidate(document.Document{
		Content:  "사건 A 원본 청크",
		Metadata: map[string]any{document.MetaChunkID: "a1", document.MetaCaseNo: "case-A"},
	})
	out := core.expandCases(context.Background(), "사건", []candidate{seed})
	require.Len(t, out, 1, "a failed expansion must still surface the original chunk, not drop it")
	assert.Equal(t, "사건 A 원본 청크", out[0].doc.Content)
	assert.False(t, out[0].getBool(annExpanded))
}

func TestExpandCases_CapsResultAtKCase(t *testing.T) {
	caseIdx := dense.NewMemoryIndex()
	caseIdx.Add(
		document.Document{Content: "사건 A", Metadata: map[string]any{document.MetaChunkID: "a1", document.MetaCaseNo: "case-A"}},
		document.Document{Content: "사건 B", Metadata: map[string]any{document.MetaChunkID: "b1", document.MetaCaseNo: "case-B"}},
		document.Document{Content: "사건 C", Metadata: map[string]any{document.MetaChunkID: "c1", document.MetaCaseNo: "case-C"}},
		document.Document{Content: "사건 D", Metadata: map[string]any{document.MetaChunkID: "d1", document.MetaCaseNo: "case-D"}},
	)
	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.KCase = 2
	cfg.CaseExpandTopN = 4 // explicitly wider than k_case
	core := newTestCore(t, cfg, WithDenseIndex(SourceCase, caseIdx))

	seeds := []candidate{
		newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-A"}}),
		newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-B"}}),
		newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-C"}}),
		newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-D"}}),
	}
	out := core.expandCases(context.Background(), "사건", seeds)
	assert.Len(t, out, 2, "case_expand_top_n > k_case must still cap the final slice at k_case")
}

func TestExpandOneCase_SortsAndDedupesChunksByChunkID(t *testing.T) {
	caseIdx := dense.NewMemoryIndex()
	caseIdx.Add(
		document.Document{Content: "두번째", Metadata: map[string]any{document.MetaChunkID: "2", document.MetaCaseNo: "case-A", document.MetaCaseName: "테스트"}},
		document.Document{Content: "첫번째", Metadata: map[string]any{document.MetaChunkID: "1", document.MetaCaseNo: "case-A", document.MetaCaseName: "테스트"}},
		document.Document{Content: "두번째 중복", Metadata: map[string]any{document.MetaChunkID: "2", document.MetaCaseNo: "case-A", document.MetaCaseName: "테스트"}},
	)
	core := newExpandTestCore(t, caseIdx, 1)

	seed := newCandidate(document.Document{Metadata: map[string]any{document.MetaCaseNo: "case-A", document.MetaCaseName: "테스트"}})
	expanded, err := core.expandOneCase(context.Background(), "사건", seed)
	require.NoError(t, err)

	content := expanded.doc.Content
	require.True(t, strings.HasPrefix(content, "[판례 전문: 테스트]\n"))
	firstIdx := strings.Index(content, "첫번째")
	secondIdx := strings.Index(content, "두번째")
	require.True(t, firstIdx >= 0 && secondIdx > firstIdx)
	assert.Equal(t, 1, strings.Count(content, "두번째"), "the duplicate chunk_id=2 entry must be deduped")
}
