package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanlease/retrieval-core/config"
)

func withDenseRank(chunkID, content string, rank int) candidate {
	cd := newCandidate(Document{Content: content, Metadata: map[string]any{MetaChunkID: chunkID}})
	cd.set(annDenseRank, rank)
	return cd
}

func TestFuseSource_RanksAreDenseAndSourceTagged(t *testing.T) {
	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.EnableBM25 = false
	core := newTestCore(t, cfg)

	cands := []candidate{
		withDenseRank("a", "임대인 보증금 반환", 2),
		withDenseRank("b", "임대인 보증금 관련 설명", 1),
		withDenseRank("c", "관계없는 내용", 3),
	}

	out := core.fuseSource(SourceLaw, "임대인 보증금", cands)
	require.Len(t, out, 3)

	seen := make(map[int]bool)
	for _, cd := range out {
		assert.Equal(t, SourceLaw, cd.source())
		r, ok := cd.getInt(annHybridRank)
		require.True(t, ok)
		seen[r] = true
	}
	assert.Len(t, seen, 3, "hybrid ranks must be dense over the fused set")

	// With only a dense channel, fusion must preserve the dense order.
	assert.Equal(t, "b", metaString(out[0].doc.Metadata, MetaChunkID))
}

func TestFuseSource_EmptyInputReturnsEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.EnableRerank = false
	core := newTestCore(t, cfg)
	out := core.fuseSource(SourceLaw, "query", nil)
	assert.Empty(t, out)
}

func TestFuseSource_DedupesBeforeFusing(t *testing.T) {
	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.EnableBM25 = false
	core := newTestCore(t, cfg)

	cands := []candidate{
		withDenseRank("dup", "본문", 1),
		withDenseRank("dup", "본문 (동일 청크)", 2),
	}
	out := core.fuseSource(SourceLaw, "query", cands)
	assert.Len(t, out, 1)
}

func TestResolveSparseMode_AutoFallsBackToCandidateWithoutBuiltIndex(t *testing.T) {
	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.SparseMode = "auto"
	core := newTestCore(t, cfg)
	assert.Equal(t, "candidate", core.resolveSparseMode(SourceLaw))
}

func TestResolveSparseMode_ExplicitModesAreTakenLiterally(t *testing.T) {
	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.SparseMode = "global"
	core := newTestCore(t, cfg)
	assert.Equal(t, "global", core.resolveSparseMode(SourceLaw))

	cfg2 := config.Default()
	cfg2.EnableRerank = false
	cfg2.SparseMode = "candidate"
	core2 := newTestCore(t, cfg2)
	assert.Equal(t, "candidate", core2.resolveSparseMode(SourceLaw))
}
