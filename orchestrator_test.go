package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanlease/retrieval-core/config"
	"github.com/hanlease/retrieval-core/dense"
	"github.com/hanlease/retrieval-core/dictionary"
	"github.com/hanlease/retrieval-core/document"
	"github.com/hanlease/retrieval-core/rerank"
)

// echoGenerator returns a fixed answer and, when captured is non-nil,
// records the rendered context it was called with so tests can assert
// on the Context Formatter's output without exposing it through the
// public Result type.
type echoGenerator struct {
	captured      *string
	capturedQuery *string
	err           error
}

func (g echoGenerator) Generate(_ context.Context, query, renderedContext string, _ bool) (string, error) {
	if g.captured != nil {
		*g.captured = renderedContext
	}
	if g.capturedQuery != nil {
		*g.capturedQuery = query
	}
	if g.err != nil {
		return "", g.err
	}
	return "ok", nil
}

type dictNormalizer struct{}

func (dictNormalizer) Normalize(_ context.Context, text string) (string, error) {
	out := text
	for k, v := range dictionary.KeywordDict {
		if strings.Contains(out, k) {
			out = strings.ReplaceAll(out, k, k+"("+v+")")
		}
	}
	return out, nil
}

type failingReranker struct{}

func (failingReranker) Rerank(context.Context, string, []Document) ([]rerank.Result, error) {
	return nil, fmt.Errorf("reranker unreachable")
}

func newTestCore(t *testing.T, cfg *config.Config, opts ...Option) *Core {
	t.Helper()
	base := []Option{
		WithConfig(cfg),
		WithGenerator(echoGenerator{}),
	}
	core, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return core
}

// S1 — plain-law question, no upload.
func TestAnswerWithTrace_PlainLawQuestion(t *testing.T) {
	lawIdx := dense.NewMemoryIndex()
	lawIdx.Add(document.Document{
		Content: "임대인은 임대차 종료 시 보증금을 임차인에게 반환하여야 한다.",
		Metadata: map[string]any{
			document.MetaChunkID:  "law-1",
			document.MetaSrcTitle: "주택임대차보호법",
			document.MetaArticle:  "제3조의2",
			document.MetaTitle:    "보증금 회수",
			document.MetaPriority: 1,
		},
	})
	caseIdx := dense.NewMemoryIndex()
	caseIdx.Add(document.Document{
		Content: "임대인이 보증금 반환을 지체한 사안에서 지연손해금 지급을 명한 판결.",
		Metadata: map[string]any{
			document.MetaChunkID:  "case-1",
			document.MetaSrcTitle: "대법원 판결",
			document.MetaCaseNo:   "2020다12345",
			document.MetaCaseName: "보증금반환청구",
			document.MetaTitle:    "보증금반환청구",
		},
	})

	cfg := config.Default()
	cfg.EnableRerank = false

	core := newTestCore(t, cfg,
		WithDenseIndex(SourceLaw, lawIdx),
		WithDenseIndex(SourceRule, dense.NewMemoryIndex()),
		WithDenseIndex(SourceCase, caseIdx),
		WithNormalizer(dictNormalizer{}),
	)

	result, err := core.AnswerWithTrace(context.Background(), "집주인이 보증금을 안 돌려줘요", QueryOptions{})
	require.NoError(t, err)

	require.Contains(t, result.NormalizedQuery, "임대인")
	require.Contains(t, result.NormalizedQuery, "보증금")

	var sawSection1, sawCaseNo bool
	for _, d := range result.Docs {
		if priorityToSection(priorityOf(d)) == 1 {
			sawSection1 = true
		}
		if metaString(d.Metadata, MetaCaseNo) != "" {
			sawCaseNo = true
		}
	}
	require.True(t, sawSection1, "expected at least one SECTION 1 document")
	require.True(t, sawCaseNo, "expected at least one case document with case_no set")
}

// S2 — all three sources empty.
func TestAnswerWithTrace_AllSourcesEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.EnableRerank = false
	core := newTestCore(t, cfg,
		WithDenseIndex(SourceLaw, dense.NewMemoryIndex()),
		WithDenseIndex(SourceRule, dense.NewMemoryIndex()),
		WithDenseIndex(SourceCase, dense.NewMemoryIndex()),
	)

	result, err := core.AnswerWithTrace(context.Background(), "아무 관련 없는 질문", QueryOptions{SkipNormalization: true})
	require.NoError(t, err)
	require.Equal(t, noResultAnswer, result.Answer)
	require.Equal(t, []string{}, result.References)
	require.Empty(t, result.Docs)
}

// S3 — reranker down: pre-rerank fused order is kept, no error
// surfaces.
func TestAnswerWithTrace_RerankerDown(t *testing.T) {
	lawIdx := dense.NewMemoryIndex()
	lawIdx.Add(document.Document{
		Content:  "임대인 보증금 반환 의무에 관한 본문 설명입니다.",
		Metadata: map[string]any{document.MetaChunkID: "doc-a", document.MetaSrcTitle: "doc-A"},
	})
	lawIdx.Add(document.Document{
		Content:  "임대인에 대한 일반적인 설명으로 보증금 언급이 없습니다.",
		Metadata: map[string]any{document.MetaChunkID: "doc-b", document.MetaSrcTitle: "doc-B"},
	})

	cfg := config.Default()
	cfg.EnableRerank = true
	cfg.EnableBM25 = false
	cfg.KLaw = 2
	cfg.KRule = 2
	cfg.KCase = 2

	core := newTestCore(t, cfg,
		WithDenseIndex(SourceLaw, lawIdx),
		WithDenseIndex(SourceRule, dense.NewMemoryIndex()),
		WithDenseIndex(SourceCase, dense.NewMemoryIndex()),
		WithReranker(failingReranker{}),
	)

	result, err := core.AnswerWithTrace(context.Background(), "임대인 보증금", QueryOptions{SkipNormalization: true})
	require.NoError(t, err)
	require.Len(t, result.Docs, 2)
	require.Equal(t, "doc-A", metaString(result.Docs[0].Metadata, MetaSrcTitle))
	require.Equal(t, "doc-B", metaString(result.Docs[1].Metadata, MetaSrcTitle))
}

// S4 — case expansion reassembles four chunks sharing a case_no, in
// chunk_id order.
func TestAnswerWithTrace_CaseExpansion(t *testing.T) {
	caseIdx := dense.NewMemoryIndex()
	chunkBodies := map[string]string{
		"d": "넷째 문단 - 임대차 판례 결론부.",
		"b": "둘째 문단 - 임대차 판례 쟁점.",
		"a": "첫째 문단 - 임대차 판례 사실관계.",
		"c": "셋째 문단 - 임대차 판례 법리.",
	}
	for id, body := range chunkBodies {
		caseIdx.Add(document.Document{
			Content: body,
			Metadata: map[string]any{
				document.MetaChunkID:  id,
				document.MetaCaseNo:   "2020다12345",
				document.MetaCaseName: "테스트 판례",
				document.MetaSrcTitle: "대법원 판결",
			},
		})
	}

	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.KCase = 1
	cfg.CaseExpandTopN = 1

	core := newTestCore(t, cfg,
		WithDenseIndex(SourceLaw, dense.NewMemoryIndex()),
		WithDenseIndex(SourceRule, dense.NewMemoryIndex()),
		WithDenseIndex(SourceCase, caseIdx),
	)

	result, err := core.AnswerWithTrace(context.Background(), "임대차 판례", QueryOptions{SkipNormalization: true})
	require.NoError(t, err)
	require.Len(t, result.Docs, 1)

	content := result.Docs[0].Content
	require.True(t, strings.HasPrefix(content, "[판례 전문: 테스트 판례]\n"))
	aIdx := strings.Index(content, chunkBodies["a"])
	bIdx := strings.Index(content, chunkBodies["b"])
	cIdx := strings.Index(content, chunkBodies["c"])
	dIdx := strings.Index(content, chunkBodies["d"])
	require.True(t, aIdx >= 0 && bIdx > aIdx && cIdx > bIdx && dIdx > cIdx, "chunks must appear in chunk_id order a<b<c<d")
}

// S5 — priority ordering.
func TestAnswerWithTrace_PriorityOrdering(t *testing.T) {
	lawIdx := dense.NewMemoryIndex()
	priorities := []int{9, 1, 5, 3}
	for i, p := range priorities {
		lawIdx.Add(document.Document{
			Content: "임대차 질문과 관련된 공통 키워드 본문",
			Metadata: map[string]any{
				document.MetaChunkID:  fmt.Sprintf("doc-%d", i),
				document.MetaSrcTitle: fmt.Sprintf("doc-%d", i),
				document.MetaPriority: p,
			},
		})
	}

	cfg := config.Default()
	cfg.EnableRerank = false
	cfg.KLaw = 4

	core := newTestCore(t, cfg,
		WithDenseIndex(SourceLaw, lawIdx),
		WithDenseIndex(SourceRule, dense.NewMemoryIndex()),
		WithDenseIndex(SourceCase, dense.NewMemoryIndex()),
	)

	result, err := core.AnswerWithTrace(context.Background(), "임대차 질문", QueryOptions{SkipNormalization: true})
	require.NoError(t, err)
	require.Len(t, result.Docs, 4)

	got := make([]int, len(result.Docs))
	for i, d := range result.Docs {
		got[i] = priorityOf(d)
	}
	require.Equal(t, []int{1, 3, 5, 9}, got)
}

// S6 — contract mode renders a SECTION 0 block ahead of the other
// sections.
func TestAnswerWithTrace_ContractMode(t *testing.T) {
	lawIdx := dense.NewMemoryIndex()
	lawIdx.Add(document.Document{
		Content: "임대인은 보증금을 반환해야 한다.",
		Metadata: map[string]any{
			document.MetaChunkID:  "law-1",
			document.MetaSrcTitle: "주택임대차보호법",
			document.MetaArticle:  "제3조의2",
			document.MetaPriority: 1,
		},
	})

	var captured string
	cfg := config.Default()
	cfg.EnableRerank = false

	core, err := New(
		WithConfig(cfg),
		WithGenerator(echoGenerator{captured: &captured}),
		WithDenseIndex(SourceLaw, lawIdx),
		WithDenseIndex(SourceRule, dense.NewMemoryIndex()),
		WithDenseIndex(SourceCase, dense.NewMemoryIndex()),
	)
	require.NoError(t, err)

	_, err = core.AnswerWithTrace(context.Background(), "임대인 보증금", QueryOptions{
		SkipNormalization: true,
		ExtraContext:      "계약서 본문: 임대차 기간은 2년으로 한다.",
		UseContractMode:   true,
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(captured, "## [SECTION 0: 사용자 계약서 OCR (최우선 참고)]\n계약서 본문: 임대차 기간은 2년으로 한다."))
	require.Contains(t, captured, "## [SECTION 1: 핵심 법령 (최우선 법적 근거)]")
}
