package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanlease/retrieval-core/tokenizer"
)

func testParams() Params {
	return Params{
		K1:          1.8,
		B:           0.85,
		Algorithm:   Okapi,
		MaxDocChars: 4000,
		Tokenizer:   tokenizer.NewRegexTokenizer(1),
	}
}

func TestFormulaScorer_DeterministicAcrossRepeatedCalls(t *testing.T) {
	s := NewScorer(testParams())
	docs := []string{
		"임대인은 임차인에게 보증금을 반환하여야 한다",
		"임차인은 차임을 지급할 의무가 있다",
		"관계없는 문서 내용입니다",
	}
	first := s.ScoreCandidates("임대인 보증금 반환", docs)
	second := s.ScoreCandidates("임대인 보증금 반환", docs)
	require.Equal(t, first, second)
}

func TestFormulaScorer_MoreOverlapScoresHigher(t *testing.T) {
	s := NewScorer(testParams())
	docs := []string{
		"임대인은 임차인에게 보증금 반환 의무를 진다",
		"관계없는 문서 내용입니다",
	}
	scores := s.ScoreCandidates("임대인 보증금 반환", docs)
	require.Len(t, scores, 2)
	assert.Greater(t, scores[0], scores[1])
}

func TestFormulaScorer_EmptyQueryOrCorpusScoresZero(t *testing.T) {
	s := NewScorer(testParams())
	assert.Equal(t, []float64{0, 0}, s.ScoreCandidates("", []string{"a", "b"}))
	assert.Equal(t, []float64{}, s.ScoreCandidates("query", nil))
}

func TestFormulaScorer_QueryTermFrequencyBoostsRepeatedTerms(t *testing.T) {
	s := NewScorer(testParams())
	doc := []string{"보증금 보증금 보증금 반환 의무"}

	single := s.ScoreCandidates("보증금", doc)
	repeated := s.ScoreCandidates("보증금 보증금 보증금", doc)

	require.Len(t, single, 1)
	require.Len(t, repeated, 1)
	assert.Greater(t, repeated[0], single[0], "repeating a query term should raise its score via the qf boost")
}

func TestNewLibraryScorer_RejectsInvalidParams(t *testing.T) {
	_, err := NewLibraryScorer(Params{K1: 0, B: 0.5})
	assert.Error(t, err)

	_, err = NewLibraryScorer(Params{K1: 1.2, B: 1.5})
	assert.Error(t, err)

	s, err := NewLibraryScorer(Params{K1: 1.2, B: 0.75, MaxDocChars: 100, Tokenizer: tokenizer.NewRegexTokenizer(1)})
	require.NoError(t, err)
	require.NotNil(t, s)
}
