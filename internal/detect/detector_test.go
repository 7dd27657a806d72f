package detect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvelikov/fallax/internal/model"
)

type stubReasoner struct {
	candidates []model.CandidateFallacy
	err        error
}

func (s *stubReasoner) DetectFallacies(ctx context.Context, text string) ([]model.CandidateFallacy, error) {
	return s.candidates, s.err
}

func (s *stubReasoner) ExplainFallacy(ctx context.Context, kind, excerpt string) (*model.Explanation, error) {
	return nil, errors.New("not implemented")
}

func (s *stubReasoner) GenerateRewrite(ctx context.Context, text string, fallacies []model.DetectedFallacy) (*model.BalancedRewrite, error) {
	return nil, errors.New("not implemented")
}

func TestDetectValidPositionsWin(t *testing.T) {
	text := "you would say that, wouldn't you"
	stub := &stubReasoner{candidates: []model.CandidateFallacy{
		// Excerpt disagrees with the positions; positions are in bounds so
		// the actual text slice wins.
		{Kind: "ad hominem", Start: 0, End: 18, Excerpt: "something else entirely", RawConfidence: 80},
	}}

	got, err := NewDetector(stub).Detect(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "you would say that", got[0].Excerpt)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, 18, got[0].End)
}

func TestDetectExcerptSearchWhenPositionsBad(t *testing.T) {
	text := "first part. you would say that. last part."
	stub := &stubReasoner{candidates: []model.CandidateFallacy{
		{Kind: "ad hominem", Start: 500, End: 520, Excerpt: "you would say that", RawConfidence: 75},
	}}

	got, err := NewDetector(stub).Detect(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].Start)
	assert.Equal(t, 30, got[0].End)
	assert.Equal(t, "you would say that", text[got[0].Start:got[0].End])
}

func TestDetectParaphrasedExcerptKeepsZeroSpan(t *testing.T) {
	text := "the actual argument text"
	stub := &stubReasoner{candidates: []model.CandidateFallacy{
		{Kind: "straw man", Start: -1, End: -1, Excerpt: "a paraphrase not in the text", RawConfidence: 60},
	}}

	got, err := NewDetector(stub).Detect(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, 0, got[0].End)
	assert.Equal(t, "a paraphrase not in the text", got[0].Excerpt)
}

func TestDetectDropsUnlocatable(t *testing.T) {
	stub := &stubReasoner{candidates: []model.CandidateFallacy{
		{Kind: "red herring", Start: -1, End: -1, Excerpt: "", RawConfidence: 50},
		{Kind: "", Start: 0, End: 5, Excerpt: "valid", RawConfidence: 50},
	}}

	got, err := NewDetector(stub).Detect(context.Background(), "some argument text")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectClampsConfidence(t *testing.T) {
	text := "abcdefghij"
	stub := &stubReasoner{candidates: []model.CandidateFallacy{
		{Kind: "a", Start: 0, End: 5, RawConfidence: 150},
		{Kind: "b", Start: 5, End: 10, RawConfidence: -5},
		{Kind: "c", Start: 0, End: 10, RawConfidence: 100},
	}}

	got, err := NewDetector(stub).Detect(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 100, got[0].RawConfidence)
	assert.Equal(t, 0, got[1].RawConfidence)
	assert.Equal(t, 100, got[2].RawConfidence)
}

func TestDetectPropagatesErrors(t *testing.T) {
	stub := &stubReasoner{err: &model.TransportError{Op: "detect", Err: errors.New("down")}}

	_, err := NewDetector(stub).Detect(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, model.IsTransport(err))
}
