package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/classify"
	"github.com/mindstash/mindstash/internal/model"
)

type stubGateway struct {
	res model.ExtractionResult
	err error
}

func (s *stubGateway) ExtractItems(context.Context, string) (model.ExtractionResult, error) {
	return s.res, s.err
}

func newOfflineService(t *testing.T) *Service {
	t.Helper()
	return New(nil, classify.NewOffline(nil), 5, zerolog.Nop())
}

func TestNonEmptyInputAlwaysYieldsItems(t *testing.T) {
	s := newOfflineService(t)
	res, err := s.ExtractItems(context.Background(), "a single coherent thought about lighthouses")
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
}

func TestRunOnCaptureSplitsIntoSegments(t *testing.T) {
	s := newOfflineService(t)
	res, err := s.ExtractItems(context.Background(),
		"need to buy groceries and remind me to call the dentist, idea for a movie scene")
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	assert.Equal(t, model.CategoryTask, res.Items[0].Category)
	assert.Equal(t, model.CategoryReminder, res.Items[1].Category)
	assert.Equal(t, model.CategoryIdea, res.Items[2].Category)

	// Split occurred, so each segment carries compounded uncertainty.
	for _, it := range res.Items {
		assert.InDelta(t, 0.3*0.7, it.Confidence, 1e-9)
		assert.NotEmpty(t, it.RawText)
	}
	assert.Contains(t, res.Reasoning, "3 segments")
}

func TestSingleThoughtIsNotSplit(t *testing.T) {
	s := newOfflineService(t)
	res, err := s.ExtractItems(context.Background(), "what if the whole film takes place underwater")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	// No split, so the classifier's confidence passes through unchanged.
	assert.Equal(t, 0.3, res.Items[0].Confidence)
	assert.Contains(t, res.Reasoning, "single thought")
}

func TestSegmentCapFoldsOverflowIntoLast(t *testing.T) {
	s := newOfflineService(t)
	res, err := s.ExtractItems(context.Background(), "one, two, three, four, five, six, seven")
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	// Overflow folds into the final segment instead of being dropped.
	assert.Equal(t, "five, six, seven", res.Items[4].RawText)
}

func TestOnlineFailureFallsBackOffline(t *testing.T) {
	gw := &stubGateway{err: errors.New("gateway down")}
	s := New(gw, classify.NewOffline(nil), 5, zerolog.Nop())

	res, err := s.ExtractItems(context.Background(), "need to fix the fence and water the plants")
	require.NoError(t, err) // online failure never propagates
	require.Len(t, res.Items, 2)
}

func TestOnlineResultPassesThrough(t *testing.T) {
	gw := &stubGateway{res: model.ExtractionResult{
		Items: []model.ExtractedItem{{
			Category: model.CategoryTask, Title: "Fix fence", Urgency: model.UrgencyMedium,
			Confidence: 0.9, RawText: "fix the fence", Tags: []string{"home"},
		}},
		Reasoning: "one actionable task",
	}}
	s := New(gw, classify.NewOffline(nil), 5, zerolog.Nop())

	res, err := s.ExtractItems(context.Background(), "fix the fence")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 0.9, res.Items[0].Confidence)
}

func TestEmptyAndPunctuationOnlyInput(t *testing.T) {
	s := newOfflineService(t)

	res, err := s.ExtractItems(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotEmpty(t, res.Reasoning)

	res, err = s.ExtractItems(context.Background(), ".,.")
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotEmpty(t, res.Reasoning)
}
