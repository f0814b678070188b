package plagiarism

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proctoriq/proctoriq/internal/index"
	"github.com/proctoriq/proctoriq/internal/models"
)

type stubIndex struct {
	neighbors []index.Neighbor
	err       error
	queries   int
}

func (s *stubIndex) Query(_ context.Context, _ string, _ int) ([]index.Neighbor, error) {
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	return s.neighbors, nil
}

func (s *stubIndex) Upsert(_ context.Context, _ models.Submission) error { return nil }

func newTestMatcher(idx index.Index) *CrossMatcher {
	return NewCrossMatcher(DefaultThresholds(), idx, 50, 100, 50, 5)
}

func TestMatchExcludesOwnSubmission(t *testing.T) {
	sub := models.Submission{ID: "mine", Student: "Dana", Text: paraphraseA}
	idx := &stubIndex{neighbors: []index.Neighbor{
		{SubmissionID: "mine", Student: "Dana", Content: paraphraseA, Certainty: 0.99},
		{SubmissionID: "theirs", Student: "Robin", Content: paraphraseA, Certainty: 0.98},
	}}

	matches, checked := newTestMatcher(idx).Match(context.Background(), sub)

	assert.Equal(t, 1, checked)
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "theirs", m.CounterpartID)
	assert.Equal(t, "Robin", m.CounterpartLabel)
	assert.Equal(t, 100.0, m.SimilarityPct)
	assert.Equal(t, models.MatchCrossSubmission, m.Kind)
	assert.True(t, m.Flagged)
}

func TestMatchGroupsChunksBySubmission(t *testing.T) {
	// two chunks of the same counterpart reassemble into one comparison
	half := len(paraphraseA) / 2
	sub := models.Submission{ID: "mine", Text: paraphraseA}
	idx := &stubIndex{neighbors: []index.Neighbor{
		{SubmissionID: "theirs", Student: "Robin", Content: paraphraseA[:half]},
		{SubmissionID: "theirs", Student: "Robin", Content: paraphraseA[half:]},
	}}

	matches, checked := newTestMatcher(idx).Match(context.Background(), sub)

	assert.Equal(t, 1, checked)
	require.Len(t, matches, 1)
	assert.Greater(t, matches[0].SimilarityPct, 90.0)
}

func TestMatchBelowReportThresholdDropped(t *testing.T) {
	sub := models.Submission{ID: "mine", Text: unrelatedA}
	idx := &stubIndex{neighbors: []index.Neighbor{
		{SubmissionID: "theirs", Student: "Robin", Content: unrelatedB},
	}}

	matches, checked := newTestMatcher(idx).Match(context.Background(), sub)

	assert.Equal(t, 1, checked)
	assert.Empty(t, matches)
}

func TestMatchIndexUnavailable(t *testing.T) {
	sub := models.Submission{ID: "mine", Text: paraphraseA}
	idx := &stubIndex{err: errors.New("connection refused")}

	matches, checked := newTestMatcher(idx).Match(context.Background(), sub)

	assert.Empty(t, matches)
	assert.Zero(t, checked)
}

func TestMatchNilIndex(t *testing.T) {
	sub := models.Submission{ID: "mine", Text: paraphraseA}
	matches, checked := newTestMatcher(nil).Match(context.Background(), sub)
	assert.Empty(t, matches)
	assert.Zero(t, checked)
}

func TestMatchEmptySubmissionSkipsQuery(t *testing.T) {
	idx := &stubIndex{}
	matches, _ := newTestMatcher(idx).Match(context.Background(), models.Submission{ID: "mine"})
	assert.Empty(t, matches)
	assert.Zero(t, idx.queries)
}

func TestMatchFallsBackToFileContents(t *testing.T) {
	sub := models.Submission{
		ID:    "mine",
		Files: []models.SubmissionFile{{Name: "essay.txt", Content: paraphraseA}},
	}
	idx := &stubIndex{neighbors: []index.Neighbor{
		{SubmissionID: "theirs", Student: "Robin", Content: paraphraseA},
	}}

	matches, _ := newTestMatcher(idx).Match(context.Background(), sub)
	require.Len(t, matches, 1)
	assert.Equal(t, 100.0, matches[0].SimilarityPct)
}

func TestMatchOrderedBySimilarity(t *testing.T) {
	sub := models.Submission{ID: "mine", Text: paraphraseA}
	idx := &stubIndex{neighbors: []index.Neighbor{
		{SubmissionID: "partial", Student: "Sam", Content: paraphraseB},
		{SubmissionID: "verbatim", Student: "Robin", Content: paraphraseA},
	}}

	matches, _ := newTestMatcher(idx).Match(context.Background(), sub)

	require.Len(t, matches, 2)
	assert.Equal(t, "verbatim", matches[0].CounterpartID)
	assert.Equal(t, "partial", matches[1].CounterpartID)
	// kind stays cross_submission regardless of how close the match is
	assert.Equal(t, models.MatchCrossSubmission, matches[0].Kind)
	assert.Equal(t, models.MatchCrossSubmission, matches[1].Kind)
}