package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/config"
	"scholar-rec-api/internal/domain/entity"
	apperrors "scholar-rec-api/pkg/errors"
)

type feedbackFixture struct {
	svc      *FeedbackService
	projects *memProjectRepo
	recs     *memRecRepo
	index    *stubIndex
}

func newFeedbackFixture() *feedbackFixture {
	f := &feedbackFixture{
		projects: newMemProjectRepo(),
		recs:     newMemRecRepo(),
		index:    &stubIndex{vectors: make(map[string][]float32)},
	}
	f.svc = NewFeedbackService(f.projects, f.recs, f.index,
		&config.RecommendConfig{FeedbackStep: 0.05})

	f.projects.byID["p1"] = &entity.Project{
		ID:                "p1",
		Name:              "Survey",
		InterestEmbedding: Normalize([]float32{1, 1, 0}),
	}
	f.recs.byID["r1"] = &entity.Recommendation{
		ID:          "r1",
		ProjectID:   "p1",
		RunID:       "run-1",
		ContentHash: "hash-a",
		Tier:        entity.TierTopPriority,
	}
	f.index.vectors["hash-a"] = []float32{0, 0, 1}
	return f
}

func TestFeedbackRate_InvalidRating(t *testing.T) {
	f := newFeedbackFixture()

	for _, rating := range []int{0, 6, -1} {
		err := f.svc.Rate(context.Background(), "r1", rating)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidRating, apperrors.AsAppError(err).Code)
	}
	assert.Empty(t, f.recs.ratings)
}

func TestFeedbackRate_RecommendationNotFound(t *testing.T) {
	f := newFeedbackFixture()

	err := f.svc.Rate(context.Background(), "missing", 4)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRecommendationNotFound, apperrors.AsAppError(err).Code)
}

func TestFeedbackRate_PositiveRatingMovesProfileTowardPaper(t *testing.T) {
	f := newFeedbackFixture()
	before := f.projects.byID["p1"].InterestEmbedding
	simBefore := CosineSimilarity(before, f.index.vectors["hash-a"])

	err := f.svc.Rate(context.Background(), "r1", 5)

	require.NoError(t, err)
	assert.Equal(t, 5, f.recs.ratings["r1"])
	after := f.projects.byID["p1"].InterestEmbedding
	assert.Greater(t, CosineSimilarity(after, f.index.vectors["hash-a"]), simBefore)
}

func TestFeedbackRate_NegativeRatingMovesProfileAway(t *testing.T) {
	f := newFeedbackFixture()
	simBefore := CosineSimilarity(f.projects.byID["p1"].InterestEmbedding, f.index.vectors["hash-a"])

	err := f.svc.Rate(context.Background(), "r1", 1)

	require.NoError(t, err)
	after := f.projects.byID["p1"].InterestEmbedding
	assert.Less(t, CosineSimilarity(after, f.index.vectors["hash-a"]), simBefore)
}

func TestFeedbackRate_NeutralRatingOnlyRecords(t *testing.T) {
	f := newFeedbackFixture()
	before := f.projects.byID["p1"].InterestEmbedding

	err := f.svc.Rate(context.Background(), "r1", 3)

	require.NoError(t, err)
	assert.Equal(t, 3, f.recs.ratings["r1"])
	assert.Equal(t, before, f.projects.byID["p1"].InterestEmbedding)
}

func TestFeedbackRate_MissingVectorSkipsProfileUpdate(t *testing.T) {
	f := newFeedbackFixture()
	delete(f.index.vectors, "hash-a")
	before := f.projects.byID["p1"].InterestEmbedding

	err := f.svc.Rate(context.Background(), "r1", 5)

	require.NoError(t, err)
	assert.Equal(t, 5, f.recs.ratings["r1"])
	assert.Equal(t, before, f.projects.byID["p1"].InterestEmbedding)
}

func TestFeedbackRate_ProjectGone(t *testing.T) {
	f := newFeedbackFixture()
	delete(f.projects.byID, "p1")

	err := f.svc.Rate(context.Background(), "r1", 5)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeProjectNotFound, apperrors.AsAppError(err).Code)
}
