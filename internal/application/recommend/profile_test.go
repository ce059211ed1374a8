package recommend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestUpdateProfileVector_PositiveRatingPullsCloser(t *testing.T) {
	profile := []float32{1, 0}
	paper := []float32{0, 1}

	updated := UpdateProfileVector(profile, paper, 5, 0.05)

	require.Len(t, updated, 2)
	assert.InDelta(t, 1.0, vectorNorm(updated), 1e-6)
	assert.Greater(t, CosineSimilarity(updated, paper), CosineSimilarity(profile, paper))
}

func TestUpdateProfileVector_NegativeRatingPushesAway(t *testing.T) {
	profile := []float32{1, 0.5}
	paper := []float32{0, 1}

	updated := UpdateProfileVector(profile, paper, 1, 0.05)

	assert.InDelta(t, 1.0, vectorNorm(updated), 1e-6)
	assert.Less(t, CosineSimilarity(updated, paper), CosineSimilarity(profile, paper))
}

func TestUpdateProfileVector_NeutralRatingKeepsDirection(t *testing.T) {
	profile := Normalize([]float32{3, 4})
	paper := []float32{0, 1}

	updated := UpdateProfileVector(profile, paper, 3, 0.05)

	require.Len(t, updated, 2)
	assert.InDelta(t, float64(profile[0]), float64(updated[0]), 1e-6)
	assert.InDelta(t, float64(profile[1]), float64(updated[1]), 1e-6)
}

func TestUpdateProfileVector_EmptyProfileAdoptsPaperDirection(t *testing.T) {
	paper := []float32{0.6, 0.8}

	updated := UpdateProfileVector(nil, paper, 5, 0.05)

	require.Len(t, updated, 2)
	assert.InDelta(t, 1.0, CosineSimilarity(updated, paper), 1e-6)
}

func TestUpdateProfileVector_DimensionMismatch(t *testing.T) {
	profile := []float32{1}
	paper := []float32{0, 1, 0}

	updated := UpdateProfileVector(profile, paper, 5, 0.05)

	assert.Len(t, updated, 3)
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	assert.Equal(t, v, Normalize(v))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-3, 0}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
