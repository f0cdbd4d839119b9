package linkpred

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cnclabs/kgrank/pkg/knowledge"
)

func TestRanksFromScores_BestCandidateIsRankOne(t *testing.T) {
	scores := []float64{0.1, 0.9, 0.3}
	raw, filtered := RanksFromScores(scores, 1, 0, 0, nil)
	assert.Equal(t, int64(1), raw)
	assert.Equal(t, int64(1), filtered)
}

func TestRanksFromScores_StrictCounting(t *testing.T) {
	// The true candidate ties with index 2; strict counting means the tie
	// does not push the rank down and the true score never counts against
	// itself.
	scores := []float64{0.9, 0.5, 0.5, 0.1}
	raw, _ := RanksFromScores(scores, 1, 0, 0, nil)
	assert.Equal(t, int64(2), raw, "only the strictly better candidate counts")
}

func TestRanksFromScores_Bounds(t *testing.T) {
	scores := []float64{5, 4, 3, 2, 1}
	for trueIdx := int64(0); trueIdx < 5; trueIdx++ {
		raw, filtered := RanksFromScores(scores, trueIdx, 0, 0, nil)
		assert.GreaterOrEqual(t, raw, int64(1))
		assert.LessOrEqual(t, raw, int64(len(scores)))
		assert.GreaterOrEqual(t, filtered, int64(1))
		assert.LessOrEqual(t, filtered, raw)
	}
}

func TestRanksFromScores_FilteringRemovesKnownCompetitor(t *testing.T) {
	// Candidate 3 is a known true completion scoring above the true target:
	// raw rank 2, filtered rank 1.
	scores := []float64{0.0, 0.8, 0.1, 0.9}
	known := knowledge.NewCompletionIndex()
	known.Add(7, 2, 1)
	known.Add(7, 2, 3)

	raw, filtered := RanksFromScores(scores, 1, 7, 2, known)
	assert.Equal(t, int64(2), raw)
	assert.Equal(t, int64(1), filtered)
}

func TestRanksFromScores_FilteringIgnoresUnrelatedCandidates(t *testing.T) {
	// Candidate 0 outranks the target but is not a known completion, so
	// filtering must not remove it.
	scores := []float64{0.9, 0.5, 0.2}
	known := knowledge.NewCompletionIndex()
	known.Add(1, 1, 1)

	raw, filtered := RanksFromScores(scores, 1, 1, 1, known)
	assert.Equal(t, int64(2), raw)
	assert.Equal(t, int64(2), filtered)
}

func TestRanksFromScores_MissingKeySkipsFiltering(t *testing.T) {
	scores := []float64{0.9, 0.5}
	known := knowledge.NewCompletionIndex()
	known.Add(0, 0, 1) // different pair

	raw, filtered := RanksFromScores(scores, 1, 5, 5, known)
	assert.Equal(t, raw, filtered)
}

func TestRanksFromScores_TrueTargetKeepsOwnScore(t *testing.T) {
	// Even when the true target is listed in the completion set, its own
	// score stays live; filtering only silences the other members.
	scores := []float64{0.3, 0.5, 0.7}
	known := knowledge.NewCompletionIndex()
	known.Add(4, 0, 1)
	known.Add(4, 0, 2)

	raw, filtered := RanksFromScores(scores, 1, 4, 0, known)
	assert.Equal(t, int64(2), raw)
	assert.Equal(t, int64(1), filtered, "candidate 2 filtered, candidate 1 keeps its score")
}
