package rescal

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/kgrank/pkg/linkpred"
)

func TestScoreTriples_MatchesBilinearForm(t *testing.T) {
	m := New(3, 4, 2, rand.New(rand.NewSource(1)))

	h := m.Entities.Row(1)
	tt := m.Entities.Row(2)
	r := m.RelationMatrix(0)

	want := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want += h[i] * r.At(i, j) * tt[j]
		}
	}

	scores := m.ScoreTriples([]int64{1}, []int64{2}, []int64{0})
	require.Len(t, scores, 1)
	assert.InDelta(t, want, scores[0], 1e-12)
}

func TestScoreTriples_DirectionMatters(t *testing.T) {
	m := New(2, 2, 1, rand.New(rand.NewSource(2)))

	m.Entities.SetRow(0, []float64{1, 0})
	m.Entities.SetRow(1, []float64{0, 1})
	m.RelationMatrix(0).Copy(mat.NewDense(2, 2, []float64{0, 1, 0, 0}))

	forward := m.ScoreTriples([]int64{0}, []int64{1}, []int64{0})[0]
	backward := m.ScoreTriples([]int64{1}, []int64{0}, []int64{0})[0]

	assert.InDelta(t, 1.0, forward, 1e-12)
	assert.InDelta(t, 0.0, backward, 1e-12, "an asymmetric matrix scores the two directions apart")
}

func TestComputeRanks_AgreeWithScoreTriples(t *testing.T) {
	m := New(4, 8, 2, rand.New(rand.NewSource(3)))

	h, tt, r := []int64{1, 5}, []int64{3, 0}, []int64{0, 1}
	set := m.EvaluationHelper(h, tt, r)

	for i := range h {
		trueScore := m.ScoreTriples([]int64{h[i]}, []int64{tt[i]}, []int64{r[i]})[0]
		want := int64(1)
		for c := int64(0); c < 8; c++ {
			if m.ScoreTriples([]int64{h[i]}, []int64{c}, []int64{r[i]})[0] > trueScore {
				want++
			}
		}

		raw, filtered := m.ComputeRanks(set, linkpred.RoleTail, h, r, tt, nil)
		assert.Equal(t, want, raw[i], "sample %d", i)
		assert.Equal(t, raw[i], filtered[i], "no filter index, filtered equals raw")
	}
}

func TestComputeRanks_HeadSide(t *testing.T) {
	m := New(4, 8, 2, rand.New(rand.NewSource(4)))

	h, tt, r := []int64{2}, []int64{6}, []int64{1}
	set := m.EvaluationHelper(h, tt, r)

	trueScore := m.ScoreTriples(h, tt, r)[0]
	want := int64(1)
	for c := int64(0); c < 8; c++ {
		if m.ScoreTriples([]int64{c}, tt, r)[0] > trueScore {
			want++
		}
	}

	raw, _ := m.ComputeRanks(set, linkpred.RoleHead, tt, r, h, nil)
	assert.Equal(t, want, raw[0])
}
