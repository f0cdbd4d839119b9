package distmult

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnclabs/kgrank/pkg/linkpred"
)

func TestScoreTriples_TrilinearSum(t *testing.T) {
	m := New(3, 4, 2, rand.New(rand.NewSource(1)))

	h := m.Entities.Row(0)
	tt := m.Entities.Row(3)
	r := m.Relations().Row(1)

	want := 0.0
	for d := 0; d < 3; d++ {
		want += h[d] * r[d] * tt[d]
	}

	scores := m.ScoreTriples([]int64{0}, []int64{3}, []int64{1})
	require.Len(t, scores, 1)
	assert.InDelta(t, want, scores[0], 1e-12)
}

func TestScoreTriples_Symmetric(t *testing.T) {
	m := New(6, 10, 3, rand.New(rand.NewSource(2)))

	forward := m.ScoreTriples([]int64{1, 4}, []int64{7, 2}, []int64{0, 2})
	backward := m.ScoreTriples([]int64{7, 2}, []int64{1, 4}, []int64{0, 2})

	assert.InDeltaSlice(t, forward, backward, 1e-12,
		"the diagonal form cannot tell head from tail")
}

func TestComputeRanks_AgreeWithScoreTriples(t *testing.T) {
	m := New(4, 9, 2, rand.New(rand.NewSource(3)))

	h, tt, r := []int64{2}, []int64{5}, []int64{1}
	set := m.EvaluationHelper(h, tt, r)

	trueScore := m.ScoreTriples(h, tt, r)[0]
	want := int64(1)
	for c := int64(0); c < 9; c++ {
		if m.ScoreTriples(h, []int64{c}, r)[0] > trueScore {
			want++
		}
	}

	raw, _ := m.ComputeRanks(set, linkpred.RoleTail, h, r, tt, nil)
	assert.Equal(t, want, raw[0])

	// Symmetry carries over to the head pass against the same candidates.
	headRaw, _ := m.ComputeRanks(set, linkpred.RoleHead, tt, r, h, nil)
	trueHead := m.ScoreTriples(h, tt, r)[0]
	wantHead := int64(1)
	for c := int64(0); c < 9; c++ {
		if m.ScoreTriples([]int64{c}, tt, r)[0] > trueHead {
			wantHead++
		}
	}
	assert.Equal(t, wantHead, headRaw[0])
}
