package rotate

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/kgrank/pkg/knowledge"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// setEntity writes a complex vector into an entity row as interleaved pairs.
func setEntity(m *RotatE, i int64, v []complex128) {
	row := m.Entities.Row(i)
	for d, c := range v {
		row[2*d] = real(c)
		row[2*d+1] = imag(c)
	}
}

func TestScoreTriples_MatchesComplexArithmetic(t *testing.T) {
	m := New(3, 4, 2, rand.New(rand.NewSource(1)))

	h := int64(1)
	tt := int64(3)
	r := int64(0)

	want := 0.0
	hRow, tRow := m.Entities.Row(h), m.Entities.Row(tt)
	for d, angle := range m.Relations.Row(r) {
		hc := complex(hRow[2*d], hRow[2*d+1])
		tc := complex(tRow[2*d], tRow[2*d+1])
		diff := hc*cmplx.Exp(complex(0, angle)) - tc
		want += real(diff)*real(diff) + imag(diff)*imag(diff)
	}
	want = -math.Sqrt(want)

	scores := m.ScoreTriples([]int64{h}, []int64{tt}, []int64{r})
	require.Len(t, scores, 1)
	assert.InDelta(t, want, scores[0], 1e-12)
}

func TestScoreTriples_QuarterTurn(t *testing.T) {
	m := New(1, 3, 1, rand.New(rand.NewSource(2)))

	// A quarter turn carries 1 onto i exactly.
	setEntity(m, 0, []complex128{1})
	setEntity(m, 1, []complex128{1i})
	setEntity(m, 2, []complex128{-1})
	m.Relations.SetRow(0, []float64{math.Pi / 2})

	scores := m.ScoreTriples([]int64{0}, []int64{1}, []int64{0})
	assert.InDelta(t, 0.0, scores[0], 1e-12)

	scores = m.ScoreTriples([]int64{0}, []int64{2}, []int64{0})
	assert.Negative(t, scores[0])
}

func TestComputeRanks_QuarterTurn(t *testing.T) {
	m := New(1, 3, 1, rand.New(rand.NewSource(3)))

	setEntity(m, 0, []complex128{1})
	setEntity(m, 1, []complex128{1i})
	setEntity(m, 2, []complex128{-1})
	m.Relations.SetRow(0, []float64{math.Pi / 2})

	h, tt, r := []int64{0}, []int64{1}, []int64{0}
	set := m.EvaluationHelper(h, tt, r)

	raw, _ := m.ComputeRanks(set, linkpred.RoleTail, h, r, tt, nil)
	assert.Equal(t, int64(1), raw[0], "e0 rotates exactly onto e1")

	raw, _ = m.ComputeRanks(set, linkpred.RoleHead, tt, r, h, nil)
	assert.Equal(t, int64(1), raw[0], "the inverse rotation carries e1 back onto e0")
}

func TestComputeRanks_AgreeWithScoreTriples(t *testing.T) {
	m := New(4, 8, 2, rand.New(rand.NewSource(4)))

	h, tt, r := []int64{1, 6}, []int64{4, 2}, []int64{0, 1}
	set := m.EvaluationHelper(h, tt, r)

	tailRaw, _ := m.ComputeRanks(set, linkpred.RoleTail, h, r, tt, nil)
	headRaw, _ := m.ComputeRanks(set, linkpred.RoleHead, tt, r, h, nil)

	for i := range h {
		trueScore := m.ScoreTriples([]int64{h[i]}, []int64{tt[i]}, []int64{r[i]})[0]
		wantTail := int64(1)
		wantHead := int64(1)
		for c := int64(0); c < 8; c++ {
			if m.ScoreTriples([]int64{h[i]}, []int64{c}, []int64{r[i]})[0] > trueScore {
				wantTail++
			}
			if m.ScoreTriples([]int64{c}, []int64{tt[i]}, []int64{r[i]})[0] > trueScore {
				wantHead++
			}
		}
		assert.Equal(t, wantTail, tailRaw[i], "tail sample %d", i)
		assert.Equal(t, wantHead, headRaw[i], "head sample %d", i)
	}
}

func TestComputeRanks_Filtered(t *testing.T) {
	m := New(1, 3, 1, rand.New(rand.NewSource(5)))

	// e1 sits exactly on the rotated head; e2 is the slightly-off target.
	setEntity(m, 0, []complex128{1})
	setEntity(m, 1, []complex128{1i})
	setEntity(m, 2, []complex128{0.1 + 1i})
	m.Relations.SetRow(0, []float64{math.Pi / 2})

	known := knowledge.NewCompletionIndex()
	known.Add(0, 0, 1)
	known.Add(0, 0, 2)

	h, tt, r := []int64{0}, []int64{2}, []int64{0}
	set := m.EvaluationHelper(h, tt, r)
	raw, filtered := m.ComputeRanks(set, linkpred.RoleTail, h, r, tt, known)

	assert.Equal(t, int64(2), raw[0])
	assert.Equal(t, int64(1), filtered[0], "the other known tail is masked out")
}

func TestEvaluationHelper_SharesEntityTable(t *testing.T) {
	m := New(2, 5, 1, rand.New(rand.NewSource(6)))

	set := m.EvaluationHelper([]int64{0, 1}, []int64{2, 3}, []int64{0, 0})
	tc := set.(*linkpred.TranslationCandidates)

	for i := range tc.Candidates {
		assert.Same(t, m.Entities.Matrix(), tc.Candidates[i],
			"rotation composes with the query, the candidate table stays shared")
	}
}

func TestNormalizeParameters_NoOp(t *testing.T) {
	m := New(2, 4, 2, rand.New(rand.NewSource(7)))

	entities := mat.DenseCopyOf(m.Entities.Matrix())
	relations := mat.DenseCopyOf(m.Relations.Matrix())

	m.NormalizeParameters()

	assert.True(t, mat.Equal(entities, m.Entities.Matrix()))
	assert.True(t, mat.Equal(relations, m.Relations.Matrix()))
}
