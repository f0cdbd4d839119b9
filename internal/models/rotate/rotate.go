package rotate

import (
	"math"
	"math/rand"

	"github.com/cnclabs/kgrank/pkg/dissim"
	"github.com/cnclabs/kgrank/pkg/embedding"
	"github.com/cnclabs/kgrank/pkg/knowledge"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// RotatE models relations as rotations in complex space: h ∘ r ≈ t, with ∘
// the element-wise complex product. Entities are complex vectors stored as
// interleaved [re, im] pairs; relations are rotation angles, one per complex
// dimension. The score is -||h ∘ r - t||.
//
// The core carries the None dissimilarity: the distance here is the complex
// modulus of the rotated difference, which in the interleaved layout is the
// Euclidean distance between the rotated query and the candidate row.
type RotatE struct {
	*linkpred.TranslationCore

	dim int // complex dimensions; entity rows hold 2*dim reals
}

var _ linkpred.Model = (*RotatE)(nil)

// New builds a RotatE model. dim counts complex dimensions; entities carry
// 2*dim real parameters. Entities start with uniform phase and bounded
// modulus; relations start as uniform rotation angles in [0, 2π).
func New(dim int, nEntities, nRelations int64, rng *rand.Rand) *RotatE {
	entities := embedding.NewStore(int(nEntities), 2*dim, rng)
	relations := embedding.NewStore(int(nRelations), dim, rng)

	for i := int64(0); i < nEntities; i++ {
		row := entities.Row(i)
		for d := 0; d < dim; d++ {
			phase := rng.Float64() * 2 * math.Pi
			modulus := (rng.Float64()*0.5 + 0.5) / float64(dim)
			row[2*d] = modulus * math.Cos(phase)
			row[2*d+1] = modulus * math.Sin(phase)
		}
	}
	for i := int64(0); i < nRelations; i++ {
		row := relations.Row(i)
		for d := 0; d < dim; d++ {
			row[d] = rng.Float64() * 2 * math.Pi
		}
	}

	return &RotatE{
		TranslationCore: &linkpred.TranslationCore{
			Entities:  entities,
			Relations: relations,
			Dissim:    dissim.None,
		},
		dim: dim,
	}
}

// rotateInto writes the complex product of entity e and the rotation with the
// given angles into dst. sign -1 applies the inverse rotation.
func rotateInto(dst, e, angles []float64, sign float64) {
	for d := range angles {
		cos := math.Cos(sign * angles[d])
		sin := math.Sin(sign * angles[d])
		re, im := e[2*d], e[2*d+1]
		dst[2*d] = re*cos - im*sin
		dst[2*d+1] = re*sin + im*cos
	}
}

// ScoreTriples returns -||h ∘ r - t|| per triple.
func (ro *RotatE) ScoreTriples(h, t, r []int64) []float64 {
	out := make([]float64, len(h))
	query := make([]float64, 2*ro.dim)
	for i := range h {
		rotateInto(query, ro.Entities.Row(h[i]), ro.Relations.Row(r[i]), 1)
		out[i] = -dissim.L2.Distance(query, ro.Entities.Row(t[i]))
	}
	return out
}

// NormalizeParameters is a no-op: relations are stored as angles, which are
// unit rotations by construction, and entity moduli carry signal.
func (ro *RotatE) NormalizeParameters() {}

// ComputeRanks ranks the rotated query against the raw candidate table.
// Rotations are isometries, so the head pass applies the inverse rotation to
// the tail: ||c ∘ r - t|| = ||c - t ∘ conj(r)||.
func (ro *RotatE) ComputeRanks(set linkpred.CandidateSet, role linkpred.Role, entIdx, relIdx, trueIdx []int64,
	known *knowledge.CompletionIndex) (raw, filtered []int64) {

	tc, ok := set.(*linkpred.TranslationCandidates)
	if !ok {
		panic("rotate: candidate set does not belong to this model")
	}

	b := tc.BatchSize()
	raw = make([]int64, b)
	filtered = make([]int64, b)

	query := make([]float64, 2*ro.dim)
	scores := make([]float64, tc.NumCandidates())

	for i := 0; i < b; i++ {
		switch role {
		case linkpred.RoleTail:
			rotateInto(query, tc.Head[i], tc.Rel[i], 1)
		case linkpred.RoleHead:
			rotateInto(query, tc.Tail[i], tc.Rel[i], -1)
		}

		dissim.L2.RowDistances(scores, query, tc.Candidates[i])
		for j := range scores {
			scores[j] = -scores[j]
		}

		raw[i], filtered[i] = linkpred.RanksFromScores(scores, trueIdx[i], entIdx[i], relIdx[i], known)
	}
	return raw, filtered
}
