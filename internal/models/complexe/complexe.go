package complexe

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/kgrank/pkg/embedding"
	"github.com/cnclabs/kgrank/pkg/knowledge"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// ComplEx embeds entities and relations as complex vectors, stored as paired
// real and imaginary tables, and scores a triple with the real part of the
// trilinear product: Re(sum_d h_d * r_d * conj(t_d)). The conjugation lets
// one relation embedding model both a relation and its inverse.
type ComplEx struct {
	dim int

	entRe, entIm *embedding.Store
	relRe, relIm *embedding.Store
}

var _ linkpred.Model = (*ComplEx)(nil)

// New builds a ComplEx model. dim counts complex dimensions; the model holds
// 2*dim real parameters per entity and relation.
func New(dim int, nEntities, nRelations int64, rng *rand.Rand) *ComplEx {
	return &ComplEx{
		dim:   dim,
		entRe: embedding.NewStore(int(nEntities), dim, rng),
		entIm: embedding.NewStore(int(nEntities), dim, rng),
		relRe: embedding.NewStore(int(nRelations), dim, rng),
		relIm: embedding.NewStore(int(nRelations), dim, rng),
	}
}

// ScoreTriples returns Re(<h, r, conj(t)>) per triple.
func (cx *ComplEx) ScoreTriples(h, t, r []int64) []float64 {
	out := make([]float64, len(h))
	for i := range h {
		hRe, hIm := cx.entRe.Row(h[i]), cx.entIm.Row(h[i])
		tRe, tIm := cx.entRe.Row(t[i]), cx.entIm.Row(t[i])
		rRe, rIm := cx.relRe.Row(r[i]), cx.relIm.Row(r[i])

		s := 0.0
		for d := 0; d < cx.dim; d++ {
			qRe := hRe[d]*rRe[d] - hIm[d]*rIm[d]
			qIm := hRe[d]*rIm[d] + hIm[d]*rRe[d]
			s += qRe*tRe[d] + qIm*tIm[d]
		}
		out[i] = s
	}
	return out
}

// NormalizeParameters rescales each entity to unit modulus, taking real and
// imaginary parts together. Relation embeddings are left as trained.
func (cx *ComplEx) NormalizeParameters() {
	for i := int64(0); i < int64(cx.entRe.Len()); i++ {
		re, im := cx.entRe.Row(i), cx.entIm.Row(i)
		norm := 0.0
		for d := 0; d < cx.dim; d++ {
			norm += re[d]*re[d] + im[d]*im[d]
		}
		norm = math.Sqrt(norm)
		if norm <= 1e-10 {
			continue
		}
		for d := 0; d < cx.dim; d++ {
			re[d] /= norm
			im[d] /= norm
		}
	}
}

// candidateSet pairs the batch's complex embeddings with the two halves of
// the entity catalog. Both tables are shared views, never copies.
type candidateSet struct {
	head, tail, rel [][2][]float64 // [re, im] per sample

	candRe, candIm *mat.Dense

	nCand int
}

func (c *candidateSet) BatchSize() int     { return len(c.head) }
func (c *candidateSet) NumCandidates() int { return c.nCand }

// EvaluationHelper gathers the batch's complex embeddings; the candidate
// tensor is the pair of entity tables broadcast across the batch.
func (cx *ComplEx) EvaluationHelper(h, t, r []int64) linkpred.CandidateSet {
	b := len(h)
	set := &candidateSet{
		head:   make([][2][]float64, b),
		tail:   make([][2][]float64, b),
		rel:    make([][2][]float64, b),
		candRe: cx.entRe.Matrix(),
		candIm: cx.entIm.Matrix(),
		nCand:  cx.entRe.Len(),
	}
	for i := range h {
		set.head[i] = [2][]float64{cx.entRe.Row(h[i]), cx.entIm.Row(h[i])}
		set.tail[i] = [2][]float64{cx.entRe.Row(t[i]), cx.entIm.Row(t[i])}
		set.rel[i] = [2][]float64{cx.relRe.Row(r[i]), cx.relIm.Row(r[i])}
	}
	return set
}

// ComputeRanks scores every candidate with two matrix-vector products per
// sample. For the tail pass the query is h*r; for the head pass it is
// r*conj(t) conjugated back, so that candidate c scores Re(<c, r, conj(t)>).
func (cx *ComplEx) ComputeRanks(set linkpred.CandidateSet, role linkpred.Role, entIdx, relIdx, trueIdx []int64,
	known *knowledge.CompletionIndex) (raw, filtered []int64) {

	cs, ok := set.(*candidateSet)
	if !ok {
		panic("complexe: candidate set does not belong to this model")
	}

	b := cs.BatchSize()
	raw = make([]int64, b)
	filtered = make([]int64, b)

	qRe := mat.NewVecDense(cx.dim, nil)
	qIm := mat.NewVecDense(cx.dim, nil)
	sRe := mat.NewVecDense(cs.nCand, nil)
	sIm := mat.NewVecDense(cs.nCand, nil)
	scores := make([]float64, cs.nCand)

	for i := 0; i < b; i++ {
		rRe, rIm := cs.rel[i][0], cs.rel[i][1]

		switch role {
		case linkpred.RoleTail:
			hRe, hIm := cs.head[i][0], cs.head[i][1]
			for d := 0; d < cx.dim; d++ {
				qRe.SetVec(d, hRe[d]*rRe[d]-hIm[d]*rIm[d])
				qIm.SetVec(d, hRe[d]*rIm[d]+hIm[d]*rRe[d])
			}
		case linkpred.RoleHead:
			tRe, tIm := cs.tail[i][0], cs.tail[i][1]
			for d := 0; d < cx.dim; d++ {
				qRe.SetVec(d, rRe[d]*tRe[d]+rIm[d]*tIm[d])
				qIm.SetVec(d, rRe[d]*tIm[d]-rIm[d]*tRe[d])
			}
		}

		sRe.MulVec(cs.candRe, qRe)
		sIm.MulVec(cs.candIm, qIm)
		for j := 0; j < cs.nCand; j++ {
			scores[j] = sRe.AtVec(j) + sIm.AtVec(j)
		}

		raw[i], filtered[i] = linkpred.RanksFromScores(scores, trueIdx[i], entIdx[i], relIdx[i], known)
	}
	return raw, filtered
}
