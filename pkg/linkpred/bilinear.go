package linkpred

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/kgrank/pkg/embedding"
	"github.com/cnclabs/kgrank/pkg/knowledge"
)

// RelationOp is the relation-specific operator R of a bilinear score h'·R·t.
type RelationOp interface {
	// Apply sets dst = R v.
	Apply(dst, v *mat.VecDense)
	// ApplyT sets dst = R' v.
	ApplyT(dst, v *mat.VecDense)
}

// MatrixOp wraps a full (dim x dim) relation matrix.
type MatrixOp struct {
	M *mat.Dense
}

func (o MatrixOp) Apply(dst, v *mat.VecDense)  { dst.MulVec(o.M, v) }
func (o MatrixOp) ApplyT(dst, v *mat.VecDense) { dst.MulVec(o.M.T(), v) }

// DiagonalOp wraps a diagonal relation matrix stored as its diagonal. It is
// symmetric, so Apply and ApplyT coincide.
type DiagonalOp struct {
	D []float64
}

func (o DiagonalOp) Apply(dst, v *mat.VecDense) {
	for i, d := range o.D {
		dst.SetVec(i, d*v.AtVec(i))
	}
}

func (o DiagonalOp) ApplyT(dst, v *mat.VecDense) { o.Apply(dst, v) }

// RelationBank yields the bilinear operator of each relation.
type RelationBank interface {
	Op(relation int64) RelationOp
}

// Operand is one side of a bilinear product: either a single embedding or
// the full candidate table. Exactly one field is set.
type Operand struct {
	Vec   *mat.VecDense
	Table *mat.Dense // (candidates x dim)
}

// ComputeProduct evaluates h'·R·t, dispatching on which side holds the
// candidate table:
//
//   - vec·vec: the training forward pass, one scalar;
//   - vec·table: tail completion, q = R'h then table·q;
//   - table·vec: head completion, q = R·t then table·q.
//
// Each candidate regime costs one operator application plus one
// matrix-vector product; an (candidates x candidates) intermediate is never
// formed. Passing two tables (or two vectors and a table) is a programming
// error.
func ComputeProduct(h, t Operand, r RelationOp) []float64 {
	switch {
	case h.Vec != nil && t.Vec != nil:
		q := mat.NewVecDense(t.Vec.Len(), nil)
		r.Apply(q, t.Vec)
		return []float64{mat.Dot(h.Vec, q)}

	case h.Vec != nil && t.Table != nil:
		q := mat.NewVecDense(h.Vec.Len(), nil)
		r.ApplyT(q, h.Vec)
		n, _ := t.Table.Dims()
		out := mat.NewVecDense(n, nil)
		out.MulVec(t.Table, q)
		return out.RawVector().Data

	case h.Table != nil && t.Vec != nil:
		q := mat.NewVecDense(t.Vec.Len(), nil)
		r.Apply(q, t.Vec)
		n, _ := h.Table.Dims()
		out := mat.NewVecDense(n, nil)
		out.MulVec(h.Table, q)
		return out.RawVector().Data
	}
	panic("linkpred: ComputeProduct wants one embedding per side and at most one candidate table")
}

// BilinearCore implements scoring and ranking for the bilinear family:
// score(h, t, r) = h'·R·t with R drawn from a RelationBank.
type BilinearCore struct {
	Entities  *embedding.Store
	Relations RelationBank
}

// ScoreTriples returns h'·R·t per triple.
func (core *BilinearCore) ScoreTriples(h, t, r []int64) []float64 {
	out := make([]float64, len(h))
	for i := range h {
		p := ComputeProduct(
			Operand{Vec: core.Entities.Vec(h[i])},
			Operand{Vec: core.Entities.Vec(t[i])},
			core.Relations.Op(r[i]),
		)
		out[i] = p[0]
	}
	return out
}

// NormalizeParameters rescales entity embeddings to unit L2 norm. Relation
// parameters are left as trained.
func (core *BilinearCore) NormalizeParameters() {
	core.Entities.NormalizeRows()
}

// BilinearCandidates is the bilinear CandidateSet: per-sample head/tail
// vectors and relation operators, plus the entity table broadcast across the
// batch.
type BilinearCandidates struct {
	Head []*mat.VecDense
	Tail []*mat.VecDense
	Ops  []RelationOp

	Candidates *mat.Dense

	nCand int
}

func (c *BilinearCandidates) BatchSize() int     { return len(c.Head) }
func (c *BilinearCandidates) NumCandidates() int { return c.nCand }

// EvaluationHelper gathers batch embeddings and relation operators. The
// candidate table is the entity table itself; bilinear models have no
// relation-specific projection.
func (core *BilinearCore) EvaluationHelper(h, t, r []int64) CandidateSet {
	b := len(h)
	set := &BilinearCandidates{
		Head:       make([]*mat.VecDense, b),
		Tail:       make([]*mat.VecDense, b),
		Ops:        make([]RelationOp, b),
		Candidates: core.Entities.Matrix(),
		nCand:      core.Entities.Len(),
	}
	for i := range h {
		set.Head[i] = core.Entities.Vec(h[i])
		set.Tail[i] = core.Entities.Vec(t[i])
		set.Ops[i] = core.Relations.Op(r[i])
	}
	return set
}

// ComputeRanks ranks the true entity against every candidate using the
// product dispatch: candidates substitute the tail in the tail pass and the
// head in the head pass.
func (core *BilinearCore) ComputeRanks(set CandidateSet, role Role, entIdx, relIdx, trueIdx []int64,
	known *knowledge.CompletionIndex) (raw, filtered []int64) {

	bc, ok := set.(*BilinearCandidates)
	if !ok {
		panic("linkpred: candidate set does not belong to the bilinear family")
	}

	b := bc.BatchSize()
	raw = make([]int64, b)
	filtered = make([]int64, b)

	for i := 0; i < b; i++ {
		var scores []float64
		switch role {
		case RoleTail:
			scores = ComputeProduct(Operand{Vec: bc.Head[i]}, Operand{Table: bc.Candidates}, bc.Ops[i])
		case RoleHead:
			scores = ComputeProduct(Operand{Table: bc.Candidates}, Operand{Vec: bc.Tail[i]}, bc.Ops[i])
		}
		raw[i], filtered[i] = RanksFromScores(scores, trueIdx[i], entIdx[i], relIdx[i], known)
	}
	return raw, filtered
}
