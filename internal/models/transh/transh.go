package transh

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/kgrank/pkg/dissim"
	"github.com/cnclabs/kgrank/pkg/embedding"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// TransH translates on a relation-specific hyperplane: entities are projected
// as e - (e.w)w with w the relation's unit normal, then scored like TransE
// with the L2 distance.
type TransH struct {
	*linkpred.TranslationCore

	normals *embedding.Store
}

var (
	_ linkpred.Model     = (*TransH)(nil)
	_ linkpred.Projector = (*TransH)(nil)
)

// New builds a TransH model. Relation normals start normalized so the
// projection formula holds from the first batch.
func New(dim int, nEntities, nRelations int64, rng *rand.Rand) *TransH {
	core, err := linkpred.NewTranslationCore(dim, nEntities, nRelations, dissim.L2, rng)
	if err != nil {
		panic(err)
	}

	th := &TransH{
		TranslationCore: core,
		normals:         embedding.NewStore(int(nRelations), dim, rng),
	}
	th.normals.NormalizeRows()
	core.Projection = th
	return th
}

// ProjectVec writes e - (e.w)w into dst, with w the relation's normal.
func (th *TransH) ProjectVec(dst, e []float64, relation int64) {
	w := th.normals.Row(relation)
	dot := 0.0
	for d := range e {
		dot += e[d] * w[d]
	}
	for d := range e {
		dst[d] = e[d] - dot*w[d]
	}
}

// ProjectTable projects every row of table onto the relation's hyperplane,
// returning a fresh table.
func (th *TransH) ProjectTable(table *mat.Dense, relation int64) *mat.Dense {
	rows, cols := table.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		th.ProjectVec(out.RawRowView(i), table.RawRowView(i), relation)
	}
	return out
}

// NormalizeParameters rescales entities to unit norm and renormalizes the
// relation normals, which drift during training.
func (th *TransH) NormalizeParameters() {
	th.TranslationCore.NormalizeParameters()
	th.normals.NormalizeRows()
}

// Normals returns the relation normal store. Used by trainers and tests.
func (th *TransH) Normals() *embedding.Store { return th.normals }
