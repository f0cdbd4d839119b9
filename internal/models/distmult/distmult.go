package distmult

import (
	"math/rand"

	"github.com/cnclabs/kgrank/pkg/embedding"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// DistMult restricts the bilinear form to a diagonal relation matrix:
// score = sum_d h_d * r_d * t_d. The form is symmetric in h and t, which
// makes DistMult cheap but blind to relation direction.
type DistMult struct {
	*linkpred.BilinearCore

	relations *embedding.Store
}

var _ linkpred.Model = (*DistMult)(nil)

type diagonalBank struct {
	store *embedding.Store
}

func (b diagonalBank) Op(relation int64) linkpred.RelationOp {
	return linkpred.DiagonalOp{D: b.store.Row(relation)}
}

// New builds a DistMult model.
func New(dim int, nEntities, nRelations int64, rng *rand.Rand) *DistMult {
	relations := embedding.NewStore(int(nRelations), dim, rng)
	return &DistMult{
		BilinearCore: &linkpred.BilinearCore{
			Entities:  embedding.NewStore(int(nEntities), dim, rng),
			Relations: diagonalBank{store: relations},
		},
		relations: relations,
	}
}

// Relations returns the diagonal relation store. Used by trainers and tests.
func (m *DistMult) Relations() *embedding.Store { return m.relations }
