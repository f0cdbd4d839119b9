package rescal

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/kgrank/pkg/embedding"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// RESCAL scores triples with a full bilinear form h'·R·t, one dense
// (dim x dim) matrix R per relation.
type RESCAL struct {
	*linkpred.BilinearCore

	matrices matrixBank
}

var _ linkpred.Model = (*RESCAL)(nil)

type matrixBank []*mat.Dense

func (b matrixBank) Op(relation int64) linkpred.RelationOp {
	return linkpred.MatrixOp{M: b[relation]}
}

// New builds a RESCAL model with randomly initialized entity embeddings and
// relation matrices.
func New(dim int, nEntities, nRelations int64, rng *rand.Rand) *RESCAL {
	bank := make(matrixBank, nRelations)
	for i := range bank {
		m := mat.NewDense(dim, dim, nil)
		for r := 0; r < dim; r++ {
			row := m.RawRowView(r)
			for c := 0; c < dim; c++ {
				row[c] = (rng.Float64() - 0.5) / float64(dim)
			}
		}
		bank[i] = m
	}

	return &RESCAL{
		BilinearCore: &linkpred.BilinearCore{
			Entities:  embedding.NewStore(int(nEntities), dim, rng),
			Relations: bank,
		},
		matrices: bank,
	}
}

// RelationMatrix returns relation's matrix. Used by trainers and tests.
func (m *RESCAL) RelationMatrix(relation int64) *mat.Dense {
	return m.matrices[relation]
}
