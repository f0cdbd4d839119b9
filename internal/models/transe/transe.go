package transe

import (
	"fmt"
	"math/rand"

	"github.com/cnclabs/kgrank/pkg/dissim"
	"github.com/cnclabs/kgrank/pkg/linkpred"
)

// TransE models relations as translations in the embedding space: h + r ≈ t.
// The score of a triple is the negated L1 or L2 distance between h+r and t.
type TransE struct {
	*linkpred.TranslationCore
}

var _ linkpred.Model = (*TransE)(nil)

// New builds a TransE model. kind must be L1 or L2; None has no meaning here
// because TransE carries no distance of its own.
func New(dim int, nEntities, nRelations int64, kind dissim.Kind, rng *rand.Rand) (*TransE, error) {
	if kind == dissim.None {
		return nil, fmt.Errorf("transe: dissimilarity kind must be L1 or L2, got %v", kind)
	}
	core, err := linkpred.NewTranslationCore(dim, nEntities, nRelations, kind, rng)
	if err != nil {
		return nil, err
	}
	// Entity embeddings start on the unit sphere, matching the norm
	// NormalizeParameters maintains between gradient steps.
	core.Entities.NormalizeRows()
	return &TransE{TranslationCore: core}, nil
}
