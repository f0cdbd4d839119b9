package linkpred

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/cnclabs/kgrank/pkg/dissim"
	"github.com/cnclabs/kgrank/pkg/embedding"
	"github.com/cnclabs/kgrank/pkg/knowledge"
)

// Projector maps entity embeddings into a relation-specific subspace before
// translational scoring. Models without relation subspaces leave the core's
// Projection nil, which is the identity.
type Projector interface {
	// ProjectVec writes the projection of e under relation into dst.
	// dst and e have the embedding dimension; dst may not alias e.
	ProjectVec(dst, e []float64, relation int64)

	// ProjectTable projects every row of the entity table under relation.
	ProjectTable(table *mat.Dense, relation int64) *mat.Dense
}

// TranslationCore implements scoring and ranking for the translational
// family: score(h, t, r) = -dissim(proj(h) + r, proj(t)).
type TranslationCore struct {
	Entities  *embedding.Store
	Relations *embedding.Store

	// Dissim is the distance behind the score. The None kind is only valid
	// for models that replace ScoreTriples and ComputeRanks wholesale.
	Dissim dissim.Kind

	// Projection is applied to entities and to the candidate table before
	// scoring; nil means identity.
	Projection Projector
}

// NewTranslationCore builds entity and relation stores of the given sizes.
// The dissimilarity kind is validated here; anything outside the enumerated
// set is rejected.
func NewTranslationCore(dim int, nEntities, nRelations int64, kind dissim.Kind, rng *rand.Rand) (*TranslationCore, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("linkpred: invalid dissimilarity kind %v", kind)
	}
	return &TranslationCore{
		Entities:  embedding.NewStore(int(nEntities), dim, rng),
		Relations: embedding.NewStore(int(nRelations), dim, rng),
		Dissim:    kind,
	}, nil
}

// ScoreTriples returns -dissim(proj(h) + r, proj(t)) per triple.
func (core *TranslationCore) ScoreTriples(h, t, r []int64) []float64 {
	dim := core.Entities.Dim()
	out := make([]float64, len(h))
	query := make([]float64, dim)
	ph := make([]float64, dim)
	pt := make([]float64, dim)
	for i := range h {
		he := core.Entities.Row(h[i])
		te := core.Entities.Row(t[i])
		if core.Projection != nil {
			core.Projection.ProjectVec(ph, he, r[i])
			core.Projection.ProjectVec(pt, te, r[i])
			he, te = ph, pt
		}
		re := core.Relations.Row(r[i])
		for d := 0; d < dim; d++ {
			query[d] = he[d] + re[d]
		}
		out[i] = -core.Dissim.Distance(query, te)
	}
	return out
}

// NormalizeParameters rescales entity embeddings to unit L2 norm. Relation
// embeddings are left as trained.
func (core *TranslationCore) NormalizeParameters() {
	core.Entities.NormalizeRows()
}

// TranslationCandidates is the translational CandidateSet: per-sample
// (projected) head/tail/relation vectors plus a per-sample candidate table.
// Identity-projection batches share one table pointer; projected batches
// share one table per distinct relation.
type TranslationCandidates struct {
	Head [][]float64
	Tail [][]float64
	Rel  [][]float64

	Candidates []*mat.Dense

	nCand int
}

func (c *TranslationCandidates) BatchSize() int     { return len(c.Head) }
func (c *TranslationCandidates) NumCandidates() int { return c.nCand }

// EvaluationHelper gathers batch embeddings and builds the candidate tensor.
// With a Projection set, the full entity table is projected once per distinct
// relation in the batch; head and tail vectors are gathered from the
// projected table so both ranking passes reuse the same projections.
func (core *TranslationCore) EvaluationHelper(h, t, r []int64) CandidateSet {
	b := len(h)
	set := &TranslationCandidates{
		Head:  make([][]float64, b),
		Tail:  make([][]float64, b),
		Rel:   make([][]float64, b),
		nCand: core.Entities.Len(),
	}

	if core.Projection == nil {
		set.Candidates = BroadcastCandidates(core.Entities.Matrix(), b)
	} else {
		set.Candidates = make([]*mat.Dense, b)
		projected := make(map[int64]*mat.Dense)
		for i := range h {
			table, ok := projected[r[i]]
			if !ok {
				table = core.Projection.ProjectTable(core.Entities.Matrix(), r[i])
				projected[r[i]] = table
			}
			set.Candidates[i] = table
		}
	}

	for i := range h {
		set.Head[i] = set.Candidates[i].RawRowView(int(h[i]))
		set.Tail[i] = set.Candidates[i].RawRowView(int(t[i]))
		set.Rel[i] = core.Relations.Row(r[i])
	}
	return set
}

// ComputeRanks ranks the true entity against every candidate. The tail pass
// measures dissim(h + r, candidate); the head pass measures
// dissim(candidate, t - r), which equals dissim(candidate + r, t).
func (core *TranslationCore) ComputeRanks(set CandidateSet, role Role, entIdx, relIdx, trueIdx []int64,
	known *knowledge.CompletionIndex) (raw, filtered []int64) {

	tc, ok := set.(*TranslationCandidates)
	if !ok {
		panic("linkpred: candidate set does not belong to the translational family")
	}

	b := tc.BatchSize()
	raw = make([]int64, b)
	filtered = make([]int64, b)

	dim := core.Entities.Dim()
	query := make([]float64, dim)
	scores := make([]float64, tc.nCand)

	for i := 0; i < b; i++ {
		rel := tc.Rel[i]
		switch role {
		case RoleTail:
			head := tc.Head[i]
			for d := 0; d < dim; d++ {
				query[d] = head[d] + rel[d]
			}
		case RoleHead:
			tail := tc.Tail[i]
			for d := 0; d < dim; d++ {
				query[d] = tail[d] - rel[d]
			}
		}

		core.Dissim.RowDistances(scores, query, tc.Candidates[i])
		for j := range scores {
			scores[j] = -scores[j]
		}

		raw[i], filtered[i] = RanksFromScores(scores, trueIdx[i], entIdx[i], relIdx[i], known)
	}
	return raw, filtered
}
