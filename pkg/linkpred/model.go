package linkpred

import (
	"fmt"

	"github.com/cnclabs/kgrank/pkg/knowledge"
)

// Role selects which slot of a triple is being completed during ranking.
type Role int

const (
	// RoleTail holds head and relation fixed and ranks tail candidates.
	RoleTail Role = iota
	// RoleHead holds tail and relation fixed and ranks head candidates.
	RoleHead
)

func (r Role) String() string {
	switch r {
	case RoleTail:
		return "tail"
	case RoleHead:
		return "head"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// CandidateSet carries one batch's fixed-side embeddings together with the
// full entity catalog, in whatever representation the scoring family uses.
// It is built once per batch and reused by both the head and the tail pass.
type CandidateSet interface {
	BatchSize() int
	NumCandidates() int
}

// Model is the capability set shared by every embedding family. Higher score
// means a more plausible triple, for every implementation: translational
// models return negated dissimilarities, bilinear models return the trilinear
// compatibility value, so ranking by descending score is always the correct
// link-prediction ordering.
//
// Index arguments are trusted to be in range; out-of-range indexes fail in
// the underlying table lookup.
type Model interface {
	// ScoreTriples scores each (h[i], t[i], r[i]) triple.
	ScoreTriples(h, t, r []int64) []float64

	// NormalizeParameters re-normalizes embeddings to the norm the model
	// trains under. Implementations for which no normalization is needed
	// document the method as a no-op.
	NormalizeParameters()

	// EvaluationHelper gathers the batch's head, tail and relation
	// parameters and the full candidate tensor, projected into
	// relation-specific subspaces where the model requires it.
	EvaluationHelper(h, t, r []int64) CandidateSet

	// ComputeRanks ranks the true entity of each sample against every
	// candidate. entIdx and relIdx identify the fixed entity and relation
	// used to look up known true completions; trueIdx is the entity being
	// ranked. known may be nil, in which case no filtering happens.
	ComputeRanks(set CandidateSet, role Role, entIdx, relIdx, trueIdx []int64,
		known *knowledge.CompletionIndex) (raw, filtered []int64)
}

// BatchRanks holds the four per-sample rank vectors of one evaluated batch.
// Every entry is in [1, number of entities].
type BatchRanks struct {
	TailRank         []int64
	TailFilteredRank []int64
	HeadRank         []int64
	HeadFilteredRank []int64
}

// Forward scores a batch of positive triples and their negative counterparts,
// for consumption by an external training loop.
func Forward(m Model, heads, tails, negHeads, negTails, rels []int64) (pos, neg []float64) {
	return m.ScoreTriples(heads, tails, rels), m.ScoreTriples(negHeads, negTails, rels)
}

// EvaluateCandidates computes raw and filtered head and tail ranks for a
// batch of triples. The candidate tensor is built once and reused by both
// passes; nothing else is shared between them. headIndex maps
// (tail, relation) to known true heads, tailIndex maps (head, relation) to
// known true tails.
func EvaluateCandidates(m Model, h, t, r []int64, headIndex, tailIndex *knowledge.CompletionIndex) BatchRanks {
	set := m.EvaluationHelper(h, t, r)

	tailRank, tailFiltered := m.ComputeRanks(set, RoleTail, h, r, t, tailIndex)
	headRank, headFiltered := m.ComputeRanks(set, RoleHead, t, r, h, headIndex)

	return BatchRanks{
		TailRank:         tailRank,
		TailFilteredRank: tailFiltered,
		HeadRank:         headRank,
		HeadFilteredRank: headFiltered,
	}
}
