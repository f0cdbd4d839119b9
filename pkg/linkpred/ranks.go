package linkpred

import "github.com/cnclabs/kgrank/pkg/knowledge"

// RanksFromScores computes the raw and filtered rank of the true candidate
// within a score vector (higher score = more plausible).
//
// The raw rank is 1 plus the number of candidates scoring strictly higher
// than the true one, so the true candidate never counts against itself and
// tied candidates share the better rank; the best possible rank is 1.
//
// Filtering masks every *other* known true completion of (entity, relation)
// to the least-plausible sentinel before ranking; the true candidate keeps
// its real score. The masking is applied as a count subtraction, which yields
// the same rank as scattering -Inf into a copy of the scores. When the index
// has no entry for (entity, relation), or known is nil, filtering is skipped
// and both ranks are equal.
func RanksFromScores(scores []float64, trueIdx, entity, relation int64,
	known *knowledge.CompletionIndex) (raw, filtered int64) {

	trueScore := scores[trueIdx]

	better := 0
	for _, s := range scores {
		if s > trueScore {
			better++
		}
	}
	raw = int64(better) + 1

	if known == nil {
		return raw, raw
	}
	targets, ok := known.Targets(entity, relation)
	if !ok {
		return raw, raw
	}

	masked := 0
	for _, j := range targets {
		if j != trueIdx && scores[j] > trueScore {
			masked++
		}
	}
	filtered = raw - int64(masked)
	return raw, filtered
}
