package linkpred

import "gonum.org/v1/gonum/mat"

// BroadcastCandidates aligns the full (entities x dim) table with every
// sample of a batch. The table is shared by pointer, never copied; callers
// treat it as read-only.
func BroadcastCandidates(table *mat.Dense, batchSize int) []*mat.Dense {
	out := make([]*mat.Dense, batchSize)
	for i := range out {
		out[i] = table
	}
	return out
}
