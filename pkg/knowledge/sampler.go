package knowledge

import (
	"math"
	"math/rand"
)

// aliasCell is one slot of a Walker/Vose alias table.
type aliasCell struct {
	Prob  float64
	Alias int64
}

// relationPool holds the entities observed in a relation together with an
// alias table over their occurrence counts, for O(1) weighted sampling.
type relationPool struct {
	entities []int64
	table    []aliasCell
}

// NegativeSampler draws corrupted heads and tails for training. Entities are
// sampled from the pool of entities seen in the triple's relation, weighted
// by occurrence count raised to power; relations without a pool fall back to
// uniform sampling over all entities.
type NegativeSampler struct {
	numEntities int64
	pools       map[int64]*relationPool
}

// NewNegativeSampler builds per-relation alias tables from the graph.
// power flattens (power < 1) or sharpens (power > 1) the frequency
// distribution; 1 keeps raw counts.
func NewNegativeSampler(kg *KnowledgeGraph, power float64) *NegativeSampler {
	counts := make(map[int64]map[int64]float64)
	for _, tr := range kg.Triples {
		c, ok := counts[tr.Relation]
		if !ok {
			c = make(map[int64]float64)
			counts[tr.Relation] = c
		}
		c[tr.Head]++
		c[tr.Tail]++
	}

	pools := make(map[int64]*relationPool, len(counts))
	for rel, c := range counts {
		pool := &relationPool{entities: make([]int64, 0, len(c))}
		weights := make([]float64, 0, len(c))
		for e, w := range c {
			pool.entities = append(pool.entities, e)
			weights = append(weights, w)
		}
		pool.table = buildAliasTable(weights, power)
		pools[rel] = pool
	}

	return &NegativeSampler{numEntities: kg.NumEntities, pools: pools}
}

// SampleHead draws a replacement head for the triple.
func (ns *NegativeSampler) SampleHead(tr Triple, rng *rand.Rand) int64 {
	return ns.sample(tr.Relation, rng)
}

// SampleTail draws a replacement tail for the triple.
func (ns *NegativeSampler) SampleTail(tr Triple, rng *rand.Rand) int64 {
	return ns.sample(tr.Relation, rng)
}

// Corrupt returns a copy of the triple with either its head or its tail
// replaced, each with probability 1/2.
func (ns *NegativeSampler) Corrupt(tr Triple, rng *rand.Rand) Triple {
	neg := tr
	if rng.Float64() < 0.5 {
		neg.Head = ns.SampleHead(tr, rng)
	} else {
		neg.Tail = ns.SampleTail(tr, rng)
	}
	return neg
}

func (ns *NegativeSampler) sample(relation int64, rng *rand.Rand) int64 {
	if pool, ok := ns.pools[relation]; ok && len(pool.entities) > 0 {
		return pool.entities[aliasSample(pool.table, rng)]
	}
	return rng.Int63n(ns.numEntities)
}

// buildAliasTable builds an alias table for O(1) weighted sampling using
// Vose's method. Weights are raised to power and normalized first.
func buildAliasTable(weights []float64, power float64) []aliasCell {
	n := len(weights)
	if n == 0 {
		return nil
	}

	table := make([]aliasCell, n)

	sum := 0.0
	norm := make([]float64, n)
	for i, w := range weights {
		if w > 0 {
			norm[i] = math.Pow(w, power)
		}
		sum += norm[i]
	}

	if sum == 0 {
		// Uniform distribution if all weights are zero
		for i := range table {
			table[i].Prob = 1.0
			table[i].Alias = int64(i)
		}
		return table
	}

	for i := range norm {
		norm[i] = norm[i] * float64(n) / sum
	}

	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if norm[i] < 1.0 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]

		g := large[len(large)-1]
		large = large[:len(large)-1]

		table[l].Prob = norm[l]
		table[l].Alias = int64(g)

		norm[g] = norm[g] + norm[l] - 1.0
		if norm[g] < 1.0 {
			small = append(small, g)
		} else {
			large = append(large, g)
		}
	}

	for len(large) > 0 {
		g := large[len(large)-1]
		large = large[:len(large)-1]
		table[g].Prob = 1.0
		table[g].Alias = int64(g)
	}
	for len(small) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		table[l].Prob = 1.0
		table[l].Alias = int64(l)
	}

	return table
}

// aliasSample draws an index from the alias table in O(1).
func aliasSample(table []aliasCell, rng *rand.Rand) int64 {
	i := rng.Intn(len(table))
	if rng.Float64() < table[i].Prob {
		return int64(i)
	}
	return table[i].Alias
}
