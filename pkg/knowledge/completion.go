package knowledge

type pairKey struct {
	Entity   int64
	Relation int64
}

// CompletionIndex maps an (entity, relation) pair to the set of entity
// indexes known to complete a true fact in the missing slot. It is built once
// from the full graph and is read-only during evaluation.
type CompletionIndex struct {
	targets map[pairKey][]int64
	seen    map[pairKey]map[int64]struct{}
}

// NewCompletionIndex creates an empty index.
func NewCompletionIndex() *CompletionIndex {
	return &CompletionIndex{
		targets: make(map[pairKey][]int64),
		seen:    make(map[pairKey]map[int64]struct{}),
	}
}

// Add records target as a true completion of (entity, relation). Duplicates
// are ignored.
func (ix *CompletionIndex) Add(entity, relation, target int64) {
	key := pairKey{Entity: entity, Relation: relation}
	set, ok := ix.seen[key]
	if !ok {
		set = make(map[int64]struct{})
		ix.seen[key] = set
	}
	if _, dup := set[target]; dup {
		return
	}
	set[target] = struct{}{}
	ix.targets[key] = append(ix.targets[key], target)
}

// Targets returns every known true completion of (entity, relation). The
// second return value is false when the pair was never seen; callers must
// then skip filtering rather than fail. The returned slice must not be
// mutated.
func (ix *CompletionIndex) Targets(entity, relation int64) ([]int64, bool) {
	t, ok := ix.targets[pairKey{Entity: entity, Relation: relation}]
	return t, ok
}

// Len returns the number of (entity, relation) pairs in the index.
func (ix *CompletionIndex) Len() int { return len(ix.targets) }
