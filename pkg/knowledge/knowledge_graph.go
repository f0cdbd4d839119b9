package knowledge

// Triple represents a knowledge graph fact (head, relation, tail) as indexes
// into the entity and relation tables.
type Triple struct {
	Head     int64
	Relation int64
	Tail     int64
}

// KnowledgeGraph is an in-memory knowledge graph. Triples are added either by
// index (AddTriple) or by name (AddFact); names are interned to dense ids.
// The graph also maintains the two completion indexes used by filtered
// link-prediction evaluation.
type KnowledgeGraph struct {
	// Entity and relation name interning
	EntityHash   map[string]int64
	RelationHash map[string]int64
	EntityKeys   []string
	RelationKeys []string

	// Triples
	Triples []Triple

	// Statistics
	NumEntities  int64
	NumRelations int64
	NumTriples   int64

	// TailCompletions maps (head, relation) to every known true tail.
	// HeadCompletions maps (tail, relation) to every known true head.
	TailCompletions *CompletionIndex
	HeadCompletions *CompletionIndex
}

// NewKnowledgeGraph creates an empty knowledge graph.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		EntityHash:      make(map[string]int64),
		RelationHash:    make(map[string]int64),
		TailCompletions: NewCompletionIndex(),
		HeadCompletions: NewCompletionIndex(),
	}
}

// AddTriple appends a triple given by raw indexes. Entity and relation counts
// grow to cover the largest index seen.
func (kg *KnowledgeGraph) AddTriple(head, relation, tail int64) {
	kg.Triples = append(kg.Triples, Triple{Head: head, Relation: relation, Tail: tail})
	kg.NumTriples = int64(len(kg.Triples))

	if head >= kg.NumEntities {
		kg.NumEntities = head + 1
	}
	if tail >= kg.NumEntities {
		kg.NumEntities = tail + 1
	}
	if relation >= kg.NumRelations {
		kg.NumRelations = relation + 1
	}

	kg.TailCompletions.Add(head, relation, tail)
	kg.HeadCompletions.Add(tail, relation, head)
}

// AddFact appends a triple given by names, interning them as needed, and
// returns the indexed triple.
func (kg *KnowledgeGraph) AddFact(head, relation, tail string) Triple {
	h := kg.getOrCreateEntity(head)
	r := kg.getOrCreateRelation(relation)
	t := kg.getOrCreateEntity(tail)
	kg.AddTriple(h, r, t)
	return Triple{Head: h, Relation: r, Tail: t}
}

func (kg *KnowledgeGraph) getOrCreateEntity(name string) int64 {
	if id, exists := kg.EntityHash[name]; exists {
		return id
	}
	id := int64(len(kg.EntityKeys))
	kg.EntityHash[name] = id
	kg.EntityKeys = append(kg.EntityKeys, name)
	if id >= kg.NumEntities {
		kg.NumEntities = id + 1
	}
	return id
}

func (kg *KnowledgeGraph) getOrCreateRelation(name string) int64 {
	if id, exists := kg.RelationHash[name]; exists {
		return id
	}
	id := int64(len(kg.RelationKeys))
	kg.RelationHash[name] = id
	kg.RelationKeys = append(kg.RelationKeys, name)
	if id >= kg.NumRelations {
		kg.NumRelations = id + 1
	}
	return id
}

// GetEntityName returns the name of an entity, or "" for unnamed indexes.
func (kg *KnowledgeGraph) GetEntityName(id int64) string {
	if id < 0 || id >= int64(len(kg.EntityKeys)) {
		return ""
	}
	return kg.EntityKeys[id]
}

// GetRelationName returns the name of a relation, or "" for unnamed indexes.
func (kg *KnowledgeGraph) GetRelationName(id int64) string {
	if id < 0 || id >= int64(len(kg.RelationKeys)) {
		return ""
	}
	return kg.RelationKeys[id]
}

// GetTriple returns the triple at the given position.
func (kg *KnowledgeGraph) GetTriple(idx int64) Triple {
	if idx < 0 || idx >= int64(len(kg.Triples)) {
		return Triple{}
	}
	return kg.Triples[idx]
}

// Batch holds parallel head/tail/relation index slices for a group of triples.
type Batch struct {
	Head []int64
	Tail []int64
	Rel  []int64
}

// Size returns the number of triples in the batch.
func (b Batch) Size() int { return len(b.Head) }

// Batches splits the graph's triples into batches of the given size, in
// insertion order. The last batch may be short.
func (kg *KnowledgeGraph) Batches(size int) []Batch {
	if size <= 0 {
		size = 1
	}
	n := len(kg.Triples)
	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		b := Batch{
			Head: make([]int64, 0, end-start),
			Tail: make([]int64, 0, end-start),
			Rel:  make([]int64, 0, end-start),
		}
		for _, tr := range kg.Triples[start:end] {
			b.Head = append(b.Head, tr.Head)
			b.Tail = append(b.Tail, tr.Tail)
			b.Rel = append(b.Rel, tr.Relation)
		}
		batches = append(batches, b)
	}
	return batches
}
