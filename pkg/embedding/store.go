package embedding

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Store owns a dense (n x dim) embedding table. Rows are indexed 0..n-1.
// The table is read-only during scoring and ranking; only an external
// training procedure mutates it, never concurrently with an evaluation pass.
type Store struct {
	n   int
	dim int
	w   *mat.Dense
}

// NewStore creates a store with rows initialized uniformly in [-1/(2*dim), 1/(2*dim)).
func NewStore(n, dim int, rng *rand.Rand) *Store {
	s := &Store{
		n:   n,
		dim: dim,
		w:   mat.NewDense(n, dim, nil),
	}
	for i := 0; i < n; i++ {
		row := s.w.RawRowView(i)
		for d := 0; d < dim; d++ {
			row[d] = (rng.Float64() - 0.5) / float64(dim)
		}
	}
	return s
}

// Len returns the number of rows.
func (s *Store) Len() int { return s.n }

// Dim returns the row width.
func (s *Store) Dim() int { return s.dim }

// Row returns the backing slice of row i. The caller must not hold it across
// a training step.
func (s *Store) Row(i int64) []float64 {
	return s.w.RawRowView(int(i))
}

// Vec returns row i as a gonum vector view.
func (s *Store) Vec(i int64) *mat.VecDense {
	return s.w.RowView(int(i)).(*mat.VecDense)
}

// Matrix returns the whole (n x dim) table.
func (s *Store) Matrix() *mat.Dense { return s.w }

// SetRow overwrites row i. Used by trainers and test fixtures.
func (s *Store) SetRow(i int64, v []float64) {
	s.w.SetRow(int(i), v)
}

// NormalizeRows rescales every row to unit L2 norm. Near-zero rows are left
// untouched to avoid dividing by zero.
func (s *Store) NormalizeRows() {
	for i := 0; i < s.n; i++ {
		normalizeRow(s.w.RawRowView(i))
	}
}

// NormalizeRow rescales a single row to unit L2 norm.
func (s *Store) NormalizeRow(i int64) {
	normalizeRow(s.w.RawRowView(int(i)))
}

func normalizeRow(row []float64) {
	norm := 0.0
	for _, v := range row {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm <= 1e-10 {
		return
	}
	for d := range row {
		row[d] /= norm
	}
}
