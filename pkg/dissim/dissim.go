package dissim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Kind selects the dissimilarity function used by translational models.
// Lower dissimilarity = more plausible triple.
type Kind int

const (
	// None means the concrete model supplies its own distance.
	None Kind = iota
	// L1 is the Manhattan distance.
	L1
	// L2 is the Euclidean distance.
	L2
)

// ParseKind parses a dissimilarity name ("L1", "L2", "none").
func ParseKind(name string) (Kind, error) {
	switch name {
	case "L1", "l1":
		return L1, nil
	case "L2", "l2":
		return L2, nil
	case "none", "":
		return None, nil
	}
	return None, fmt.Errorf("dissim: unknown dissimilarity kind %q", name)
}

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool {
	return k == None || k == L1 || k == L2
}

func (k Kind) String() string {
	switch k {
	case L1:
		return "L1"
	case L2:
		return "L2"
	case None:
		return "none"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Distance computes the dissimilarity between two equal-length vectors.
// Calling Distance on the None kind is a programming error.
func (k Kind) Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("dissim: vector length mismatch")
	}
	switch k {
	case L1:
		d := 0.0
		for i := range a {
			d += math.Abs(a[i] - b[i])
		}
		return d
	case L2:
		d := 0.0
		for i := range a {
			diff := a[i] - b[i]
			d += diff * diff
		}
		return math.Sqrt(d)
	}
	panic("dissim: Distance called on the none kind")
}

// RowDistances fills dst with the dissimilarity between query and every row of
// table. dst must have length table-rows and query length table-columns.
func (k Kind) RowDistances(dst []float64, query []float64, table *mat.Dense) {
	rows, cols := table.Dims()
	if len(dst) != rows {
		panic("dissim: dst length does not match table rows")
	}
	if len(query) != cols {
		panic("dissim: query length does not match table columns")
	}
	for i := 0; i < rows; i++ {
		dst[i] = k.Distance(query, table.RawRowView(i))
	}
}
