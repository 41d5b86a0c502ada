package newsthreads

import (
	"math"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DistanceMatrix holds pairwise cosine distances between embeddings.
// It is symmetric with a zero diagonal and is not modified after construction.
type DistanceMatrix struct {
	n   int
	sym *mat.SymDense
}

// NewDistanceMatrix computes the cosine distance between every pair of points.
// All points must have the same, non-zero dimension.
func NewDistanceMatrix(points [][]float32) (*DistanceMatrix, error) {
	n := len(points)
	if n == 0 {
		return &DistanceMatrix{}, nil
	}
	dim, err := embeddingDimension(points)
	if err != nil {
		return nil, err
	}

	// Pack embeddings as float64 rows so gonum can operate on them directly.
	data := mat.NewDense(n, dim, nil)
	norms := make([]float64, n)
	for i, p := range points {
		row := data.RawRowView(i)
		for j, v := range p {
			row[j] = float64(v)
		}
		norms[i] = floats.Norm(row, 2)
	}

	sym := mat.NewSymDense(n, nil)

	// Rows are independent; each (i, j) cell with i <= j is written by exactly one goroutine.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range n {
		g.Go(func() error {
			a := data.RawRowView(i)
			sym.SetSym(i, i, 0)
			for j := i + 1; j < n; j++ {
				sym.SetSym(i, j, cosineDistance(a, data.RawRowView(j), norms[i], norms[j]))
			}
			return nil
		})
	}
	_ = g.Wait()

	return &DistanceMatrix{n: n, sym: sym}, nil
}

// Len returns the number of points.
func (m *DistanceMatrix) Len() int {
	return m.n
}

// At returns the distance between points i and j.
func (m *DistanceMatrix) At(i, j int) float64 {
	return m.sym.At(i, j)
}

// cosineDistance returns 1 - cos(a, b). A zero-norm vector is maximally
// dissimilar to everything. Identical vectors are exactly 0 apart.
func cosineDistance(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 1.0
	}
	if slices.Equal(a, b) {
		return 0
	}
	sim := floats.Dot(a, b) / (normA * normB)
	// Rounding can push similarity of parallel vectors slightly above 1.
	return math.Max(0, 1.0-sim)
}

// embeddingDimension returns the common dimension of points or an error if
// they disagree.
func embeddingDimension(points [][]float32) (int, error) {
	dim := len(points[0])
	if dim == 0 {
		return 0, invalidInput("point 0 has an empty embedding")
	}
	for i, p := range points[1:] {
		if len(p) != dim {
			return 0, invalidInput("embedding dimension mismatch: point %d has %d, want %d", i+1, len(p), dim)
		}
	}
	return dim, nil
}
