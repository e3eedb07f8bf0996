package match

import "github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"

// Matrix is a dense |A| x |B| grid of local frame similarities. It lives
// for a single comparison and is discarded with it.
type Matrix struct {
	rows, cols int
	vals       []float64
}

// At returns the similarity of frame i of A and frame j of B.
func (m *Matrix) At(i, j int) float64 {
	return m.vals[i*m.cols+j]
}

// Rows returns the number of A frames.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of B frames.
func (m *Matrix) Cols() int { return m.cols }

// CrossSimilarity builds the frame-by-frame similarity matrix between a
// and b. The caller is expected to have rotated b onto a's pitch axis
// already (see EstimateTransposition). Each cell holds the cosine
// similarity of the two frames rescaled against noiseFloor:
//
//	s' = max(0, (cos - floor) / (1 - floor))
//
// which zeroes the high baseline correlation of unrelated non-negative
// chroma vectors. Near-silent frames score 0 outright. Construction is
// O(|A|*|B|) and dominates the cost of a comparison.
func CrossSimilarity(a, b *chroma.Sequence, noiseFloor float64) *Matrix {
	rows, cols := a.Len(), b.Len()

	// Normalizing every frame once keeps the inner loop a plain dot product.
	na := make([]chroma.Vector, rows)
	for i := range na {
		na[i] = a.At(i).Normalized()
	}
	nb := make([]chroma.Vector, cols)
	for j := range nb {
		nb[j] = b.At(j).Normalized()
	}

	scale := 1 - noiseFloor
	m := &Matrix{rows: rows, cols: cols, vals: make([]float64, rows*cols)}
	for i := 0; i < rows; i++ {
		row := m.vals[i*cols : (i+1)*cols]
		for j := 0; j < cols; j++ {
			s := (na[i].Dot(nb[j]) - noiseFloor) / scale
			if s > 0 {
				row[j] = s
			}
		}
	}
	return m
}
