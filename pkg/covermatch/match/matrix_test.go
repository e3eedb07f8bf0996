package match

import (
	"math"
	"testing"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"
)

func TestCrossSimilarityIdenticalFrames(t *testing.T) {
	a := chordSequence(t, 0, 4, 7)
	m := CrossSimilarity(a, a, DefaultNoiseFloor)

	if m.Rows() != 3 || m.Cols() != 3 {
		t.Fatalf("matrix is %dx%d, want 3x3", m.Rows(), m.Cols())
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			got := m.At(i, j)
			if i == j {
				if math.Abs(got-1) > 1e-12 {
					t.Errorf("At(%d,%d) = %g, want 1", i, j, got)
				}
			} else if got != 0 {
				// Distinct pitch classes are orthogonal, well below the floor.
				t.Errorf("At(%d,%d) = %g, want 0", i, j, got)
			}
		}
	}
}

func TestCrossSimilarityNoiseFloorRescale(t *testing.T) {
	two := make([]float64, chroma.NumBins)
	two[0], two[1] = 1, 1
	one := make([]float64, chroma.NumBins)
	one[0] = 1

	a, err := chroma.NewSequence([][]float64{two, two}, 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	b, err := chroma.NewSequence([][]float64{one, one}, 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}

	m := CrossSimilarity(a, b, DefaultNoiseFloor)
	cos := 1 / math.Sqrt2
	want := (cos - DefaultNoiseFloor) / (1 - DefaultNoiseFloor)
	if got := m.At(0, 0); math.Abs(got-want) > 1e-12 {
		t.Errorf("At(0,0) = %g, want %g", got, want)
	}
}

func TestCrossSimilaritySilentFrame(t *testing.T) {
	silent := make([]float64, chroma.NumBins)
	loud := make([]float64, chroma.NumBins)
	loud[0] = 1

	a, err := chroma.NewSequence([][]float64{silent, loud}, 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}

	m := CrossSimilarity(a, a, DefaultNoiseFloor)
	if got := m.At(0, 0); got != 0 {
		t.Errorf("silent vs silent = %g, want 0", got)
	}
	if got := m.At(0, 1); got != 0 {
		t.Errorf("silent vs loud = %g, want 0", got)
	}
	if got := m.At(1, 1); math.Abs(got-1) > 1e-12 {
		t.Errorf("loud vs loud = %g, want 1", got)
	}
}
