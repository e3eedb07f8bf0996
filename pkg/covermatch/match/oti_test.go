package match

import (
	"testing"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"
)

// chordSequence returns frames whose mean pitch-class profile has a unique
// circular autocorrelation peak, so the transposition estimate is
// unambiguous.
func chordSequence(t *testing.T, bins ...int) *chroma.Sequence {
	t.Helper()
	frames := make([][]float64, len(bins))
	for i, b := range bins {
		f := make([]float64, chroma.NumBins)
		f[b] = 1
		frames[i] = f
	}
	seq, err := chroma.NewSequence(frames, 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	return seq
}

func TestEstimateTranspositionRecoversShift(t *testing.T) {
	a := chordSequence(t, 0, 0, 0, 4, 4, 7)
	for k := 0; k < chroma.NumBins; k++ {
		b := a.Rotated(k)
		if got := EstimateTransposition(a, b); got != k {
			t.Errorf("shift by %d estimated as %d", k, got)
		}
	}
}

func TestEstimateTranspositionDirection(t *testing.T) {
	a := chordSequence(t, 0, 0, 0, 4, 4, 7)
	for k := 1; k < chroma.NumBins; k++ {
		b := a.Rotated(k)
		want := chroma.NumBins - k
		if got := EstimateTransposition(b, a); got != want {
			t.Errorf("reverse estimate for shift %d = %d, want %d", k, got, want)
		}
	}
}

func TestEstimateTranspositionTieBreak(t *testing.T) {
	// Uniform profiles make every rotation equally good; the smallest
	// shift must win.
	frames := make([][]float64, 4)
	for i := range frames {
		f := make([]float64, chroma.NumBins)
		for b := range f {
			f[b] = 1
		}
		frames[i] = f
	}
	a, err := chroma.NewSequence(frames, 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	if got := EstimateTransposition(a, a); got != 0 {
		t.Errorf("ambiguous estimate = %d, want 0", got)
	}
}
