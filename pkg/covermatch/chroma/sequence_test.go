package chroma

import (
	"math"
	"testing"
)

func oneHotFrames(bins ...int) [][]float64 {
	frames := make([][]float64, len(bins))
	for i, b := range bins {
		f := make([]float64, NumBins)
		f[b] = 1
		frames[i] = f
	}
	return frames
}

func TestNewSequence(t *testing.T) {
	seq, err := NewSequence(oneHotFrames(0, 4, 7), 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	if seq.Len() != 3 {
		t.Errorf("Len() = %d, want 3", seq.Len())
	}
	if seq.HopSeconds() != 0.05 {
		t.Errorf("HopSeconds() = %g, want 0.05", seq.HopSeconds())
	}
	if got := seq.Duration(); math.Abs(got-0.15) > 1e-12 {
		t.Errorf("Duration() = %g, want 0.15", got)
	}
	if seq.At(1)[4] != 1 {
		t.Errorf("At(1) = %v, want energy at bin 4", seq.At(1))
	}
}

func TestNewSequenceRejectsEmpty(t *testing.T) {
	if _, err := NewSequence(nil, 0.05); err == nil {
		t.Fatal("expected error for empty sequence")
	}
}

func TestNewSequenceRejectsBadFrame(t *testing.T) {
	frames := oneHotFrames(0, 1)
	frames[1] = []float64{1, 2, 3}
	if _, err := NewSequence(frames, 0.05); err == nil {
		t.Fatal("expected error for malformed frame")
	}
}

func TestMean(t *testing.T) {
	seq, err := NewSequence(oneHotFrames(0, 0, 6), 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	m := seq.Mean()
	if math.Abs(m[0]-2.0/3) > 1e-12 || math.Abs(m[6]-1.0/3) > 1e-12 {
		t.Errorf("Mean() = %v, want 2/3 at bin 0 and 1/3 at bin 6", m)
	}
}

func TestRotated(t *testing.T) {
	seq, err := NewSequence(oneHotFrames(0, 5), 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	r := seq.Rotated(3)
	if r.At(0)[3] != 1 || r.At(1)[8] != 1 {
		t.Errorf("Rotated(3) frames = %v, %v", r.At(0), r.At(1))
	}
	// Original is untouched.
	if seq.At(0)[0] != 1 {
		t.Error("Rotated mutated the source sequence")
	}
}

func TestDecimate(t *testing.T) {
	frames := make([][]float64, 100)
	for i := range frames {
		f := make([]float64, NumBins)
		f[i%NumBins] = 1
		frames[i] = f
	}
	seq, err := NewSequence(frames, 0.01)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}

	d := seq.Decimate(25)
	if d.Len() != 25 {
		t.Fatalf("Decimate(25).Len() = %d, want 25", d.Len())
	}
	// Hop grows to keep duration stable.
	if math.Abs(d.Duration()-seq.Duration()) > 1e-9 {
		t.Errorf("Duration changed from %g to %g", seq.Duration(), d.Duration())
	}
	// Each output frame averages 4 inputs, so total mass per frame stays 1.
	var mass float64
	for _, x := range d.At(0) {
		mass += x
	}
	if math.Abs(mass-1) > 1e-12 {
		t.Errorf("block average mass = %g, want 1", mass)
	}

	if got := seq.Decimate(200); got != seq {
		t.Error("Decimate above length should return the sequence unchanged")
	}
	if got := seq.Decimate(0); got != seq {
		t.Error("Decimate(0) should disable decimation")
	}
}
