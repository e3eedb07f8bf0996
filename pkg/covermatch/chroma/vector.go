// Package chroma defines the 12-bin harmonic pitch-class profile (HPCP)
// representation used by the matching engine, and extracts it from audio
// samples. A chroma vector holds the relative energy of each pitch class
// (C through B) in one analysis frame, independent of octave.
package chroma

import (
	"fmt"
	"math"
)

// NumBins is the number of pitch classes in a chroma vector.
const NumBins = 12

// Vector is a single-frame chroma vector. Values are non-negative and
// finite; construction via NewVector enforces this.
type Vector [NumBins]float64

// NewVector validates vals and returns them as a Vector.
func NewVector(vals []float64) (Vector, error) {
	var v Vector
	if len(vals) != NumBins {
		return v, fmt.Errorf("%w: vector has %d bins, want %d", ErrInvalidFeatureData, len(vals), NumBins)
	}
	for i, x := range vals {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return v, fmt.Errorf("%w: bin %d is not finite", ErrInvalidFeatureData, i)
		}
		if x < 0 {
			return v, fmt.Errorf("%w: bin %d is negative (%g)", ErrInvalidFeatureData, i, x)
		}
		v[i] = x
	}
	return v, nil
}

// Norm returns the L2 norm of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalized returns v scaled to unit L2 norm. A zero vector is returned
// unchanged so silent frames stay silent.
func (v Vector) Normalized() Vector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	var out Vector
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// Dot returns the dot product of v and w.
func (v Vector) Dot(w Vector) float64 {
	var sum float64
	for i := range v {
		sum += v[i] * w[i]
	}
	return sum
}

// Cosine returns the cosine similarity of v and w. If either vector has
// zero norm the result is 0, so near-silent frames never count as a match.
func (v Vector) Cosine(w Vector) float64 {
	nv, nw := v.Norm(), w.Norm()
	if nv == 0 || nw == 0 {
		return 0
	}
	return v.Dot(w) / (nv * nw)
}

// Rotate circularly shifts the pitch axis by semitones. Positive values
// transpose the harmonic content up: energy at bin i moves to bin
// (i+semitones) mod 12. Negative values transpose down.
func (v Vector) Rotate(semitones int) Vector {
	k := ((semitones % NumBins) + NumBins) % NumBins
	if k == 0 {
		return v
	}
	var out Vector
	for i, x := range v {
		out[(i+k)%NumBins] = x
	}
	return out
}
