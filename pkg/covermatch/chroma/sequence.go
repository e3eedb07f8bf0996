package chroma

import "fmt"

// Sequence is an ordered, immutable run of chroma vectors, one per
// analysis frame, together with the hop duration between frames. The hop
// is carried for reporting only; the matching math never consumes it.
type Sequence struct {
	frames     []Vector
	hopSeconds float64
}

// NewSequence validates frames and wraps them in a Sequence. The input
// slice is copied, so callers may reuse their buffers.
func NewSequence(frames [][]float64, hopSeconds float64) (*Sequence, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: sequence is empty", ErrInvalidFeatureData)
	}
	vs := make([]Vector, len(frames))
	for i, f := range frames {
		v, err := NewVector(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		vs[i] = v
	}
	return &Sequence{frames: vs, hopSeconds: hopSeconds}, nil
}

// NewSequenceFromVectors builds a Sequence from already-validated vectors.
func NewSequenceFromVectors(frames []Vector, hopSeconds float64) (*Sequence, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: sequence is empty", ErrInvalidFeatureData)
	}
	vs := make([]Vector, len(frames))
	copy(vs, frames)
	return &Sequence{frames: vs, hopSeconds: hopSeconds}, nil
}

// Len returns the number of frames.
func (s *Sequence) Len() int {
	return len(s.frames)
}

// At returns the frame at index i.
func (s *Sequence) At(i int) Vector {
	return s.frames[i]
}

// HopSeconds returns the hop duration between frames in seconds.
func (s *Sequence) HopSeconds() float64 {
	return s.hopSeconds
}

// Duration returns the nominal duration covered by the sequence in seconds.
func (s *Sequence) Duration() float64 {
	return float64(len(s.frames)) * s.hopSeconds
}

// Mean returns the element-wise average chroma vector over all frames.
func (s *Sequence) Mean() Vector {
	var m Vector
	for _, f := range s.frames {
		for i, x := range f {
			m[i] += x
		}
	}
	n := float64(len(s.frames))
	for i := range m {
		m[i] /= n
	}
	return m
}

// Rotated returns a copy of s with every frame circularly shifted by
// semitones (see Vector.Rotate).
func (s *Sequence) Rotated(semitones int) *Sequence {
	out := make([]Vector, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.Rotate(semitones)
	}
	return &Sequence{frames: out, hopSeconds: s.hopSeconds}
}

// Decimate reduces the sequence to at most maxFrames frames by averaging
// consecutive blocks. It bounds the cost of the frame-by-frame similarity
// matrix, which is quadratic in sequence length. Sequences already within
// the limit are returned unchanged.
func (s *Sequence) Decimate(maxFrames int) *Sequence {
	n := len(s.frames)
	if maxFrames <= 0 || n <= maxFrames {
		return s
	}

	out := make([]Vector, 0, maxFrames)
	for b := 0; b < maxFrames; b++ {
		start := b * n / maxFrames
		end := (b + 1) * n / maxFrames
		if end <= start {
			end = start + 1
		}
		var avg Vector
		for _, f := range s.frames[start:end] {
			for i, x := range f {
				avg[i] += x
			}
		}
		w := float64(end - start)
		for i := range avg {
			avg[i] /= w
		}
		out = append(out, avg)
	}

	hop := s.hopSeconds * float64(n) / float64(maxFrames)
	return &Sequence{frames: out, hopSeconds: hop}
}
