// Package match decides whether two chroma sequences belong to the same
// underlying musical performance. A comparison estimates the optimal
// transposition between the sequences, builds a cross-similarity matrix
// over the aligned pitch axes, extracts the best local alignment by
// dynamic programming and thresholds the normalized score.
//
// Every comparison is a pure computation over its two inputs: it owns its
// matrix and intermediate state exclusively, holds no global state and is
// safe to run concurrently with any other comparison.
package match

import (
	"context"
	"fmt"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"
)

// Result is the outcome of one pairwise comparison.
type Result struct {
	// Shift is the estimated transposition: b sounds Shift semitones
	// above a, with Shift in [0,11].
	Shift int `json:"shift"`

	// Score is the normalized alignment similarity (see Align).
	Score float64 `json:"score"`

	// Match is true when Score reached the threshold.
	Match bool `json:"match"`

	// Threshold is the threshold the verdict was made against.
	Threshold float64 `json:"threshold"`

	// PathLen, FramesA and FramesB describe the winning alignment for
	// diagnostics; the verdict does not depend on them.
	PathLen int `json:"path_len"`
	FramesA int `json:"frames_a"`
	FramesB int `json:"frames_b"`
}

// Compare runs the full pipeline for one pair of sequences. It is
// deterministic: the same inputs always produce the same Result. The
// score is symmetric in a and b even though Shift reports the direction
// from a to b.
//
// Sequences longer than p.MaxFrames are decimated first to bound the
// quadratic matrix cost. Sequences shorter than MinFrames (after
// decimation) yield ErrInsufficientData; a cancelled context yields
// ErrCancelled.
func Compare(ctx context.Context, a, b *chroma.Sequence, p Params) (*Result, error) {
	p = p.withDefaults()

	a = a.Decimate(p.MaxFrames)
	b = b.Decimate(p.MaxFrames)

	if a.Len() < MinFrames || b.Len() < MinFrames {
		return nil, fmt.Errorf("%w: sequences have %d and %d frames, need at least %d",
			ErrInsufficientData, a.Len(), b.Len(), MinFrames)
	}

	shift := EstimateTransposition(a, b)
	m := CrossSimilarity(a, b.Rotated(-shift), p.NoiseFloor)

	al, err := Align(ctx, m, p.GapPenalty)
	if err != nil {
		return nil, err
	}

	v := Decide(al.Score, p.Threshold)
	return &Result{
		Shift:     shift,
		Score:     v.Score,
		Match:     v.Match,
		Threshold: v.Threshold,
		PathLen:   al.PathLen,
		FramesA:   a.Len(),
		FramesB:   b.Len(),
	}, nil
}
