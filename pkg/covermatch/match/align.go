package match

import (
	"context"
	"fmt"
)

// Alignment is the outcome of the dynamic-programming pass: one scalar
// similarity plus the best path's endpoint and length for diagnostics.
type Alignment struct {
	// Score is the best accumulated path value divided by the length of
	// the shorter sequence. Nominally in [0,1]; highly self-similar
	// material can exceed 1 because accumulation is unbounded.
	Score float64

	// Raw is the unnormalized maximum accumulated value.
	Raw float64

	// PathLen is the number of cells on the winning local path.
	PathLen int

	// EndA and EndB index the cell where the winning path ends.
	EndA, EndB int
}

// Align reduces a cross-similarity matrix to one similarity score with a
// local-alignment recurrence in the style of Smith-Waterman:
//
//	H(i,j) = max(0,
//	             H(i-1,j-1) + s(i,j),
//	             H(i-1,j)   + s(i,j) - gap,
//	             H(i,j-1)   + s(i,j) - gap)
//
// Diagonal runs of high similarity accumulate freely, so proportional
// tempo differences stretch the path instead of breaking it, while the
// gap penalty keeps pure insertions expensive. The zero floor restarts
// the path, which makes the alignment local: covers that trim an intro or
// outro still score on their overlapping region. The winning value is the
// maximum over the whole matrix, not the final cell.
//
// Cancellation is observed between rows; an abandoned pass returns
// ErrCancelled and nothing else, so there is no partial result to leak.
func Align(ctx context.Context, m *Matrix, gapPenalty float64) (Alignment, error) {
	rows, cols := m.Rows(), m.Cols()
	if rows < MinFrames || cols < MinFrames {
		return Alignment{}, fmt.Errorf("%w: matrix is %dx%d, need at least %dx%d",
			ErrInsufficientData, rows, cols, MinFrames, MinFrames)
	}

	// Two rolling rows of accumulated scores and path lengths.
	prev := make([]float64, cols)
	cur := make([]float64, cols)
	prevLen := make([]int, cols)
	curLen := make([]int, cols)

	var best Alignment
	for i := 0; i < rows; i++ {
		if err := ctx.Err(); err != nil {
			return Alignment{}, fmt.Errorf("%w: %v", ErrCancelled, context.Cause(ctx))
		}

		for j := 0; j < cols; j++ {
			s := m.At(i, j)

			acc, steps := 0.0, 0
			if i > 0 && j > 0 && prev[j-1]+s > acc {
				acc, steps = prev[j-1]+s, prevLen[j-1]+1
			}
			if i > 0 && prev[j]+s-gapPenalty > acc {
				acc, steps = prev[j]+s-gapPenalty, prevLen[j]+1
			}
			if j > 0 && cur[j-1]+s-gapPenalty > acc {
				acc, steps = cur[j-1]+s-gapPenalty, curLen[j-1]+1
			}
			if s > acc {
				// A path may start anywhere.
				acc, steps = s, 1
			}
			cur[j], curLen[j] = acc, steps

			if acc > best.Raw {
				best.Raw = acc
				best.PathLen = steps
				best.EndA, best.EndB = i, j
			}
		}

		prev, cur = cur, prev
		prevLen, curLen = curLen, prevLen
	}

	short := rows
	if cols < short {
		short = cols
	}
	best.Score = best.Raw / float64(short)
	return best, nil
}
