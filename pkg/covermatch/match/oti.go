package match

import "github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"

// EstimateTransposition returns the Optimal Transposition Index between
// two sequences: the shift s in [0,11] such that b sounds s semitones
// above a. It compares the L2-normalized mean chroma of a against every
// circular rotation of b's mean and keeps the rotation with the highest
// dot product. Ties resolve to the smallest shift, so "no transposition"
// wins when the evidence is ambiguous.
//
// Rotating every frame of b down by s (Rotated(-s)) aligns its pitch axis
// with a. The estimate never fails on valid sequences.
func EstimateTransposition(a, b *chroma.Sequence) int {
	meanA := a.Mean().Normalized()
	meanB := b.Mean().Normalized()

	best := 0
	bestScore := meanA.Dot(meanB)
	for s := 1; s < chroma.NumBins; s++ {
		if score := meanA.Dot(meanB.Rotate(-s)); score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}
