package match

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"
)

// Labeled couples a sequence with the identifier its results are reported
// under.
type Labeled struct {
	ID  string
	Seq *chroma.Sequence
}

// PairResult is the outcome for one unordered pair in a batch. Exactly
// one of Result and Err is set: a failed pair carries its error without
// affecting any other pair.
type PairResult struct {
	IDA, IDB string
	Result   *Result
	Err      error
}

// CompareAll compares every unordered pair of items: no self-pairs, no
// reversed duplicates. Fewer than two items produce an empty, non-nil
// result. Pairs are dispatched to a bounded worker pool; each comparison
// owns its own state, so there is no shared mutable state between
// workers. Results are returned in pair enumeration order regardless of
// completion order, and callers must not attach meaning to the order in
// which pairs finished.
//
// workers <= 0 selects one worker per CPU. Cancelling ctx abandons
// in-flight comparisons, which then report ErrCancelled in their slot.
func CompareAll(ctx context.Context, items []Labeled, p Params, workers int) []PairResult {
	if len(items) < 2 {
		return []PairResult{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	n := len(items)
	results := make([]PairResult, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			results = append(results, PairResult{IDA: items[i].ID, IDB: items[j].ID})
		}
	}

	g := &errgroup.Group{}
	g.SetLimit(workers)

	idx := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			slot := &results[idx]
			idx++
			a, b := items[i].Seq, items[j].Seq
			g.Go(func() error {
				// Errors stay pair-local; never fail the group.
				slot.Result, slot.Err = Compare(ctx, a, b, p)
				return nil
			})
		}
	}
	g.Wait()

	return results
}

// Rank compares query against every candidate and returns the results in
// candidate order. Ranking many candidates is exactly this loop over the
// pairwise engine; failed candidates carry their own error.
func Rank(ctx context.Context, query Labeled, candidates []Labeled, p Params, workers int) []PairResult {
	if len(candidates) == 0 {
		return []PairResult{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]PairResult, len(candidates))
	g := &errgroup.Group{}
	g.SetLimit(workers)

	for i, cand := range candidates {
		results[i] = PairResult{IDA: query.ID, IDB: cand.ID}
		slot := &results[i]
		seq := cand.Seq
		g.Go(func() error {
			slot.Result, slot.Err = Compare(ctx, query.Seq, seq, p)
			return nil
		})
	}
	g.Wait()

	return results
}
