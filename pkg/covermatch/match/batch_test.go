package match

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestCompareAllEnumeratesUnorderedPairs(t *testing.T) {
	items := []Labeled{
		{ID: "a", Seq: chordSequence(t, 0, 0, 4, 7)},
		{ID: "b", Seq: chordSequence(t, 0, 0, 4, 7).Rotated(2)},
		{ID: "c", Seq: chordSequence(t, 1, 6, 1, 6)},
	}

	results := CompareAll(context.Background(), items, Params{}, 2)
	if len(results) != 3 {
		t.Fatalf("got %d pairs, want 3", len(results))
	}

	wantPairs := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	for i, want := range wantPairs {
		if results[i].IDA != want[0] || results[i].IDB != want[1] {
			t.Errorf("pair %d = (%s,%s), want (%s,%s)",
				i, results[i].IDA, results[i].IDB, want[0], want[1])
		}
		if results[i].Err != nil {
			t.Errorf("pair %d failed: %v", i, results[i].Err)
		}
	}

	// Transposed copy of a matches, unrelated c does not under any
	// rotation.
	if !results[0].Result.Match {
		t.Errorf("a vs b should match, score %g", results[0].Result.Score)
	}
	if results[1].Result.Match {
		t.Errorf("a vs c should not match, score %g", results[1].Result.Score)
	}
	if results[2].Result.Match {
		t.Errorf("b vs c should not match, score %g", results[2].Result.Score)
	}
}

func TestCompareAllMatchesPairwiseEngine(t *testing.T) {
	a := chordSequence(t, 0, 0, 4, 7, 4)
	b := chordSequence(t, 3, 3, 7, 10, 7)
	items := []Labeled{{ID: "a", Seq: a}, {ID: "b", Seq: b}}

	direct, err := Compare(context.Background(), a, b, Params{})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	results := CompareAll(context.Background(), items, Params{}, 1)
	if len(results) != 1 {
		t.Fatalf("got %d pairs, want 1", len(results))
	}
	got := results[0].Result
	if got == nil {
		t.Fatalf("batch pair failed: %v", results[0].Err)
	}
	if math.Abs(got.Score-direct.Score) > 1e-12 || got.Shift != direct.Shift {
		t.Errorf("batch result %+v differs from direct %+v", got, direct)
	}
}

func TestCompareAllFewItems(t *testing.T) {
	if got := CompareAll(context.Background(), nil, Params{}, 0); got == nil || len(got) != 0 {
		t.Errorf("no items: got %v, want empty non-nil slice", got)
	}

	one := []Labeled{{ID: "only", Seq: chordSequence(t, 0, 4)}}
	if got := CompareAll(context.Background(), one, Params{}, 0); got == nil || len(got) != 0 {
		t.Errorf("one item: got %v, want empty non-nil slice", got)
	}
}

func TestCompareAllPairLocalErrors(t *testing.T) {
	items := []Labeled{
		{ID: "good1", Seq: chordSequence(t, 0, 0, 4, 7)},
		{ID: "short", Seq: chordSequence(t, 0)},
		{ID: "good2", Seq: chordSequence(t, 0, 0, 4, 7)},
	}

	results := CompareAll(context.Background(), items, Params{}, 4)
	if len(results) != 3 {
		t.Fatalf("got %d pairs, want 3", len(results))
	}

	for _, r := range results {
		involvesShort := r.IDA == "short" || r.IDB == "short"
		if involvesShort {
			if !errors.Is(r.Err, ErrInsufficientData) {
				t.Errorf("%s vs %s: got %v, want ErrInsufficientData", r.IDA, r.IDB, r.Err)
			}
			if r.Result != nil {
				t.Errorf("%s vs %s: failed pair carries a result", r.IDA, r.IDB)
			}
		} else {
			if r.Err != nil {
				t.Errorf("%s vs %s: unexpected error %v", r.IDA, r.IDB, r.Err)
			}
			if r.Result == nil {
				t.Errorf("%s vs %s: missing result", r.IDA, r.IDB)
			}
		}
	}
}

func TestRank(t *testing.T) {
	query := Labeled{ID: "query", Seq: chordSequence(t, 0, 0, 4, 7, 4)}
	candidates := []Labeled{
		{ID: "same", Seq: query.Seq.Rotated(5)},
		{ID: "other", Seq: chordSequence(t, 1, 2, 1, 2, 1)},
	}

	results := Rank(context.Background(), query, candidates, Params{}, 0)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].IDB != "same" || results[1].IDB != "other" {
		t.Errorf("results out of candidate order: %s, %s", results[0].IDB, results[1].IDB)
	}
	if results[0].Err != nil || results[1].Err != nil {
		t.Fatalf("unexpected errors: %v, %v", results[0].Err, results[1].Err)
	}
	if !results[0].Result.Match {
		t.Errorf("transposed copy should match, score %g", results[0].Result.Score)
	}
	if results[0].Result.Score <= results[1].Result.Score {
		t.Errorf("same-performance score %g not above unrelated score %g",
			results[0].Result.Score, results[1].Result.Score)
	}
}

func TestRankNoCandidates(t *testing.T) {
	query := Labeled{ID: "q", Seq: chordSequence(t, 0, 4)}
	if got := Rank(context.Background(), query, nil, Params{}, 0); got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}
