package covermatch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"
)

// seedRecording stores an already-extracted chroma sequence, bypassing the
// audio pipeline. Ingestion from real files needs ffmpeg and is covered by
// the audio package tests.
func seedRecording(t *testing.T, stor Storage, title, name string, seq *chroma.Sequence) string {
	t.Helper()
	songID, err := stor.RegisterSong(title, "Test Artist")
	if err != nil {
		t.Fatalf("RegisterSong failed: %v", err)
	}
	recID, err := stor.CreateRecording(songID, name, seq.Duration(), 44100)
	if err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}
	data, err := chroma.Encode(seq)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := stor.StoreFeatures(recID, seq.Len(), seq.HopSeconds(), data); err != nil {
		t.Fatalf("StoreFeatures failed: %v", err)
	}
	return recID
}

func testSequence(t *testing.T, bins ...int) *chroma.Sequence {
	t.Helper()
	frames := make([][]float64, len(bins))
	for i, b := range bins {
		f := make([]float64, chroma.NumBins)
		f[b] = 1
		frames[i] = f
	}
	seq, err := chroma.NewSequence(frames, 0.046)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	return seq
}

func newTestService(t *testing.T) (Service, Storage) {
	t.Helper()
	stor, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}

	service, err := NewService(WithStorage(stor))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	t.Cleanup(func() { service.Close() })
	return service, stor
}

func TestCompareRecordings(t *testing.T) {
	service, stor := newTestService(t)

	seq := testSequence(t, 0, 0, 0, 4, 4, 7, 0, 4)
	idA := seedRecording(t, stor, "Song", "original", seq)
	idB := seedRecording(t, stor, "Song", "pitch+3", seq.Rotated(3))

	result, err := service.CompareRecordings(context.Background(), idA, idB, 0)
	if err != nil {
		t.Fatalf("CompareRecordings failed: %v", err)
	}
	if !result.Match {
		t.Errorf("transposed copy did not match, score %g", result.Score)
	}
	if result.Shift != 3 {
		t.Errorf("Shift = %d, want 3", result.Shift)
	}
}

func TestCompareRecordingsThresholdOverride(t *testing.T) {
	service, stor := newTestService(t)

	seq := testSequence(t, 0, 4, 7, 0)
	idA := seedRecording(t, stor, "Song", "original", seq)
	idB := seedRecording(t, stor, "Song", "copy", seq)

	result, err := service.CompareRecordings(context.Background(), idA, idB, 1.01)
	if err != nil {
		t.Fatalf("CompareRecordings failed: %v", err)
	}
	if result.Threshold != 1.01 {
		t.Errorf("Threshold = %g, want the override 1.01", result.Threshold)
	}
	if result.Match {
		t.Errorf("score %g should not reach threshold 1.01", result.Score)
	}
}

func TestCompareRecordingsUnknownID(t *testing.T) {
	service, stor := newTestService(t)
	id := seedRecording(t, stor, "Song", "original", testSequence(t, 0, 4, 7))

	if _, err := service.CompareRecordings(context.Background(), id, "no-such-id", 0); err == nil {
		t.Error("expected error for unknown recording")
	}
}

func TestCompareAllRecordings(t *testing.T) {
	service, stor := newTestService(t)

	seq := testSequence(t, 0, 0, 4, 7, 4)
	seedRecording(t, stor, "Song", "original", seq)
	seedRecording(t, stor, "Song", "pitch+2", seq.Rotated(2))
	seedRecording(t, stor, "Other", "original", testSequence(t, 1, 6, 1, 6, 1))

	// Empty ids means every stored recording.
	results, err := service.CompareAllRecordings(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("CompareAllRecordings failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d pairs for 3 recordings, want 3", len(results))
	}

	matches := 0
	for _, r := range results {
		if r.Error != "" {
			t.Errorf("%s vs %s failed: %s", r.RecordingA, r.RecordingB, r.Error)
		}
		if r.Match {
			matches++
		}
	}
	if matches != 1 {
		t.Errorf("got %d matching pairs, want 1 (original vs pitch+2)", matches)
	}
}

func TestCompareAllRecordingsCoversFailedLoads(t *testing.T) {
	service, stor := newTestService(t)

	seq := testSequence(t, 0, 0, 4, 7)
	idA := seedRecording(t, stor, "Song", "original", seq)
	idB := seedRecording(t, stor, "Song", "copy", seq)

	// A recording without stored features cannot be loaded.
	songID, err := stor.RegisterSong("Broken", "Test Artist")
	if err != nil {
		t.Fatalf("RegisterSong failed: %v", err)
	}
	idBroken, err := stor.CreateRecording(songID, "no-features", 1, 44100)
	if err != nil {
		t.Fatalf("CreateRecording failed: %v", err)
	}

	results, err := service.CompareAllRecordings(context.Background(), []string{idA, idB, idBroken}, 0)
	if err != nil {
		t.Fatalf("CompareAllRecordings failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d pairs, want 3 (every requested pair reported)", len(results))
	}

	errored := 0
	for _, r := range results {
		involvesBroken := r.RecordingA == idBroken || r.RecordingB == idBroken
		if involvesBroken {
			if r.Error == "" {
				t.Errorf("%s vs %s should carry the load error", r.RecordingA, r.RecordingB)
			}
			errored++
		} else if r.Error != "" {
			t.Errorf("%s vs %s unexpectedly failed: %s", r.RecordingA, r.RecordingB, r.Error)
		}
	}
	if errored != 2 {
		t.Errorf("got %d errored pairs, want 2", errored)
	}
}

func TestServiceLibraryManagement(t *testing.T) {
	service, stor := newTestService(t)

	seq := testSequence(t, 0, 4, 7)
	recID := seedRecording(t, stor, "Song", "original", seq)

	songs, err := service.ListSongs()
	if err != nil {
		t.Fatalf("ListSongs failed: %v", err)
	}
	if len(songs) != 1 || songs[0].Title != "Song" {
		t.Fatalf("ListSongs = %+v", songs)
	}

	recs, err := service.ListRecordings(songs[0].ID)
	if err != nil {
		t.Fatalf("ListRecordings failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != recID {
		t.Fatalf("ListRecordings = %+v", recs)
	}

	if err := service.DeleteSong(songs[0].ID); err != nil {
		t.Fatalf("DeleteSong failed: %v", err)
	}
	songs, err = service.ListSongs()
	if err != nil {
		t.Fatalf("ListSongs after delete failed: %v", err)
	}
	if len(songs) != 0 {
		t.Errorf("songs remain after delete: %+v", songs)
	}
}
