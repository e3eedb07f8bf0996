package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWavRoundtrip(t *testing.T) {
	const sampleRate = 8000
	samples := make([]float64, sampleRate/2)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/sampleRate)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := WriteWavMono(path, samples, sampleRate); err != nil {
		t.Fatalf("WriteWavMono failed: %v", err)
	}

	got, gotRate, err := ReadWavMono(path)
	if err != nil {
		t.Fatalf("ReadWavMono failed: %v", err)
	}
	if gotRate != sampleRate {
		t.Errorf("sample rate = %d, want %d", gotRate, sampleRate)
	}
	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}

	// 16-bit quantization bounds the roundtrip error.
	const tolerance = 1.5 / 32768
	for i := range samples {
		if math.Abs(got[i]-samples[i]) > tolerance {
			t.Fatalf("sample %d = %g, want %g within %g", i, got[i], samples[i], tolerance)
		}
	}
}

func TestWriteClampsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipped.wav")
	if err := WriteWavMono(path, []float64{2.0, -2.0, 0}, 8000); err != nil {
		t.Fatalf("WriteWavMono failed: %v", err)
	}

	got, _, err := ReadWavMono(path)
	if err != nil {
		t.Fatalf("ReadWavMono failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("read %d samples, want 3", len(got))
	}
	if got[0] < 0.99 || got[0] > 1.0 {
		t.Errorf("clipped positive sample = %g, want ~1", got[0])
	}
	if got[1] > -0.99 || got[1] < -1.0 {
		t.Errorf("clipped negative sample = %g, want ~-1", got[1])
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, _, err := ReadWavMono(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadNotWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("this is not a wav file"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, _, err := ReadWavMono(path); err == nil {
		t.Error("expected error for non-WAV data")
	}
}
