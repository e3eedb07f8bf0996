package chroma

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	seq, err := NewSequence(oneHotFrames(0, 4, 7, 11), 0.046)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}

	data, err := Encode(seq)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Len() != seq.Len() {
		t.Fatalf("decoded %d frames, want %d", got.Len(), seq.Len())
	}
	if got.HopSeconds() != seq.HopSeconds() {
		t.Errorf("decoded hop %g, want %g", got.HopSeconds(), seq.HopSeconds())
	}
	for i := 0; i < seq.Len(); i++ {
		if got.At(i) != seq.At(i) {
			t.Errorf("frame %d = %v, want %v", i, got.At(i), seq.At(i))
		}
	}
}

func TestDecodeRejectsCorruptBlobs(t *testing.T) {
	seq, err := NewSequence(oneHotFrames(0, 1), 0.05)
	if err != nil {
		t.Fatalf("NewSequence failed: %v", err)
	}
	data, err := Encode(seq)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	t.Run("truncated", func(t *testing.T) {
		if _, err := Decode(data[:len(data)-8]); !errors.Is(err, ErrInvalidFeatureData) {
			t.Errorf("truncated blob: got %v, want ErrInvalidFeatureData", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Decode(nil); err == nil {
			t.Error("expected error for empty blob")
		}
	})

	t.Run("negative value", func(t *testing.T) {
		bad := make([]byte, len(data))
		copy(bad, data)
		// Flip the sign bit of the first stored float64 frame value.
		bad[4+8+7] |= 0x80
		if _, err := Decode(bad); !errors.Is(err, ErrInvalidFeatureData) {
			t.Errorf("negative value: got %v, want ErrInvalidFeatureData", err)
		}
	})
}
