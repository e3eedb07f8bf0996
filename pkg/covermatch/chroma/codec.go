package chroma

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Binary layout: uint32 frame count, float64 hop seconds, then frameCount
// blocks of 12 little-endian float64 values.

// Encode serializes a sequence for storage.
func Encode(s *Sequence) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, uint32(s.Len())); err != nil {
		return nil, fmt.Errorf("encoding frame count: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, s.HopSeconds()); err != nil {
		return nil, fmt.Errorf("encoding hop: %w", err)
	}
	for i := 0; i < s.Len(); i++ {
		f := s.At(i)
		for _, x := range f {
			if err := binary.Write(buf, binary.LittleEndian, x); err != nil {
				return nil, fmt.Errorf("encoding frame %d: %w", i, err)
			}
		}
	}
	return buf.Bytes(), nil
}

// Decode deserializes a sequence produced by Encode. Stored values are
// revalidated so a corrupted blob surfaces as ErrInvalidFeatureData
// instead of poisoning a comparison.
func Decode(data []byte) (*Sequence, error) {
	r := bytes.NewReader(data)

	var frameCount uint32
	if err := binary.Read(r, binary.LittleEndian, &frameCount); err != nil {
		return nil, fmt.Errorf("decoding frame count: %w", err)
	}
	var hop float64
	if err := binary.Read(r, binary.LittleEndian, &hop); err != nil {
		return nil, fmt.Errorf("decoding hop: %w", err)
	}
	if frameCount == 0 {
		return nil, fmt.Errorf("%w: stored sequence is empty", ErrInvalidFeatureData)
	}
	if int64(r.Len()) != int64(frameCount)*NumBins*8 {
		return nil, fmt.Errorf("%w: blob size does not match frame count", ErrInvalidFeatureData)
	}

	frames := make([]Vector, frameCount)
	for i := range frames {
		for b := 0; b < NumBins; b++ {
			var x float64
			if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
				return nil, fmt.Errorf("decoding frame %d: %w", i, err)
			}
			if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
				return nil, fmt.Errorf("%w: frame %d bin %d", ErrInvalidFeatureData, i, b)
			}
			frames[i][b] = x
		}
	}

	return &Sequence{frames: frames, hopSeconds: hop}, nil
}
