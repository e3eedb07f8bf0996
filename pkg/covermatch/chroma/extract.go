package chroma

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// DefaultWindowSize and DefaultHopSize match the analysis frames the
	// reference features were extracted with (4096/2048 at 44.1 kHz).
	DefaultWindowSize = 4096
	DefaultHopSize    = 2048
	DefaultSampleRate = 44100

	referenceFrequency = 440.0
	minFrequency       = 100.0
	maxFrequency       = 5000.0
	numHarmonics       = 8

	// Spectral peaks below this fraction of the frame maximum are noise.
	peakFloor = 1e-4
)

// ExtractorConfig controls the STFT analysis grid.
type ExtractorConfig struct {
	WindowSize int
	HopSize    int
	SampleRate int
}

// Extractor computes HPCP sequences from mono PCM samples. The pipeline is
// windowed STFT, spectral peak picking, harmonic pitch-class folding around
// A4=440 Hz, then per-frame L2 normalization.
type Extractor struct {
	cfg    ExtractorConfig
	window []float64
}

// NewExtractor builds an Extractor, filling zero config fields with defaults.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.WindowSize == 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.HopSize == 0 {
		cfg.HopSize = DefaultHopSize
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	return &Extractor{
		cfg:    cfg,
		window: hamming(cfg.WindowSize),
	}
}

// HopSeconds returns the hop duration of the analysis grid.
func (e *Extractor) HopSeconds() float64 {
	return float64(e.cfg.HopSize) / float64(e.cfg.SampleRate)
}

// Extract computes the HPCP sequence for mono samples in [-1, 1].
func (e *Extractor) Extract(samples []float64) (*Sequence, error) {
	ws, hop := e.cfg.WindowSize, e.cfg.HopSize
	if len(samples) < ws {
		return nil, fmt.Errorf("%w: input shorter than one analysis window (%d < %d samples)",
			ErrInvalidFeatureData, len(samples), ws)
	}

	frames := make([]Vector, 0, 1+(len(samples)-ws)/hop)
	frame := make([]float64, ws)
	for start := 0; start+ws <= len(samples); start += hop {
		copy(frame, samples[start:start+ws])
		for i := range frame {
			frame[i] *= e.window[i]
		}
		mag := magnitudeSpectrum(fft.FFTReal(frame))
		frames = append(frames, e.framePCP(mag))
	}

	return &Sequence{frames: frames, hopSeconds: e.HopSeconds()}, nil
}

// framePCP folds the magnitude spectrum of one frame into 12 pitch classes.
func (e *Extractor) framePCP(mag []float64) Vector {
	var pcp Vector

	peakMax := 0.0
	for _, m := range mag {
		if m > peakMax {
			peakMax = m
		}
	}
	if peakMax == 0 {
		return pcp
	}
	threshold := peakMax * peakFloor

	binHz := float64(e.cfg.SampleRate) / float64(e.cfg.WindowSize)
	for i := 1; i < len(mag)-1; i++ {
		m := mag[i]
		if m <= threshold || m < mag[i-1] || m <= mag[i+1] {
			continue
		}
		freq := float64(i) * binHz
		if freq < minFrequency || freq > maxFrequency {
			continue
		}
		// A peak at freq may be the h-th harmonic of a lower fundamental;
		// credit each candidate fundamental's pitch class with decaying weight.
		for h := 1; h <= numHarmonics; h++ {
			contributePitchClass(&pcp, freq/float64(h), m*m/float64(h))
		}
	}

	return pcp.Normalized()
}

// contributePitchClass spreads energy over the two chroma bins nearest to
// freq with cosine-squared weighting, the same interpolation essentia's
// HPCP applies within a one-semitone window.
func contributePitchClass(pcp *Vector, freq, energy float64) {
	if freq <= 0 {
		return
	}
	// MIDI note 69 is A4, so class 0 lands on C.
	pos := math.Mod(69+NumBins*math.Log2(freq/referenceFrequency), NumBins)
	if pos < 0 {
		pos += NumBins
	}

	lo := int(math.Floor(pos))
	for _, bin := range [2]int{lo, lo + 1} {
		d := math.Abs(pos - float64(bin))
		if d >= 1 {
			continue
		}
		w := math.Cos(math.Pi / 2 * d)
		pcp[bin%NumBins] += energy * w * w
	}
}

func magnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum) / 2
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

func hamming(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
