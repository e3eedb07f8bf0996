package match

const (
	// DefaultThreshold is the score at or above which two recordings are
	// considered the same performance.
	DefaultThreshold = 0.80

	// KaraokeThreshold is the stricter default for karaoke-only
	// comparisons, where cleaner harmonic content raises baseline scores.
	KaraokeThreshold = 0.85

	// DefaultNoiseFloor rescales frame cosine similarities. Arbitrary
	// non-negative chroma vectors already correlate around 0.6-0.7, so
	// raw cosines below the floor carry no evidence of a match.
	DefaultNoiseFloor = 0.60

	// DefaultGapPenalty is subtracted from non-diagonal alignment moves,
	// absorbing proportional tempo changes while discouraging pure
	// insertions and deletions.
	DefaultGapPenalty = 0.50

	// DefaultMaxFrames bounds sequence length before the quadratic
	// similarity matrix is built; longer sequences are decimated.
	DefaultMaxFrames = 3000

	// MinFrames is the shortest sequence that can produce a meaningful
	// alignment. Anything shorter yields ErrInsufficientData.
	MinFrames = 2
)

// Params are the per-call tunables of a comparison. The zero value of any
// field falls back to the package default, so Params{} behaves like
// DefaultParams().
type Params struct {
	Threshold  float64
	NoiseFloor float64
	GapPenalty float64
	MaxFrames  int
}

// DefaultParams returns the standard comparison parameters.
func DefaultParams() Params {
	return Params{
		Threshold:  DefaultThreshold,
		NoiseFloor: DefaultNoiseFloor,
		GapPenalty: DefaultGapPenalty,
		MaxFrames:  DefaultMaxFrames,
	}
}

// KaraokeParams returns parameters tuned for karaoke-only libraries.
func KaraokeParams() Params {
	p := DefaultParams()
	p.Threshold = KaraokeThreshold
	return p
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Threshold == 0 {
		p.Threshold = d.Threshold
	}
	if p.NoiseFloor == 0 {
		p.NoiseFloor = d.NoiseFloor
	}
	if p.GapPenalty == 0 {
		p.GapPenalty = d.GapPenalty
	}
	if p.MaxFrames == 0 {
		p.MaxFrames = d.MaxFrames
	}
	return p
}
