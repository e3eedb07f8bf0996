package match

// Verdict is a thresholded match decision together with the evidence it
// was made from.
type Verdict struct {
	Match     bool    `json:"match"`
	Score     float64 `json:"score"`
	Threshold float64 `json:"threshold"`
}

// Decide applies threshold to a normalized similarity score. The boundary
// is inclusive: a score exactly at the threshold is a match. Pure
// function, no side effects.
func Decide(score, threshold float64) Verdict {
	return Verdict{
		Match:     score >= threshold,
		Score:     score,
		Threshold: threshold,
	}
}
