package covermatch

// Song is a musical work known to the library.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Recording is one stored rendition of a song.
type Recording struct {
	ID         string  `json:"id"`
	SongID     string  `json:"song_id"`
	Name       string  `json:"name"`
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
}

// ComparisonResult is one pair's outcome in a batch comparison. Error is
// set (and the numeric fields zero) when that pair failed; other pairs
// are unaffected.
type ComparisonResult struct {
	RecordingA string  `json:"recording_a"`
	RecordingB string  `json:"recording_b"`
	Shift      int     `json:"shift"`
	Score      float64 `json:"score"`
	Match      bool    `json:"match"`
	Threshold  float64 `json:"threshold"`
	Error      string  `json:"error,omitempty"`
}

// RankedMatch is one candidate from a library match, best first.
type RankedMatch struct {
	Recording Recording `json:"recording"`
	Song      Song      `json:"song"`
	Shift     int       `json:"shift"`
	Score     float64   `json:"score"`
	Match     bool      `json:"match"`
}
