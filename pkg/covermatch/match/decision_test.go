package match

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		score     float64
		threshold float64
		want      bool
	}{
		{"well above", 0.95, DefaultThreshold, true},
		{"exactly at threshold", DefaultThreshold, DefaultThreshold, true},
		{"just below", 0.799, DefaultThreshold, false},
		{"zero score", 0, DefaultThreshold, false},
		{"above one", 1.4, DefaultThreshold, true},
		{"karaoke boundary", KaraokeThreshold, KaraokeThreshold, true},
		{"default passes, karaoke fails", 0.82, KaraokeThreshold, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decide(tt.score, tt.threshold)
			if v.Match != tt.want {
				t.Errorf("Decide(%g, %g).Match = %v, want %v", tt.score, tt.threshold, v.Match, tt.want)
			}
			if v.Score != tt.score || v.Threshold != tt.threshold {
				t.Errorf("verdict did not echo its inputs: %+v", v)
			}
		})
	}
}
