package main

import "github.com/sakurai-lab/CoverMatch/pkg/covermatch"

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// MetricsResponse summarizes server state.
type MetricsResponse struct {
	Status         string `json:"status"`
	DatabasePath   string `json:"database_path"`
	SongCount      int    `json:"song_count"`
	RecordingCount int    `json:"recording_count"`
	SampleRate     int    `json:"sample_rate"`
}

// AddRecordingResponse is returned after a successful upload.
type AddRecordingResponse struct {
	Recording covermatch.Recording `json:"recording"`
	Message   string               `json:"message"`
}

// CompareRequest asks for one pairwise comparison.
type CompareRequest struct {
	RecordingA string  `json:"recording_a"`
	RecordingB string  `json:"recording_b"`
	Threshold  float64 `json:"threshold,omitempty"`
}

// CompareAllRequest asks for an all-pairs comparison. Empty IDs means
// every stored recording.
type CompareAllRequest struct {
	RecordingIDs []string `json:"recording_ids,omitempty"`
	Threshold    float64  `json:"threshold,omitempty"`
}

// CompareAllResponse carries one result tuple per unordered pair.
type CompareAllResponse struct {
	Results []covermatch.ComparisonResult `json:"results"`
	Pairs   int                           `json:"pairs"`
}

// MatchResponse ranks stored recordings against an uploaded query.
type MatchResponse struct {
	Matches []covermatch.RankedMatch `json:"matches"`
}
