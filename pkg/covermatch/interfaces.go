package covermatch

import (
	"context"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/match"
)

// Service is the top-level API: ingest recordings, compare them pairwise
// or in batches, and rank a query file against the stored library.
type Service interface {
	AddRecording(ctx context.Context, audioPath, title, artist, recordingName string) (*Recording, error)
	CompareRecordings(ctx context.Context, idA, idB string, threshold float64) (*match.Result, error)
	CompareAllRecordings(ctx context.Context, ids []string, threshold float64) ([]ComparisonResult, error)
	MatchAudio(ctx context.Context, audioPath string, limit int, threshold float64) ([]RankedMatch, error)
	GetSongByID(songID string) (*Song, error)
	ListSongs() ([]Song, error)
	ListRecordings(songID string) ([]Recording, error)
	DeleteRecording(recordingID string) error
	DeleteSong(songID string) error
	Close() error
}

// Storage persists songs, recordings and their encoded chroma features.
type Storage interface {
	RegisterSong(title, artist string) (string, error)
	CreateRecording(songID, name string, duration float64, sampleRate int) (string, error)
	StoreFeatures(recordingID string, frameCount int, hopSeconds float64, data []byte) error
	GetFeatures(recordingID string) ([]byte, error)
	GetRecordingByID(recordingID string) (*Recording, error)
	GetSongByID(songID string) (*Song, error)
	ListSongs() ([]Song, error)
	ListRecordings(songID string) ([]Recording, error)
	DeleteRecordingByID(recordingID string) error
	DeleteSongByID(songID string) error
	Close() error
}

// Logger is the logging surface the service writes to.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
