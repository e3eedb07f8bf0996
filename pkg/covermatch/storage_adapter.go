package covermatch

import (
	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/storage"
)

// sqliteStorage adapts storage.DBClient to the Storage interface.
type sqliteStorage struct {
	client *storage.DBClient
}

// NewSQLiteStorage opens a SQLite-backed Storage at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	client, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &sqliteStorage{client: client}, nil
}

func (s *sqliteStorage) RegisterSong(title, artist string) (string, error) {
	return s.client.RegisterSong(title, artist)
}

func (s *sqliteStorage) CreateRecording(songID, name string, duration float64, sampleRate int) (string, error) {
	return s.client.CreateRecording(songID, name, duration, sampleRate)
}

func (s *sqliteStorage) StoreFeatures(recordingID string, frameCount int, hopSeconds float64, data []byte) error {
	return s.client.StoreFeatures(recordingID, frameCount, hopSeconds, data)
}

func (s *sqliteStorage) GetFeatures(recordingID string) ([]byte, error) {
	return s.client.GetFeatures(recordingID)
}

func (s *sqliteStorage) GetRecordingByID(recordingID string) (*Recording, error) {
	rec, err := s.client.GetRecordingByID(recordingID)
	if err != nil {
		return nil, err
	}
	return recordingFromModel(rec), nil
}

func (s *sqliteStorage) GetSongByID(songID string) (*Song, error) {
	song, err := s.client.GetSongByID(songID)
	if err != nil {
		return nil, err
	}
	return &Song{ID: song.ID, Title: song.Title, Artist: song.Artist}, nil
}

func (s *sqliteStorage) ListSongs() ([]Song, error) {
	models, err := s.client.ListSongs()
	if err != nil {
		return nil, err
	}
	songs := make([]Song, len(models))
	for i, m := range models {
		songs[i] = Song{ID: m.ID, Title: m.Title, Artist: m.Artist}
	}
	return songs, nil
}

func (s *sqliteStorage) ListRecordings(songID string) ([]Recording, error) {
	models, err := s.client.ListRecordings(songID)
	if err != nil {
		return nil, err
	}
	recs := make([]Recording, len(models))
	for i := range models {
		recs[i] = *recordingFromModel(&models[i])
	}
	return recs, nil
}

func (s *sqliteStorage) DeleteRecordingByID(recordingID string) error {
	return s.client.DeleteRecordingByID(recordingID)
}

func (s *sqliteStorage) DeleteSongByID(songID string) error {
	return s.client.DeleteSongByID(songID)
}

func (s *sqliteStorage) Close() error {
	return s.client.Close()
}

func recordingFromModel(m *storage.Recording) *Recording {
	return &Recording{
		ID:         m.ID,
		SongID:     m.SongID,
		Name:       m.Name,
		Duration:   m.Duration,
		SampleRate: m.SampleRate,
	}
}
