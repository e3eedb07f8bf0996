package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sakurai-lab/CoverMatch/pkg/utils"
)

const DefaultDBFile = "covermatch.sqlite3"
const errDBClientNil = "db client is nil"

// DBClient wraps the gorm handle for the recording library.
type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// Song is a musical work; several recordings (original, karaoke, pitched
// variants) can belong to one song.
type Song struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Title     string `gorm:"uniqueIndex:idx_song_unique,priority:1" json:"title"`
	Artist    string `gorm:"uniqueIndex:idx_song_unique,priority:2" json:"artist"`
	CreatedAt time.Time
}

// Recording is one audio rendition of a song, with its extracted chroma
// features stored alongside.
type Recording struct {
	ID         string  `gorm:"primaryKey;type:varchar(36)"`
	SongID     string  `gorm:"type:varchar(36);index:idx_recording_song" json:"song_id"`
	Name       string  `json:"name"`
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	CreatedAt  time.Time
}

// ChromaFeature holds the encoded chroma sequence of a recording as an
// opaque blob (see the chroma package codec).
type ChromaFeature struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	RecordingID string  `gorm:"type:varchar(36);uniqueIndex:idx_feature_recording" json:"recording_id"`
	FrameCount  int     `json:"frame_count"`
	HopSeconds  float64 `json:"hop_seconds"`
	Data        []byte  `gorm:"type:blob" json:"-"`
	CreatedAt   time.Time
}

// NewDBClient opens the database at COVERMATCH_DB_PATH or the default path.
func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("COVERMATCH_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

// NewDBClientWithPath opens (and migrates) the database at dbPath.
func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Song{}, &Recording{}, &ChromaFeature{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterSong creates the song if it does not exist yet and returns its
// ID. (title, artist) is the uniqueness key.
func (c *DBClient) RegisterSong(title, artist string) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	var song Song
	err := c.DB.Where("title = ? AND artist = ?", title, artist).First(&song).Error
	if err == nil {
		return song.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("querying existing song: %w", err)
	}

	song = Song{ID: utils.GenerateUUID(), Title: title, Artist: artist}
	if err := c.DB.Create(&song).Error; err != nil {
		// A concurrent insert may have won; fetch what is there now.
		if fetchErr := c.DB.Where("title = ? AND artist = ?", title, artist).First(&song).Error; fetchErr == nil {
			return song.ID, nil
		}
		return "", fmt.Errorf("creating song: %w", err)
	}
	return song.ID, nil
}

// CreateRecording registers a recording of a song and returns its ID.
func (c *DBClient) CreateRecording(songID, name string, duration float64, sampleRate int) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	rec := Recording{
		ID:         utils.GenerateUUID(),
		SongID:     songID,
		Name:       name,
		Duration:   duration,
		SampleRate: sampleRate,
	}
	if err := c.DB.Create(&rec).Error; err != nil {
		return "", fmt.Errorf("creating recording: %w", err)
	}
	return rec.ID, nil
}

// StoreFeatures attaches an encoded chroma sequence to a recording,
// replacing any previous features.
func (c *DBClient) StoreFeatures(recordingID string, frameCount int, hopSeconds float64, data []byte) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", recordingID).Delete(&ChromaFeature{}).Error; err != nil {
			return err
		}
		feature := ChromaFeature{
			RecordingID: recordingID,
			FrameCount:  frameCount,
			HopSeconds:  hopSeconds,
			Data:        data,
		}
		return tx.Create(&feature).Error
	})
}

// GetFeatures returns the encoded chroma blob for a recording.
func (c *DBClient) GetFeatures(recordingID string) ([]byte, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var feature ChromaFeature
	if err := c.DB.Where("recording_id = ?", recordingID).First(&feature).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no features stored for recording %s", recordingID)
		}
		return nil, fmt.Errorf("querying features: %w", err)
	}
	return feature.Data, nil
}

// GetRecordingByID returns one recording's metadata.
func (c *DBClient) GetRecordingByID(recordingID string) (*Recording, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var rec Recording
	if err := c.DB.Where("id = ?", recordingID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recording %s not found", recordingID)
		}
		return nil, fmt.Errorf("querying recording: %w", err)
	}
	return &rec, nil
}

// GetSongByID returns one song's metadata.
func (c *DBClient) GetSongByID(songID string) (*Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var song Song
	if err := c.DB.Where("id = ?", songID).First(&song).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("song %s not found", songID)
		}
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &song, nil
}

// ListSongs returns all songs ordered by creation time.
func (c *DBClient) ListSongs() ([]Song, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var songs []Song
	if err := c.DB.Order("created_at").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	return songs, nil
}

// ListRecordings returns all recordings, optionally filtered by song.
func (c *DBClient) ListRecordings(songID string) ([]Recording, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	q := c.DB.Order("created_at")
	if songID != "" {
		q = q.Where("song_id = ?", songID)
	}
	var recs []Recording
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return recs, nil
}

// DeleteRecordingByID removes a recording and its features.
func (c *DBClient) DeleteRecordingByID(recordingID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recording_id = ?", recordingID).Delete(&ChromaFeature{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", recordingID).Delete(&Recording{}).Error
	})
}

// DeleteSongByID removes a song, its recordings and their features.
func (c *DBClient) DeleteSongByID(songID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		var recs []Recording
		if err := tx.Where("song_id = ?", songID).Find(&recs).Error; err != nil {
			return err
		}
		for _, rec := range recs {
			if err := tx.Where("recording_id = ?", rec.ID).Delete(&ChromaFeature{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("song_id = ?", songID).Delete(&Recording{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", songID).Delete(&Song{}).Error
	})
}
