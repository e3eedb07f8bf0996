package covermatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/audio"
	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/chroma"
	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/match"
	"github.com/sakurai-lab/CoverMatch/pkg/logger"
)

// coverService is the default implementation of the Service interface.
type coverService struct {
	storage   Storage
	extractor *chroma.Extractor
	log       Logger
	config    *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &coverService{
		storage:   stor,
		extractor: chroma.NewExtractor(chroma.ExtractorConfig{SampleRate: cfg.SampleRate}),
		log:       cfg.Logger,
		config:    cfg,
	}, nil
}

// AddRecording extracts chroma features from an audio file and stores the
// recording under (title, artist).
func (s *coverService) AddRecording(ctx context.Context, audioPath, title, artist, recordingName string) (*Recording, error) {
	s.log.Infof("Adding recording %q of %q by %q", recordingName, title, artist)

	seq, duration, err := s.extractFromFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Extracted %d chroma frames (%.1fs of audio)", seq.Len(), duration)

	songID, err := s.storage.RegisterSong(title, artist)
	if err != nil {
		return nil, fmt.Errorf("failed to register song: %w", err)
	}

	recordingID, err := s.storage.CreateRecording(songID, recordingName, duration, s.config.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	data, err := chroma.Encode(seq)
	if err != nil {
		s.storage.DeleteRecordingByID(recordingID) // Rollback
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}
	if err := s.storage.StoreFeatures(recordingID, seq.Len(), seq.HopSeconds(), data); err != nil {
		s.storage.DeleteRecordingByID(recordingID) // Rollback
		return nil, fmt.Errorf("failed to store features: %w", err)
	}

	s.log.Infof("Stored recording %s (song %s)", recordingID, songID)
	return s.storage.GetRecordingByID(recordingID)
}

// CompareRecordings runs one pairwise comparison between two stored
// recordings. threshold <= 0 selects the service default.
func (s *coverService) CompareRecordings(ctx context.Context, idA, idB string, threshold float64) (*match.Result, error) {
	seqA, err := s.loadSequence(idA)
	if err != nil {
		return nil, err
	}
	seqB, err := s.loadSequence(idB)
	if err != nil {
		return nil, err
	}

	result, err := match.Compare(ctx, seqA, seqB, s.params(threshold))
	if err != nil {
		return nil, err
	}
	s.log.Infof("Compared %s vs %s: score=%.4f shift=%d match=%v", idA, idB, result.Score, result.Shift, result.Match)
	return result, nil
}

// CompareAllRecordings compares every unordered pair of the given
// recordings (all stored recordings when ids is empty). Failures are
// pair-local: a recording that cannot be loaded fails only the pairs it
// participates in.
func (s *coverService) CompareAllRecordings(ctx context.Context, ids []string, threshold float64) ([]ComparisonResult, error) {
	if len(ids) == 0 {
		recs, err := s.storage.ListRecordings("")
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			ids = append(ids, rec.ID)
		}
	}

	loaded := make([]match.Labeled, 0, len(ids))
	loadErrs := make(map[string]error)
	for _, id := range ids {
		seq, err := s.loadSequence(id)
		if err != nil {
			s.log.Warnf("Skipping recording %s: %v", id, err)
			loadErrs[id] = err
			continue
		}
		loaded = append(loaded, match.Labeled{ID: id, Seq: seq})
	}

	p := s.params(threshold)
	pairs := match.CompareAll(ctx, loaded, p, s.config.Workers)

	results := make([]ComparisonResult, 0, len(ids)*(len(ids)-1)/2)
	for _, pr := range pairs {
		cr := ComparisonResult{RecordingA: pr.IDA, RecordingB: pr.IDB}
		if pr.Err != nil {
			cr.Error = pr.Err.Error()
		} else {
			cr.Shift = pr.Result.Shift
			cr.Score = pr.Result.Score
			cr.Match = pr.Result.Match
			cr.Threshold = pr.Result.Threshold
		}
		results = append(results, cr)
	}

	// Pairs involving unloadable recordings still appear, carrying the
	// load error, so a batch result always covers every requested pair.
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			errA, failedA := loadErrs[ids[i]]
			errB, failedB := loadErrs[ids[j]]
			if !failedA && !failedB {
				continue
			}
			reason := errA
			if !failedA {
				reason = errB
			}
			results = append(results, ComparisonResult{
				RecordingA: ids[i],
				RecordingB: ids[j],
				Error:      reason.Error(),
			})
		}
	}

	return results, nil
}

// MatchAudio extracts features from a query file and ranks all stored
// recordings against it, best score first.
func (s *coverService) MatchAudio(ctx context.Context, audioPath string, limit int, threshold float64) ([]RankedMatch, error) {
	s.log.Infof("Matching query audio: %s", audioPath)

	query, _, err := s.extractFromFile(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	recs, err := s.storage.ListRecordings("")
	if err != nil {
		return nil, err
	}

	candidates := make([]match.Labeled, 0, len(recs))
	byID := make(map[string]Recording, len(recs))
	for _, rec := range recs {
		seq, err := s.loadSequence(rec.ID)
		if err != nil {
			s.log.Warnf("Skipping recording %s: %v", rec.ID, err)
			continue
		}
		candidates = append(candidates, match.Labeled{ID: rec.ID, Seq: seq})
		byID[rec.ID] = rec
	}

	pairs := match.Rank(ctx, match.Labeled{ID: "query", Seq: query}, candidates, s.params(threshold), s.config.Workers)

	ranked := make([]RankedMatch, 0, len(pairs))
	for _, pr := range pairs {
		if pr.Err != nil {
			s.log.Warnf("Comparison with %s failed: %v", pr.IDB, pr.Err)
			continue
		}
		rec := byID[pr.IDB]
		song, err := s.storage.GetSongByID(rec.SongID)
		if err != nil {
			s.log.Warnf("Failed to load song %s: %v", rec.SongID, err)
			continue
		}
		ranked = append(ranked, RankedMatch{
			Recording: rec,
			Song:      *song,
			Shift:     pr.Result.Shift,
			Score:     pr.Result.Score,
			Match:     pr.Result.Match,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	s.log.Infof("Returning %d ranked matches", len(ranked))
	return ranked, nil
}

func (s *coverService) GetSongByID(songID string) (*Song, error) {
	return s.storage.GetSongByID(songID)
}

func (s *coverService) ListSongs() ([]Song, error) {
	return s.storage.ListSongs()
}

func (s *coverService) ListRecordings(songID string) ([]Recording, error) {
	return s.storage.ListRecordings(songID)
}

func (s *coverService) DeleteRecording(recordingID string) error {
	return s.storage.DeleteRecordingByID(recordingID)
}

func (s *coverService) DeleteSong(songID string) error {
	return s.storage.DeleteSongByID(songID)
}

func (s *coverService) Close() error {
	return s.storage.Close()
}

func (s *coverService) params(threshold float64) match.Params {
	p := match.DefaultParams()
	p.Threshold = s.config.Threshold
	if threshold > 0 {
		p.Threshold = threshold
	}
	if s.config.MaxFrames > 0 {
		p.MaxFrames = s.config.MaxFrames
	}
	return p
}

// extractFromFile converts an audio file to mono WAV, decodes it and
// extracts its chroma sequence. Returns the sequence and the audio
// duration in seconds.
func (s *coverService) extractFromFile(ctx context.Context, audioPath string) (*chroma.Sequence, float64, error) {
	wavPath, err := audio.ConvertToMonoWAV(ctx, audioPath, s.config.TempDir, audio.ConvertWAVConfig{
		SampleRate: s.config.SampleRate,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("audio conversion failed: %w", err)
	}

	samples, sampleRate, err := audio.ReadWavMono(wavPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV file: %w", err)
	}

	extractor := s.extractor
	if sampleRate != s.config.SampleRate {
		extractor = chroma.NewExtractor(chroma.ExtractorConfig{SampleRate: sampleRate})
	}
	seq, err := extractor.Extract(samples)
	if err != nil {
		return nil, 0, fmt.Errorf("feature extraction failed: %w", err)
	}

	duration := float64(len(samples)) / float64(sampleRate)
	return seq, duration, nil
}

// loadSequence fetches and decodes a recording's stored chroma features.
func (s *coverService) loadSequence(recordingID string) (*chroma.Sequence, error) {
	data, err := s.storage.GetFeatures(recordingID)
	if err != nil {
		return nil, fmt.Errorf("loading features for %s: %w", recordingID, err)
	}
	seq, err := chroma.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding features for %s: %w", recordingID, err)
	}
	return seq, nil
}
