package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sakurai-lab/CoverMatch/pkg/covermatch"
	"github.com/sakurai-lab/CoverMatch/pkg/covermatch/match"
	"github.com/sakurai-lab/CoverMatch/pkg/logger"
	"github.com/sakurai-lab/CoverMatch/pkg/utils"
)

const maxUploadBytes = 100 << 20 // 100 MB

// Server encapsulates the HTTP server and its dependencies.
type Server struct {
	service covermatch.Service
	config  *ServerConfig
	log     covermatch.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
}

// NewServer creates a new server instance.
func NewServer(service covermatch.Service, config *ServerConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.log.Infof("Listening on %s", addr)
	return http.ListenAndServe(addr, s.setupRoutes())
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "CoverMatch API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":          "GET /health",
			"metrics":         "GET /api/health/metrics",
			"songs":           "GET /api/songs",
			"getSong":         "GET /api/songs/{id}",
			"deleteSong":      "DELETE /api/songs/{id}",
			"recordings":      "GET /api/recordings",
			"addRecording":    "POST /api/recordings",
			"deleteRecording": "DELETE /api/recordings/{id}",
			"compare":         "POST /api/compare",
			"compareAll":      "POST /api/compare/all",
			"match":           "POST /api/match",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	songs, err := s.service.ListSongs()
	if err != nil {
		s.log.Errorf("Failed to list songs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}
	recordings, err := s.service.ListRecordings("")
	if err != nil {
		s.log.Errorf("Failed to list recordings: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:         "healthy",
		DatabasePath:   s.config.DBPath,
		SongCount:      len(songs),
		RecordingCount: len(recordings),
		SampleRate:     s.config.SampleRate,
	})
}

// handleSongs handles GET /api/songs
func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	songs, err := s.service.ListSongs()
	if err != nil {
		s.log.Errorf("Failed to list songs: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve songs")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"songs": songs, "count": len(songs)})
}

// handleSong handles GET and DELETE on /api/songs/{id}
func (s *Server) handleSong(w http.ResponseWriter, r *http.Request) {
	songID := strings.TrimPrefix(r.URL.Path, "/api/songs/")
	if songID == "" {
		s.respondError(w, http.StatusBadRequest, "Missing song ID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		song, err := s.service.GetSongByID(songID)
		if err != nil {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		recordings, err := s.service.ListRecordings(songID)
		if err != nil {
			s.log.Errorf("Failed to list recordings for song %s: %v", songID, err)
			s.respondError(w, http.StatusInternalServerError, "Failed to retrieve recordings")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"song": song, "recordings": recordings})
	case http.MethodDelete:
		if err := s.service.DeleteSong(songID); err != nil {
			s.log.Errorf("Failed to delete song %s: %v", songID, err)
			s.respondError(w, http.StatusInternalServerError, "Failed to delete song")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]string{"message": "Song deleted", "id": songID})
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleRecordings handles GET and POST on /api/recordings
func (s *Server) handleRecordings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		recordings, err := s.service.ListRecordings(r.URL.Query().Get("song_id"))
		if err != nil {
			s.log.Errorf("Failed to list recordings: %v", err)
			s.respondError(w, http.StatusInternalServerError, "Failed to retrieve recordings")
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"recordings": recordings, "count": len(recordings)})
	case http.MethodPost:
		s.handleAddRecording(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAddRecording ingests a multipart audio upload, extracts its
// chroma features and stores the recording.
func (s *Server) handleAddRecording(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title := r.FormValue("title")
	if title == "" {
		s.respondError(w, http.StatusBadRequest, "Missing title")
		return
	}
	artist := r.FormValue("artist")
	name := r.FormValue("name")
	if name == "" {
		name = "original"
	}

	audioPath, cleanup, err := s.saveUpload(r, "audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	recording, err := s.service.AddRecording(r.Context(), audioPath, title, artist, name)
	if err != nil {
		s.log.Errorf("Failed to add recording: %v", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, AddRecordingResponse{
		Recording: *recording,
		Message:   "Recording added",
	})
}

// handleRecording handles DELETE /api/recordings/{id}
func (s *Server) handleRecording(w http.ResponseWriter, r *http.Request) {
	recordingID := strings.TrimPrefix(r.URL.Path, "/api/recordings/")
	if recordingID == "" {
		s.respondError(w, http.StatusBadRequest, "Missing recording ID")
		return
	}

	if r.Method != http.MethodDelete {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := s.service.DeleteRecording(recordingID); err != nil {
		s.log.Errorf("Failed to delete recording %s: %v", recordingID, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete recording")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Recording deleted", "id": recordingID})
}

// handleCompare handles POST /api/compare
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.RecordingA == "" || req.RecordingB == "" {
		s.respondError(w, http.StatusBadRequest, "recording_a and recording_b are required")
		return
	}

	result, err := s.service.CompareRecordings(r.Context(), req.RecordingA, req.RecordingB, req.Threshold)
	if err != nil {
		if errors.Is(err, match.ErrInsufficientData) {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.log.Errorf("Comparison failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleCompareAll handles POST /api/compare/all
func (s *Server) handleCompareAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req CompareAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	results, err := s.service.CompareAllRecordings(r.Context(), req.RecordingIDs, req.Threshold)
	if err != nil {
		s.log.Errorf("Batch comparison failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, CompareAllResponse{Results: results, Pairs: len(results)})
}

// handleMatch handles POST /api/match
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	limit := 5
	if v := r.FormValue("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	var threshold float64
	if v := r.FormValue("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid threshold")
			return
		}
		threshold = t
	}

	audioPath, cleanup, err := s.saveUpload(r, "audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	matches, err := s.service.MatchAudio(r.Context(), audioPath, limit, threshold)
	if err != nil {
		s.log.Errorf("Match failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, MatchResponse{Matches: matches})
}

// saveUpload writes the named multipart file into the temp dir and
// returns its path plus a cleanup func.
func (s *Server) saveUpload(r *http.Request, field string) (string, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %q file field", field)
	}
	defer file.Close()

	if err := utils.MakeDir(s.config.TempDir); err != nil {
		return "", nil, err
	}
	dst := filepath.Join(s.config.TempDir, fmt.Sprintf("upload-%d-%s", time.Now().UnixNano(), filepath.Base(header.Filename)))
	out, err := os.Create(dst)
	if err != nil {
		return "", nil, fmt.Errorf("saving upload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dst)
		return "", nil, fmt.Errorf("saving upload: %w", err)
	}
	return dst, func() { utils.DeleteFile(dst) }, nil
}
