package server

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"catscan/internal/history"
	"catscan/internal/logging"
	"catscan/internal/preflight"
	"catscan/internal/samples"
)

// statusResponse is the /api/status payload.
type statusResponse struct {
	Running    bool               `json:"running"`
	PID        int                `json:"pid"`
	SamplesDir string             `json:"samples_dir"`
	Images     int                `json:"images"`
	Runs       int64              `json:"runs"`
	DBPath     string             `json:"db_path,omitempty"`
	Preflight  []preflight.Result `json:"preflight"`
}

// runDetailResponse is the /api/runs/{id} payload.
type runDetailResponse struct {
	Run     history.Run      `json:"run"`
	Results []history.Result `json:"results"`
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	items, err := samples.List(s.cfg.Paths.SamplesDir)
	if err != nil {
		// Enumeration failure is not fatal; the client just gets an empty set.
		s.logger.Warn("sample enumeration failed", logging.Error(err))
		items = nil
	}
	if items == nil {
		items = []samples.Item{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/image/")
	resolved, err := samples.Resolve(s.cfg.Paths.SamplesDir, name)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "image not found")
		return
	}

	// Disable caching so repeated runs reflect on-disk changes immediately.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.ServeFile(w, r, resolved)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	payload := statusResponse{
		Running:    true,
		PID:        os.Getpid(),
		SamplesDir: s.cfg.Paths.SamplesDir,
		Images:     samples.Count(s.cfg.Paths.SamplesDir),
		Preflight:  preflight.Run(s.cfg),
	}
	if s.store != nil {
		payload.DBPath = s.store.Path()
		if count, err := s.store.RunCount(r.Context()); err == nil {
			payload.Runs = count
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		s.writeJSON(w, http.StatusOK, []history.Run{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	results, err := s.store.ListResults(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []history.Result{}
	}
	s.writeJSON(w, http.StatusOK, runDetailResponse{Run: *run, Results: results})
}
