package orchestrator

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/scorefiler/internal/domain"
)

// RegisterRoutes mounts the processing API on mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/arrangements", s.handleArrangements)
	mux.HandleFunc("/arrangements/", s.handleArrangement)
	mux.HandleFunc("/process_all", s.handleProcessAll)
}

type createResp struct {
	ID string `json:"id"`
}

func (s *Service) handleArrangements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		id := s.AddArrangement()
		writeJSON(w, http.StatusCreated, createResp{ID: id})
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Snapshot())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleArrangement dispatches /arrangements/{id}[/files|/process].
func (s *Service) handleArrangement(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/arrangements/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		http.Error(w, "missing arrangement id", http.StatusBadRequest)
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a, ok := s.Get(id)
		if !ok {
			http.Error(w, "unknown arrangement", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, a)
	case "files":
		s.handleAttach(w, r, id)
	case "process":
		s.handleProcess(w, r, id)
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
	}
}

// handleAttach accepts multipart/form-data with one or more "files" parts.
// Non-PDF parts are rejected individually and listed in the response.
func (s *Service) handleAttach(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "no files provided", http.StatusBadRequest)
		return
	}

	files := make([]domain.InputFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "unreadable file part", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "unreadable file part", http.StatusBadRequest)
			return
		}
		files = append(files, domain.InputFile{Name: fh.Filename, Data: data})
	}

	res, err := s.AttachFiles(id, files)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleProcess runs the pipeline synchronously and returns the final
// snapshot; the call completes when the arrangement is terminal.
func (s *Service) handleProcess(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.Process(r.Context(), id); err != nil {
		// The pipeline already recorded arrangement-fatal errors on the
		// arrangement itself; surface pre-flight errors only.
		if a, ok := s.Get(id); ok && a.Status == domain.ArrangementError {
			writeJSON(w, http.StatusOK, a)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	a, _ := s.Get(id)
	writeJSON(w, http.StatusOK, a)
}

func (s *Service) handleProcessAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.ProcessAllReady(r.Context())
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encoding response failed")
	}
}
