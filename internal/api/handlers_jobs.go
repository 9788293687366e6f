package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docdetect/internal/images"
	"github.com/dgallion1/docdetect/internal/parser"
	"github.com/dgallion1/docdetect/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// Form fields with a fixed meaning; every other field is a job property.
const (
	fieldFile = "file"
	fieldType = "type"
)

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	kind, ok := pipeline.ParseKind(r.FormValue(fieldType))
	if !ok {
		jsonError(w, fmt.Sprintf("unknown job type %q", r.FormValue(fieldType)), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(fieldFile)
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if err := s.checkSupported(kind, filename); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if header.Size > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	props := make(map[string]string)
	for k, v := range r.MultipartForm.Value {
		if k == fieldType || len(v) == 0 {
			continue
		}
		props[k] = v[0]
	}

	path, err := pipeline.StageUpload(file, filename)
	if err != nil {
		s.log.Error("stage upload", "error", err)
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}

	job := pipeline.NewJob(kind, filename, path, props)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"type":     job.Kind,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
	})
}

// checkSupported rejects uploads the job's component cannot handle.
func (s *Server) checkSupported(kind pipeline.Kind, filename string) error {
	switch kind {
	case pipeline.KindImage:
		if _, err := images.SourceFor(parser.ContentTypeFor(filename)); err != nil {
			return fmt.Errorf("unsupported file type for images: %s", filepath.Ext(filename))
		}
	default:
		// Tika accepts far more formats than the local parsers.
		if s.cfg.TikaURL == "" && !parser.IsSupportedExtension(filename) {
			return fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
		}
	}
	return nil
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleJobTracks(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if snap.Status != pipeline.StatusCompleted {
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return
	}
	tracks, err := s.orchestrator.Tracks(r.Context(), jobID)
	if err != nil {
		s.log.Error("load tracks", "job_id", jobID, "error", err)
		jsonError(w, "failed to load tracks", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id": jobID,
		"tracks": tracks,
	})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	found, err := s.orchestrator.DeleteJob(r.Context(), jobID)
	if !found {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
