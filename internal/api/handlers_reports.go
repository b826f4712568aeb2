package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/harikantbajaj/labsight/internal/extract"
	"github.com/harikantbajaj/labsight/internal/pipeline"
	"github.com/harikantbajaj/labsight/internal/report"
)

// handleUpload accepts a report document and queues it for asynchronous
// analysis. Clients poll the status endpoint for the result.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/reports/%s/status", job.ID),
	})
}

// handleUploadSync runs the pipeline inline and returns the full result.
// Intended for small digital documents; scanned uploads belong on the
// asynchronous path.
func (s *Server) handleUploadSync(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromRequest(w, r)
	if !ok {
		return
	}

	res, err := s.orchestrator.Runner().Run(r.Context(), job.Document(), job.Demographics(), job.UserID, nil)
	if err != nil {
		jsonError(w, err.Error(), statusForRunError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// jobFromRequest parses the multipart upload and demographic fields into a
// queued job. It writes the error response itself when validation fails.
func (s *Server) jobFromRequest(w http.ResponseWriter, r *http.Request) (*pipeline.Job, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	format, ok := declaredFormat(r.FormValue("format"), filename)
	if !ok {
		jsonError(w, fmt.Sprintf("unsupported document format: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}

	demo := report.Demographics{Sex: report.Sex(strings.ToLower(r.FormValue("sex")))}
	if v := r.FormValue("age"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			demo.Age = n
		}
	}
	switch demo.Sex {
	case report.SexMale, report.SexFemale, report.SexUnknown:
	default:
		jsonError(w, "sex must be male or female when supplied", http.StatusBadRequest)
		return nil, false
	}

	doc := report.Document{Data: data, Format: format, Filename: filename}
	return pipeline.NewJob(uuid.NewString(), userID, doc, demo), true
}

// declaredFormat honors an explicit format field, falling back to the
// filename extension.
func declaredFormat(declared, filename string) (report.Format, bool) {
	if declared != "" {
		f := report.Format(strings.ToLower(declared))
		switch f {
		case report.FormatPDF, report.FormatImage, report.FormatText,
			report.FormatCSV, report.FormatHTML, report.FormatDOCX,
			report.FormatMarkdown:
			return f, true
		}
		return "", false
	}
	return extract.FormatForFilename(filename)
}

func statusForRunError(err error) int {
	switch {
	case errors.Is(err, report.ErrNoMeasurements):
		return http.StatusUnprocessableEntity
	case errors.Is(err, report.ErrExtractionTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, report.ErrExtractionFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
