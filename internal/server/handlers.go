package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-site/internal/packaging"
	"github.com/jonathan/resume-site/internal/pipeline"
	"github.com/jonathan/resume-site/internal/site"
)

// UploadField is the multipart form field carrying the résumé PDF.
const UploadField = "resume"

var errInvalidUpload = errors.New("invalid multipart upload")

// RunSummary describes a completed run
type RunSummary struct {
	RunID         string            `json:"run_id"`
	Status        string            `json:"status"`
	Document      string            `json:"document,omitempty"`
	ArchiveURL    string            `json:"archive_url"`
	Artifacts     map[string]string `json:"artifacts"`
	Outline       site.Outline      `json:"outline"`
	Pages         int               `json:"pages"`
	DegradedPages []int             `json:"degraded_pages,omitempty"`
	DurationMS    int64             `json:"duration_ms"`
}

func newRunSummary(result *pipeline.Result) RunSummary {
	artifacts := make(map[string]string, len(result.Package.Files))
	for name := range result.Package.Files {
		artifacts[name] = fmt.Sprintf("/runs/%s/artifacts/%s", result.RunID, name)
	}
	return RunSummary{
		RunID:         result.RunID,
		Status:        string(pipeline.StatePackaged),
		Document:      result.Document,
		ArchiveURL:    fmt.Sprintf("/runs/%s/archive", result.RunID),
		Artifacts:     artifacts,
		Outline:       result.Outline,
		Pages:         result.Pages,
		DegradedPages: result.DegradedPages,
		DurationMS:    result.Duration.Milliseconds(),
	}
}

// readUpload reads the résumé from a multipart request. A request without the
// field yields pipeline.ErrInputMissing.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (pipeline.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return pipeline.Document{}, err
		}
		return pipeline.Document{}, fmt.Errorf("%w: %v", errInvalidUpload, err)
	}

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return pipeline.Document{}, pipeline.ErrInputMissing
		}
		return pipeline.Document{}, fmt.Errorf("%w: %v", errInvalidUpload, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("read upload: %w", err)
	}
	return pipeline.Document{Name: header.Filename, Data: data}, nil
}

// runGenerator returns a copy of the server's generator reporting to onProgress.
func (s *Server) runGenerator(onProgress pipeline.ProgressCallback) *pipeline.Generator {
	g := *s.generator
	g.OnProgress = onProgress
	return &g
}

// handleGenerate runs the pipeline and returns the zip archive
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readUpload(w, r)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	result, err := s.runGenerator(nil).Run(r.Context(), doc)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	log.Printf("[generate] run %s packaged in %v", result.RunID, result.Duration.Round(time.Millisecond))
	s.archiveResponse(w, result.RunID, bytes.NewReader(result.Package.Archive), int64(len(result.Package.Archive)))
}

// handleGenerateStream runs the pipeline and streams state changes via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readUpload(w, r)
	if err != nil {
		s.failureResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}

	g := s.runGenerator(func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("state", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	})

	result, err := g.Run(r.Context(), doc)
	if err != nil {
		log.Printf("[generate] streaming run failed: %v", err)
		sse.WriteError(NewErrorResponse(err))
		return
	}

	sse.WriteComplete(newRunSummary(result))
}

// handleRunArchive downloads the stored archive of a run
func (s *Server) handleRunArchive(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	rc, err := s.store.Open(r.Context(), packaging.ArtifactKey(runID, packaging.ArchiveName))
	if err != nil {
		s.failureResponse(w, err)
		return
	}
	defer rc.Close()

	s.archiveResponse(w, runID, rc, -1)
}

// handleRunArtifact downloads a single stored file of a run
func (s *Server) handleRunArtifact(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.parseRunID(w, r)
	if !ok {
		return
	}

	name := r.PathValue("name")
	contentType, known := site.ContentType(name)
	if !known {
		s.errorResponse(w, http.StatusNotFound, CodeNotFound, fmt.Sprintf("unknown artifact %q", name))
		return
	}

	rc, err := s.store.Open(r.Context(), packaging.ArtifactKey(runID, name))
	if err != nil {
		s.failureResponse(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Run-Id", runID)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		log.Printf("Error writing artifact %s for run %s: %v", name, runID, err)
	}
}

// parseRunID validates the {id} path value. Run IDs are UUIDs, which also
// keeps the value safe to use as a storage prefix.
func (s *Server) parseRunID(w http.ResponseWriter, r *http.Request) (string, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Run ID is required")
		return "", false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid run ID format")
		return "", false
	}
	return id.String(), true
}

// archiveResponse streams a zip archive as an attachment.
func (s *Server) archiveResponse(w http.ResponseWriter, runID string, body io.Reader, size int64) {
	w.Header().Set("Content-Type", packaging.ArchiveContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", packaging.ArchiveName))
	w.Header().Set("X-Run-Id", runID)
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		log.Printf("Error writing archive for run %s: %v", runID, err)
	}
}
