package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ginjaninja78/asycuda-converter/internal/batch"
	"github.com/ginjaninja78/asycuda-converter/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleConvert converts the uploaded workbooks and returns a ZIP holding one
// entry per file.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize)

	if err := r.ParseMultipartForm(s.opts.MaxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			writeError(w, http.StatusBadRequest, "No files uploaded")
			return
		}
		writeError(w, http.StatusBadRequest, "file too large or invalid form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if headers == nil {
		// An empty file input arrives as a part without a file name, which
		// the form parser stores as a plain value.
		if _, ok := r.MultipartForm.Value["files"]; ok {
			writeError(w, http.StatusBadRequest, "No files selected")
			return
		}
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	files, err := readUploads(headers)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files selected")
		return
	}

	sessionID := r.FormValue("sessionId")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log := logging.WithFields(r.Context(), "session_id", sessionID)
	log.Info("conversion started", "files", len(files))

	ctx := r.Context()
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	job := s.tracker.Start(sessionID)
	defer s.tracker.Finish(sessionID, job)

	out, err := s.runner.Run(ctx, job, files)
	if err != nil {
		log.Error("conversion failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	archive, err := out.ZipBytes()
	if err != nil {
		log.Error("archive failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := batch.ArchiveName(s.opts.ArchiveNameFormat)
	log.Info("conversion finished",
		"successful", out.Successful,
		"errors", out.Failed,
		"archive", name,
		"bytes", len(archive))

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive); err != nil {
		log.Warn("failed to send archive", "error", err)
	}
}

// handleProgress returns the progress snapshot of a session.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	writeJSON(w, http.StatusOK, s.tracker.Snapshot(sessionID))
}

// handleHealth reports that the service is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// readUploads loads every uploaded part. Parts without a file name are
// skipped, the way an empty browser file input is.
func readUploads(headers []*multipart.FileHeader) ([]batch.FileInput, error) {
	files := make([]batch.FileInput, 0, len(headers))
	for _, h := range headers {
		if h.Filename == "" {
			continue
		}
		f, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", h.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", h.Filename, err)
		}
		files = append(files, batch.FileInput{Name: h.Filename, Data: data})
	}
	return files, nil
}
