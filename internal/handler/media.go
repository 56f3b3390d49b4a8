package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/services"
	"familytree/internal/httputil"
)

// maxFilesPerUpload bounds one multipart request
const maxFilesPerUpload = 20

// MediaHandler handles image uploads
type MediaHandler struct {
	mediaService services.MediaService
	maxBytes     int64
	logger       *slog.Logger
}

// NewMediaHandler creates a new media handler. maxBytes is the per-file limit.
func NewMediaHandler(mediaService services.MediaService, maxBytes int64, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		maxBytes:     maxBytes,
		logger:       logger,
	}
}

// Upload stores the images sent in the multipart field "files"
// POST /api/upload
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFilesPerUpload*h.maxBytes+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondCode(w, http.StatusRequestEntityTooLarge, domain.CodeValidation, "upload too large")
			return
		}
		badRequest(w, fmt.Errorf("invalid multipart form: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) > maxFilesPerUpload {
		httputil.RespondCode(w, http.StatusBadRequest, domain.CodeValidation,
			fmt.Sprintf("at most %d files per upload", maxFilesPerUpload))
		return
	}

	uploads := make([]models.Upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxBytes {
			handleError(w, r, &domain.ValidationError{
				Message: fmt.Sprintf("%s exceeds the %d byte limit", fh.Filename, h.maxBytes),
			})
			return
		}

		f, err := fh.Open()
		if err != nil {
			badRequest(w, fmt.Errorf("read %s: %w", fh.Filename, err))
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
		f.Close()
		if err != nil {
			badRequest(w, fmt.Errorf("read %s: %w", fh.Filename, err))
			return
		}

		uploads = append(uploads, models.Upload{Filename: fh.Filename, Size: fh.Size, Data: data})
	}

	files, err := h.mediaService.Upload(r.Context(), uploads)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// ListFiles returns the uploaded images
// GET /api/files
func (h *MediaHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.mediaService.ListFiles(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// DeleteFile removes one image
// DELETE /api/files/{name}
func (h *MediaHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.mediaService.DeleteFile(r.Context(), r.PathValue("name")); err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteFiles removes several images and reports how many existed
// POST /api/files/delete-bulk
func (h *MediaHandler) DeleteFiles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	deleted, err := h.mediaService.DeleteFiles(r.Context(), req.Names)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}
