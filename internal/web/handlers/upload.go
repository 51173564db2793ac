package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/kozaktomas/marathon-booth/internal/blobstore"
	"github.com/kozaktomas/marathon-booth/internal/camera"
	"github.com/kozaktomas/marathon-booth/internal/constants"
)

// UploadHandler stores photos uploaded from a browser booth.
type UploadHandler struct {
	blobs blobstore.Store
}

// NewUploadHandler creates a new upload handler. A nil store disables uploads.
func NewUploadHandler(blobs blobstore.Store) *UploadHandler {
	return &UploadHandler{blobs: blobs}
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// Upload reads the multipart "image" field, re-encodes it as JPEG and stores it
// under the uploaded file name. Existing objects are never overwritten.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		respondError(w, http.StatusServiceUnavailable, "photo storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	jpeg, err := camera.NormalizeStill(data, constants.MaxStillSize)
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is not a supported image")
		return
	}

	name := filepath.Base(header.Filename)
	url, err := h.blobs.Upload(r.Context(), name, jpeg, "image/jpeg")
	switch {
	case errors.Is(err, blobstore.ErrInvalidName):
		respondError(w, http.StatusBadRequest, "invalid file name")
		return
	case errors.Is(err, blobstore.ErrExists):
		respondError(w, http.StatusConflict, "a photo with this name already exists")
		return
	case err != nil:
		log.Printf("Upload of %s failed: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	respondJSON(w, http.StatusOK, uploadResponse{Success: true, URL: url})
}
