package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"menucms-backend/internal/infrastructure/imgproc"
	"menucms-backend/internal/infrastructure/storage"
	"menucms-backend/internal/shared/response"
)

// Pipeline error taxonomy. Decode, double-encode, timeout and dual-backend
// storage failure are the only errors that reach the caller; everything else
// is recovered inside the pipeline.
var (
	// ErrDecode: bad/corrupt/unsupported input. Not retried.
	ErrDecode = imgproc.ErrDecode
	// ErrEncode: codec failure that survived the internal retry.
	ErrEncode = imgproc.ErrEncode
	// ErrStorage: both remote and local persistence failed. Infrastructure
	// trouble, not bad input; logged at error severity.
	ErrStorage = storage.ErrAllBackendsFailed
	// ErrTimeout: the upload exceeded the pipeline's wall-clock budget.
	ErrTimeout = errors.New("image processing timed out")

	// Gateway-level rejections, before the pipeline runs.
	ErrPayloadTooLarge = errors.New("upload exceeds maximum allowed size")
	ErrUnsupportedMIME = errors.New("upload is not an allowed image type")
	ErrAssetNotFound   = errors.New("asset not found")
)

var uploadErrorMap = []struct {
	Err     error
	Status  int
	Title   string
	Message string
}{
	{ErrDecode, http.StatusUnprocessableEntity, "Invalid image", "The uploaded file is not a valid image. Please upload a JPEG, PNG, WebP or GIF file"},
	{ErrEncode, http.StatusInternalServerError, "Image processing failed", "The image could not be re-encoded. Please try a different file"},
	{ErrTimeout, http.StatusGatewayTimeout, "Image processing timed out", "Processing took too long. Please retry the upload"},
	{ErrStorage, http.StatusServiceUnavailable, "Storage unavailable", "The image could not be stored. Please retry later"},
	{ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, "File too large", "The uploaded file exceeds the maximum allowed size"},
	{ErrUnsupportedMIME, http.StatusBadRequest, "Unsupported file type", "Only JPEG, PNG, WebP and GIF images are accepted"},
	{ErrAssetNotFound, http.StatusNotFound, "Asset not found", "The requested asset does not exist"},
}

// HandleUploadError maps a pipeline error onto the HTTP response envelope.
// Returns false when err is nil.
func HandleUploadError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	for _, e := range uploadErrorMap {
		if errors.Is(err, e.Err) {
			if errors.Is(err, ErrStorage) {
				log.Error().Err(err).Msg("All storage backends failed")
			}
			response.ErrorResponse(c, e.Status, e.Title, e.Message)
			return true
		}
	}

	log.Error().Err(err).Msg("Unhandled upload error")
	response.ErrorResponse(c, http.StatusInternalServerError, "Upload failed", "Internal server error")
	return true
}
