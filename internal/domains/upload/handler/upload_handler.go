package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"menucms-backend/internal/domains/upload/model"
	"menucms-backend/internal/domains/upload/service"
	"menucms-backend/internal/infrastructure/imgproc"
	"menucms-backend/internal/shared/response"
)

// UploadHandler is the upload gateway: it enforces the request-level
// constraints (max payload, MIME allow-list) and hands a staged file to the
// pipeline. Everything image-related happens in the service.
type UploadHandler struct {
	service        service.UploadService
	stagingDir     string
	maxUploadBytes int64
}

func NewUploadHandler(svc service.UploadService, stagingDir string, maxUploadMB int64) *UploadHandler {
	return &UploadHandler{
		service:        svc,
		stagingDir:     stagingDir,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}
}

// Upload handles POST /uploads/:category (multipart field "image").
func (h *UploadHandler) Upload(c *gin.Context) {
	params := model.UploadParams{
		Category:     c.Param("category"),
		TenantID:     c.PostForm("tenant_id"),
		RestaurantID: c.PostForm("restaurant_id"),
	}
	if err := params.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Invalid upload request", "Request validation failed", err)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required (multipart/form-data)")
		return
	}
	if header.Size > h.maxUploadBytes {
		model.HandleUploadError(c, model.ErrPayloadTooLarge)
		return
	}

	data, err := readMultipartFile(header, h.maxUploadBytes)
	if err != nil {
		model.HandleUploadError(c, err)
		return
	}

	// Sniff the real content type; the declared one is routinely wrong on
	// mobile uploads.
	mime, ok := imgproc.AllowedUploadMIME(data)
	if !ok {
		log.Info().Str("mime", mime).Str("filename", header.Filename).Msg("Rejected upload by MIME type")
		model.HandleUploadError(c, model.ErrUnsupportedMIME)
		return
	}

	stagingPath := filepath.Join(h.stagingDir, service.StagingPrefix+uuid.New().String()+".tmp")
	if err := os.WriteFile(stagingPath, data, 0o600); err != nil {
		log.Error().Err(err).Str("path", stagingPath).Msg("Failed to stage upload")
		response.InternalServerError(c, "Failed to accept upload")
		return
	}

	asset, err := h.service.Upload(c.Request.Context(), &model.UploadRequest{
		StagingPath:  stagingPath,
		DeclaredMIME: mime,
		DeclaredSize: header.Size,
		TenantID:     params.TenantID,
		RestaurantID: params.RestaurantID,
		Category:     params.Category,
	})
	if model.HandleUploadError(c, err) {
		return
	}

	response.Success(c, http.StatusCreated, model.NewUploadResponse(asset))
}

// GetAsset handles GET /uploads/:id.
func (h *UploadHandler) GetAsset(c *gin.Context) {
	asset, err := h.service.GetAsset(c.Request.Context(), c.Param("id"))
	if model.HandleUploadError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, asset)
}

// ListAssets handles GET /uploads?tenant_id=&restaurant_id=.
func (h *UploadHandler) ListAssets(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	restaurantID := c.Query("restaurant_id")
	if tenantID == "" || restaurantID == "" {
		response.BadRequest(c, "tenant_id and restaurant_id are required")
		return
	}

	assets, err := h.service.ListAssets(c.Request.Context(), tenantID, restaurantID)
	if model.HandleUploadError(c, err) {
		return
	}
	response.Success(c, http.StatusOK, assets)
}

// DeleteAsset handles DELETE /uploads/:id. Deletion runs asynchronously on
// the worker; the handler only acknowledges the request.
func (h *UploadHandler) DeleteAsset(c *gin.Context) {
	if err := h.service.RequestDelete(c.Request.Context(), c.Param("id")); model.HandleUploadError(c, err) {
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"status": "deletion scheduled"})
}

// readMultipartFile reads the payload with a hard cap, so a lying
// Content-Length cannot push an oversized body through.
func readMultipartFile(header *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open multipart file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read multipart file: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, model.ErrPayloadTooLarge
	}
	return data, nil
}
