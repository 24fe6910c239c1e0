package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menucms-backend/internal/domains/upload/model"
	"menucms-backend/internal/domains/upload/service"
)

// stubUploadService records calls and returns scripted results.
type stubUploadService struct {
	uploadFn func(ctx context.Context, req *model.UploadRequest) (*model.Asset, error)
	getFn    func(ctx context.Context, id string) (*model.Asset, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubUploadService) Upload(ctx context.Context, req *model.UploadRequest) (*model.Asset, error) {
	return s.uploadFn(ctx, req)
}

func (s *stubUploadService) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	return s.getFn(ctx, id)
}

func (s *stubUploadService) ListAssets(context.Context, string, string) ([]*model.Asset, error) {
	return nil, nil
}

func (s *stubUploadService) RequestDelete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUploadService) DeleteAsset(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUploadService) SweepStaging(context.Context, time.Duration) (int, error) {
	return 0, nil
}

func newTestRouter(svc service.UploadService, stagingDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUploadHandler(svc, stagingDir, 1)

	router := gin.New()
	uploads := router.Group("/api/v1/uploads")
	{
		uploads.POST("/:category", h.Upload)
		uploads.GET("", h.ListAssets)
		uploads.GET("/:id", h.GetAsset)
		uploads.DELETE("/:id", h.DeleteAsset)
	}
	return router
}

// multipartBody builds a form with the image field plus tenant identifiers.
func multipartBody(t *testing.T, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("tenant_id", "tenant-1"))
	require.NoError(t, w.WriteField("restaurant_id", "restaurant-1"))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func smallJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestUploadEndpointSuccess(t *testing.T) {
	stagingDir := t.TempDir()
	var gotReq *model.UploadRequest
	svc := &stubUploadService{
		uploadFn: func(_ context.Context, req *model.UploadRequest) (*model.Asset, error) {
			gotReq = req
			assert.FileExists(t, req.StagingPath, "payload must be staged before the pipeline runs")
			return &model.Asset{
				ID:       "a-1",
				Category: req.Category,
				URL:      "/uploads/menu-item/a-1.jpg",
			}, nil
		},
	}
	router := newTestRouter(svc, stagingDir)

	body, contentType := multipartBody(t, smallJPEG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/menu-item", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "/uploads/menu-item/a-1.jpg")
	require.NotNil(t, gotReq)
	assert.Equal(t, "menu-item", gotReq.Category)
	assert.Equal(t, "tenant-1", gotReq.TenantID)
	assert.Equal(t, "image/jpeg", gotReq.DeclaredMIME)
	assert.True(t, strings.HasPrefix(filepath.Base(gotReq.StagingPath), service.StagingPrefix))
}

func TestUploadEndpointMissingFile(t *testing.T) {
	router := newTestRouter(&stubUploadService{}, t.TempDir())

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("tenant_id", "tenant-1"))
	require.NoError(t, w.WriteField("restaurant_id", "restaurant-1"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/menu-item", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadEndpointUnknownCategory(t *testing.T) {
	router := newTestRouter(&stubUploadService{}, t.TempDir())

	body, contentType := multipartBody(t, smallJPEG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/billboard", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadEndpointPayloadTooLarge(t *testing.T) {
	stagingDir := t.TempDir()
	router := newTestRouter(&stubUploadService{}, stagingDir)

	body, contentType := multipartBody(t, bytes.Repeat([]byte{0xFF}, 1<<20+1))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/menu-item", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	entries, err := os.ReadDir(stagingDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected payloads must never reach the staging dir")
}

func TestUploadEndpointUnsupportedMIME(t *testing.T) {
	router := newTestRouter(&stubUploadService{}, t.TempDir())

	body, contentType := multipartBody(t, []byte("%PDF-1.4 definitely not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/menu-item", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadEndpointDecodeFailure(t *testing.T) {
	svc := &stubUploadService{
		uploadFn: func(context.Context, *model.UploadRequest) (*model.Asset, error) {
			return nil, model.ErrDecode
		},
	}
	router := newTestRouter(svc, t.TempDir())

	body, contentType := multipartBody(t, smallJPEG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/menu-item", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUploadEndpointTimeout(t *testing.T) {
	svc := &stubUploadService{
		uploadFn: func(context.Context, *model.UploadRequest) (*model.Asset, error) {
			return nil, model.ErrTimeout
		},
	}
	router := newTestRouter(svc, t.TempDir())

	body, contentType := multipartBody(t, smallJPEG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/menu-item", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestGetAssetEndpointNotFound(t *testing.T) {
	svc := &stubUploadService{
		getFn: func(context.Context, string) (*model.Asset, error) {
			return nil, model.ErrAssetNotFound
		},
	}
	router := newTestRouter(svc, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/missing-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAssetsEndpointRequiresTenantScope(t *testing.T) {
	router := newTestRouter(&stubUploadService{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAssetEndpointAccepted(t *testing.T) {
	var deletedID string
	svc := &stubUploadService{
		deleteFn: func(_ context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	router := newTestRouter(svc, t.TempDir())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/uploads/a-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "a-1", deletedID)
}
