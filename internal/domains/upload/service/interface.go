package service

import (
	"context"
	"time"

	"menucms-backend/internal/domains/upload/model"
	"menucms-backend/internal/infrastructure/storage"
)

// UploadService runs the image ingestion pipeline:
// decode -> normalize -> compress -> persist, strictly in that order.
type UploadService interface {
	// Upload processes one staged payload and returns the stored asset.
	Upload(ctx context.Context, req *model.UploadRequest) (*model.Asset, error)

	// GetAsset returns an asset record, cache-first.
	GetAsset(ctx context.Context, id string) (*model.Asset, error)

	// ListAssets returns all assets of one restaurant.
	ListAssets(ctx context.Context, tenantID, restaurantID string) ([]*model.Asset, error)

	// RequestDelete enqueues asynchronous deletion of an asset.
	RequestDelete(ctx context.Context, id string) error

	// DeleteAsset removes the stored object and the record. Called by the
	// worker; idempotent.
	DeleteAsset(ctx context.Context, id string) error

	// SweepStaging removes staged files older than maxAge. Safety net for
	// temp files leaked by crashed processes; returns how many were removed.
	SweepStaging(ctx context.Context, maxAge time.Duration) (int, error)
}

// AssetPersister is the storage resolver contract the service depends on.
type AssetPersister interface {
	Persist(ctx context.Context, category, ext string, data []byte, contentType string) (*storage.StoredAsset, error)
	Delete(ctx context.Context, backend, key string) error
}

// TaskEnqueuer pushes background tasks onto the queue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload interface{}) error
}
