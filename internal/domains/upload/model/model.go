package model

import (
	"time"
)

// Asset statuses. An asset row exists only after persistence succeeded, so
// there is no pending state; deleted rows are removed, not flagged.
const (
	AssetStatusStored = "stored"
)

// UploadRequest is the pipeline's input. Immutable once received: the
// gateway fills it from the multipart request and the service only reads it.
type UploadRequest struct {
	// StagingPath is where the gateway staged the raw payload. The service
	// owns its cleanup on every exit path.
	StagingPath  string
	DeclaredMIME string
	DeclaredSize int64
	TenantID     string
	RestaurantID string
	Category     string
}

// Asset is the persisted record of one processed upload.
type Asset struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	Category     string    `json:"category"`
	Backend      string    `json:"backend"` // remote | local
	StorageKey   string    `json:"storage_key"`
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Quality      int       `json:"quality"`
	BestEffort   bool      `json:"best_effort"`
	CreatedAt    time.Time `json:"created_at"`
}
