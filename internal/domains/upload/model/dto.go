package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"menucms-backend/internal/infrastructure/imgproc"
)

// UploadParams are the request-scoped fields the gateway binds before
// staging the payload.
type UploadParams struct {
	Category     string `uri:"category"`
	TenantID     string `form:"tenant_id"`
	RestaurantID string `form:"restaurant_id"`
}

func (p UploadParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Category,
			validation.Required,
			validation.In(imgproc.CategoryMenuItem, imgproc.CategoryBanner, imgproc.CategoryLogo),
		),
		validation.Field(&p.TenantID, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.RestaurantID, validation.Length(0, 64)),
	)
}

// UploadResponse is what the gateway returns to the CMS frontend.
type UploadResponse struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	Backend    string `json:"backend"`
	Category   string `json:"category"`
	SizeBytes  int64  `json:"size_bytes"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	BestEffort bool   `json:"best_effort"`
}

// NewUploadResponse builds the response DTO from a stored asset.
func NewUploadResponse(a *Asset) *UploadResponse {
	return &UploadResponse{
		ID:         a.ID,
		URL:        a.URL,
		Backend:    a.Backend,
		Category:   a.Category,
		SizeBytes:  a.SizeBytes,
		Width:      a.Width,
		Height:     a.Height,
		BestEffort: a.BestEffort,
	}
}
