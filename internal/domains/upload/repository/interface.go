package repository

import (
	"context"

	"menucms-backend/internal/domains/upload/model"
)

// AssetRepository is the data access contract for upload_assets.
type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	GetByID(ctx context.Context, id string) (*model.Asset, error)
	ListByRestaurant(ctx context.Context, tenantID, restaurantID string) ([]*model.Asset, error)
	Delete(ctx context.Context, id string) error
}
