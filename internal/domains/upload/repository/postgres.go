package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"menucms-backend/internal/domains/upload/model"
)

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository creates the pgx-backed asset repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

// Create inserts a new asset record.
func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	query := `
        INSERT INTO upload_assets (
            tenant_id, restaurant_id, category, backend, storage_key,
            url, content_type, size_bytes, width, height, quality, best_effort
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at
    `

	err := r.pool.QueryRow(
		ctx, query,
		asset.TenantID,
		asset.RestaurantID,
		asset.Category,
		asset.Backend,
		asset.StorageKey,
		asset.URL,
		asset.ContentType,
		asset.SizeBytes,
		asset.Width,
		asset.Height,
		asset.Quality,
		asset.BestEffort,
	).Scan(&asset.ID, &asset.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create upload asset: %w", err)
	}
	return nil
}

// GetByID returns one asset, or ErrAssetNotFound.
func (r *assetRepository) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	query := `
        SELECT id, tenant_id, restaurant_id, category, backend, storage_key,
               url, content_type, size_bytes, width, height, quality,
               best_effort, created_at
        FROM upload_assets
        WHERE id = $1
    `

	asset := &model.Asset{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.TenantID,
		&asset.RestaurantID,
		&asset.Category,
		&asset.Backend,
		&asset.StorageKey,
		&asset.URL,
		&asset.ContentType,
		&asset.SizeBytes,
		&asset.Width,
		&asset.Height,
		&asset.Quality,
		&asset.BestEffort,
		&asset.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to get upload asset: %w", err)
	}
	return asset, nil
}

// ListByRestaurant returns all assets owned by one restaurant, newest first.
func (r *assetRepository) ListByRestaurant(ctx context.Context, tenantID, restaurantID string) ([]*model.Asset, error) {
	query := `
        SELECT id, tenant_id, restaurant_id, category, backend, storage_key,
               url, content_type, size_bytes, width, height, quality,
               best_effort, created_at
        FROM upload_assets
        WHERE tenant_id = $1 AND restaurant_id = $2
        ORDER BY created_at DESC
    `

	rows, err := r.pool.Query(ctx, query, tenantID, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload assets: %w", err)
	}
	defer rows.Close()

	var assets []*model.Asset
	for rows.Next() {
		asset := &model.Asset{}
		if err := rows.Scan(
			&asset.ID,
			&asset.TenantID,
			&asset.RestaurantID,
			&asset.Category,
			&asset.Backend,
			&asset.StorageKey,
			&asset.URL,
			&asset.ContentType,
			&asset.SizeBytes,
			&asset.Width,
			&asset.Height,
			&asset.Quality,
			&asset.BestEffort,
			&asset.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read upload assets: %w", err)
	}
	return assets, nil
}

// Delete removes the row. Deleting a row that is already gone is success:
// the worker may retry a delete task that half-completed.
func (r *assetRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM upload_assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload asset: %w", err)
	}
	return nil
}
