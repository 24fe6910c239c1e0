package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"menucms-backend/internal/domains/upload/model"
	"menucms-backend/internal/domains/upload/repository"
	"menucms-backend/internal/infrastructure/imgproc"
	"menucms-backend/pkg/cache"
)

// StagingPrefix names the files the gateway stages into the staging dir.
// The sweep job only ever touches files carrying it.
const StagingPrefix = "upload-"

const assetCacheTTL = 10 * time.Minute

type uploadService struct {
	registry   *imgproc.Registry
	compressor *imgproc.Compressor
	persister  AssetPersister
	repo       repository.AssetRepository
	cache      cache.Cache
	enqueuer   TaskEnqueuer
	stagingDir string
	timeout    time.Duration
}

// NewUploadService wires the pipeline together. cache and enqueuer may be
// nil; the pipeline itself never depends on them.
func NewUploadService(
	registry *imgproc.Registry,
	compressor *imgproc.Compressor,
	persister AssetPersister,
	repo repository.AssetRepository,
	c cache.Cache,
	enqueuer TaskEnqueuer,
	stagingDir string,
	timeout time.Duration,
) UploadService {
	return &uploadService{
		registry:   registry,
		compressor: compressor,
		persister:  persister,
		repo:       repo,
		cache:      c,
		enqueuer:   enqueuer,
		stagingDir: stagingDir,
		timeout:    timeout,
	}
}

// Upload runs the pipeline on one staged payload. The staging file is
// removed on every exit path: success, decode failure, encode failure,
// storage failure, timeout and cancellation.
func (s *uploadService) Upload(ctx context.Context, req *model.UploadRequest) (*model.Asset, error) {
	defer func() {
		if req.StagingPath != "" {
			if err := os.Remove(req.StagingPath); err != nil && !os.IsNotExist(err) {
				log.Warn().Err(err).Str("path", req.StagingPath).Msg("Failed to remove staging file")
			}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.registry.Lookup(req.Category)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(req.StagingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged upload: %w", err)
	}

	src, err := imgproc.Normalize(data)
	if err != nil {
		return nil, err
	}

	result, err := s.compressor.Compress(ctx, data, src, profile)
	if err != nil {
		return nil, mapDeadline(ctx, err)
	}

	stored, err := s.persister.Persist(ctx, req.Category, result.Format.Ext(), result.Data, result.Format.ContentType())
	if err != nil {
		return nil, mapDeadline(ctx, err)
	}

	asset := &model.Asset{
		TenantID:     req.TenantID,
		RestaurantID: req.RestaurantID,
		Category:     req.Category,
		Backend:      stored.Backend,
		StorageKey:   stored.Key,
		URL:          stored.URL,
		ContentType:  stored.ContentType,
		SizeBytes:    stored.SizeBytes,
		Width:        result.Width,
		Height:       result.Height,
		Quality:      result.Quality,
		BestEffort:   result.BestEffort,
		CreatedAt:    time.Now().UTC(),
	}

	// The image is durably persisted at this point; a record-keeping failure
	// must not throw it away.
	if s.repo != nil {
		if err := s.repo.Create(ctx, asset); err != nil {
			log.Error().Err(err).Str("key", stored.Key).Msg("Failed to record upload asset")
		}
	}
	s.cacheSet(ctx, asset)

	log.Info().
		Str("category", req.Category).
		Str("backend", stored.Backend).
		Str("key", stored.Key).
		Int64("size_bytes", stored.SizeBytes).
		Int("quality", result.Quality).
		Int("iterations", result.Iterations).
		Bool("best_effort", result.BestEffort).
		Msg("Upload processed")

	return asset, nil
}

// GetAsset returns an asset record, consulting the cache first.
func (s *uploadService) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	if s.cache != nil {
		var cached model.Asset
		found, err := s.cache.Get(ctx, assetCacheKey(id), &cached)
		if err != nil {
			log.Warn().Err(err).Str("asset_id", id).Msg("Asset cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, asset)
	return asset, nil
}

func (s *uploadService) ListAssets(ctx context.Context, tenantID, restaurantID string) ([]*model.Asset, error) {
	return s.repo.ListByRestaurant(ctx, tenantID, restaurantID)
}

// RequestDelete enqueues asynchronous deletion. Falls back to deleting
// inline when no queue is configured.
func (s *uploadService) RequestDelete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if s.enqueuer == nil {
		return s.DeleteAsset(ctx, id)
	}
	if err := s.enqueuer.Enqueue(ctx, model.TaskDeleteAsset, model.DeleteAssetPayload{AssetID: id}); err != nil {
		return fmt.Errorf("failed to enqueue asset deletion: %w", err)
	}
	return nil
}

// DeleteAsset removes the stored object from the backend recorded at persist
// time, then the record and cache entry. Safe to retry: a missing object or
// row counts as deleted.
func (s *uploadService) DeleteAsset(ctx context.Context, id string) error {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrAssetNotFound) {
			return nil
		}
		return err
	}

	if err := s.persister.Delete(ctx, asset.Backend, asset.StorageKey); err != nil {
		return fmt.Errorf("failed to delete stored object: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, assetCacheKey(id)); err != nil {
			log.Warn().Err(err).Str("asset_id", id).Msg("Asset cache invalidation failed")
		}
	}

	log.Info().
		Str("asset_id", id).
		Str("backend", asset.Backend).
		Str("key", asset.StorageKey).
		Msg("Asset deleted")
	return nil
}

// SweepStaging removes staged files older than maxAge. Only files carrying
// the staging prefix are considered; everything else in the directory is
// left alone.
func (s *uploadService) SweepStaging(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.stagingDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read staging dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), StagingPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.stagingDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to sweep staging file")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Staging sweep completed")
	}
	return removed, nil
}

func (s *uploadService) cacheSet(ctx context.Context, asset *model.Asset) {
	if s.cache == nil || asset.ID == "" {
		return
	}
	if err := s.cache.Set(ctx, assetCacheKey(asset.ID), asset, assetCacheTTL); err != nil {
		log.Warn().Err(err).Str("asset_id", asset.ID).Msg("Asset cache write failed")
	}
}

func assetCacheKey(id string) string {
	return "upload:asset:" + id
}

// mapDeadline turns a context deadline hit anywhere in the pipeline into the
// caller-facing timeout error. Plain cancellation (client disconnect) is
// passed through untouched.
func mapDeadline(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrTimeout, err)
	}
	return err
}
