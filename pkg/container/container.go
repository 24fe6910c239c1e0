package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"menucms-backend/internal/config"
	infraCache "menucms-backend/internal/infrastructure/cache"
	"menucms-backend/internal/infrastructure/database"
	"menucms-backend/internal/infrastructure/imgproc"
	"menucms-backend/internal/infrastructure/queue"
	"menucms-backend/internal/infrastructure/storage"
	"menucms-backend/pkg/cache"

	uploadHandler "menucms-backend/internal/domains/upload/handler"
	uploadRepo "menucms-backend/internal/domains/upload/repository"
	uploadService "menucms-backend/internal/domains/upload/service"
)

// Container holds all application dependencies. It is the root of the
// dependency graph; everything in it is a singleton for the app lifetime.
type Container struct {
	// Infrastructure layer
	Config       *config.Config
	DB           *database.PostgresDB
	Cache        cache.Cache
	RedisCache   *infraCache.RedisCache
	AsynqClient  *queue.Client
	LocalStorage *storage.LocalStorage

	// Image pipeline
	Registry   *imgproc.Registry
	Compressor *imgproc.Compressor
	Resolver   *storage.Resolver

	// Upload domain
	AssetRepo     uploadRepo.AssetRepository
	UploadService uploadService.UploadService
	UploadHandler *uploadHandler.UploadHandler
}

// NewContainer initializes the whole dependency graph.
//
// Initialization order matters:
// 1. Config (depends on nothing)
// 2. Infrastructure (DB, cache, queue, storage backends)
// 3. Pipeline components (registry, compressor, resolver)
// 4. Repositories, services, handlers
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")
	c := &Container{}

	// Step 1: configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// Step 2: database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	log.Println("✅ PostgreSQL connected")

	// Step 3: redis (cache + queue). A dead redis degrades caching and async
	// deletion, it does not block uploads.
	rc := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := rc.Ping(ctx); err != nil {
		log.Printf("⚠️  Redis unreachable, caching degraded: %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.RedisCache = rc
	c.Cache = rc
	c.AsynqClient = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	// Step 4: storage chain, remote first when credentials are present.
	// A remote backend that cannot be reached at startup is skipped: uploads
	// degrade to local persistence instead of the app refusing to boot.
	var backends []storage.Backend
	if cfg.MinIO.Configured() {
		remote, err := storage.NewMinIOStorage(cfg.MinIO)
		if err != nil {
			log.Printf("⚠️  MinIO unavailable, falling back to local storage: %v", err)
		} else {
			backends = append(backends, remote)
			log.Println("✅ MinIO storage configured")
		}
	} else {
		log.Println("ℹ️  MinIO credentials absent, local storage only")
	}

	local, err := storage.NewLocalStorage(cfg.Storage.LocalRoot, cfg.Storage.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init local storage: %w", err)
	}
	c.LocalStorage = local
	backends = append(backends, local)
	c.Resolver = storage.NewResolver(backends...)

	// Step 5: image pipeline
	registry, err := buildRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build profile registry: %w", err)
	}
	c.Registry = registry
	c.Compressor = imgproc.NewCompressor()

	// Step 6: upload domain
	c.AssetRepo = uploadRepo.NewAssetRepository(db.Pool)
	c.UploadService = uploadService.NewUploadService(
		c.Registry,
		c.Compressor,
		c.Resolver,
		c.AssetRepo,
		c.Cache,
		c.AsynqClient,
		cfg.Storage.StagingDir,
		time.Duration(cfg.Pipeline.TimeoutSeconds)*time.Second,
	)
	c.UploadHandler = uploadHandler.NewUploadHandler(
		c.UploadService,
		cfg.Storage.StagingDir,
		cfg.Storage.MaxUploadMB,
	)

	log.Println("✅ Container initialized")
	return c, nil
}

// buildRegistry applies environment profile overrides on top of the built-in
// table.
func buildRegistry() (*imgproc.Registry, error) {
	base := imgproc.NewRegistry()
	raw := config.ProfileOverrides(base.Categories())

	overrides := make([]imgproc.ProfileOverride, 0, len(raw))
	for _, o := range raw {
		overrides = append(overrides, imgproc.ProfileOverride{
			Category:       o.Category,
			MinSizeKB:      o.MinSizeKB,
			MaxSizeKB:      o.MaxSizeKB,
			InitialQuality: o.InitialQuality,
			MaxIterations:  o.MaxIterations,
		})
	}
	return imgproc.NewRegistryWithOverrides(overrides)
}

// Cleanup releases all infrastructure resources. Called on shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}
	if c.RedisCache != nil {
		if err := c.RedisCache.Close(); err != nil {
			log.Printf("⚠️  Failed to close redis: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}

	log.Println("✅ Cleanup completed")
}
