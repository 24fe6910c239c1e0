package main

import (
	"github.com/hibiken/asynq"

	uploadJob "menucms-backend/internal/domains/upload/job"
	uploadModel "menucms-backend/internal/domains/upload/model"
	"menucms-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	deleteAsset  *uploadJob.DeleteAssetHandler
	sweepStaging *uploadJob.SweepStagingHandler
}

// initializeHandlers creates all job handlers with their dependencies.
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		deleteAsset:  uploadJob.NewDeleteAssetHandler(c.UploadService),
		sweepStaging: uploadJob.NewSweepStagingHandler(c.UploadService),
	}
}

// RegisterHandlers maps task types onto their handlers.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(uploadModel.TaskDeleteAsset, h.deleteAsset)
	mux.Handle(uploadModel.TaskSweepStaging, h.sweepStaging)
}
