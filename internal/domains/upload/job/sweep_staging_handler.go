package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"menucms-backend/internal/domains/upload/model"
	uploadService "menucms-backend/internal/domains/upload/service"
)

// SweepStagingHandler runs the scheduled staging-directory sweep.
type SweepStagingHandler struct {
	uploadService uploadService.UploadService
}

func NewSweepStagingHandler(svc uploadService.UploadService) *SweepStagingHandler {
	return &SweepStagingHandler{uploadService: svc}
}

func (h *SweepStagingHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.SweepStagingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.MaxAgeMinutes <= 0 {
		payload.MaxAgeMinutes = 60
	}

	removed, err := h.uploadService.SweepStaging(ctx, time.Duration(payload.MaxAgeMinutes)*time.Minute)
	if err != nil {
		return fmt.Errorf("sweep staging: %w", err)
	}

	log.Info().
		Int("removed", removed).
		Int("max_age_minutes", payload.MaxAgeMinutes).
		Msg("Staging sweep finished")
	return nil
}
