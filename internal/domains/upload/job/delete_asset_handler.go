package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"menucms-backend/internal/domains/upload/model"
	uploadService "menucms-backend/internal/domains/upload/service"
)

// DeleteAssetHandler removes an asset when its owning menu item, banner or
// logo record is deleted. Runs on the worker; safe to retry.
type DeleteAssetHandler struct {
	uploadService uploadService.UploadService
}

func NewDeleteAssetHandler(svc uploadService.UploadService) *DeleteAssetHandler {
	return &DeleteAssetHandler{uploadService: svc}
}

func (h *DeleteAssetHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.DeleteAssetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeleteAsset payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("asset_id", payload.AssetID).
		Msg("Deleting upload asset")

	if err := h.uploadService.DeleteAsset(ctx, payload.AssetID); err != nil {
		log.Error().
			Err(err).
			Str("asset_id", payload.AssetID).
			Msg("Failed to delete upload asset")
		return fmt.Errorf("delete asset: %w", err)
	}

	return nil
}
