package model

// Asynq task type names for the upload domain.
const (
	TaskDeleteAsset  = "asset:delete"
	TaskSweepStaging = "upload:sweep_staging"
)

// DeleteAssetPayload asks the worker to remove an asset from its recorded
// backend and drop the DB row.
type DeleteAssetPayload struct {
	AssetID string `json:"asset_id"`
}

// SweepStagingPayload is carried by the scheduled staging sweep.
type SweepStagingPayload struct {
	MaxAgeMinutes int `json:"max_age_minutes"`
}
