package models

import "time"

const (
	StagePrepare = "prepare"
	StagePublish = "publish"
)

// PostRecord is one append-only entry of the publish log. Successful
// publishes carry a platform and optionally an external id; failed cycles
// carry a stage and an error message.
type PostRecord struct {
	ID            int64     `db:"id" json:"id"`
	AssetIdentity string    `db:"asset_identity" json:"asset_identity"`
	AssetPath     string    `db:"asset_path" json:"asset_path"`
	Caption       string    `db:"caption" json:"caption"`
	Style         string    `db:"style" json:"style"`
	Platform      string    `db:"platform" json:"platform"`
	ExternalID    string    `db:"external_id" json:"external_id"`
	Stage         string    `db:"stage" json:"stage,omitempty"`
	DryRun        bool      `db:"dry_run" json:"dry_run"`
	ErrorMessage  string    `db:"error_message" json:"error_message,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PublishOutcome is one platform's terminal result within a cycle.
type PublishOutcome struct {
	Platform string `json:"platform"`
	PostID   string `json:"post_id,omitempty"`
	DryRun   bool   `json:"dry_run"`
}

// PublishError pairs a platform with the error it raised. A platform
// always ends up either in the outcome list or the error list, never both
// and never neither.
type PublishError struct {
	Platform string `json:"platform"`
	Error    string `json:"error"`
}
