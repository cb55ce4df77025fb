package models

import "time"

const (
	CaptionProviderSDK      = "cloud_sdk"
	CaptionProviderHTTP     = "cloud_http"
	CaptionProviderTemplate = "template"
)

// CaptionResult is the outcome of caption resolution. Text is always
// non-empty; the resolver degrades to the template tier instead of failing.
type CaptionResult struct {
	Text     string            `json:"text"`
	Provider string            `json:"provider"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CaptionLog is one audit entry per resolved caption.
type CaptionLog struct {
	ID        int64     `db:"id" json:"id"`
	ImageName string    `db:"image_name" json:"image_name"`
	Style     string    `db:"style" json:"style"`
	Caption   string    `db:"caption" json:"caption"`
	Provider  string    `db:"provider" json:"provider"`
	Extra     string    `db:"extra" json:"extra,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
