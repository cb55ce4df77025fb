package models

import "time"

// Settings is the single-row table of runtime overrides edited through the
// API. Empty fields fall back to the env configuration. Secret fields are
// stored AES-GCM encrypted.
type Settings struct {
	ID               int64     `db:"id" json:"id"`
	PostSlots        string    `db:"post_slots" json:"post_slots"`
	Timezone         string    `db:"timezone" json:"timezone"`
	CaptionStyle     string    `db:"caption_style" json:"caption_style"`
	ImageSource      string    `db:"image_source" json:"image_source"`
	CaptionTemplates string    `db:"caption_templates" json:"caption_templates"`
	OpenAIAPIKey     string    `db:"openai_api_key" json:"-"`
	ReplicateToken   string    `db:"replicate_token" json:"-"`
	LeonardoToken    string    `db:"leonardo_token" json:"-"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
