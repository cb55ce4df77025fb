package transfer

import "time"

// ReadyImage describes one file in the ready directory.
type ReadyImage struct {
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Used       bool      `json:"used"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ScheduleEntry is one registered trigger with its next fire time.
type ScheduleEntry struct {
	Slot    string    `json:"slot"`
	NextRun time.Time `json:"next_run"`
}

// ScheduleOverview is the scheduler introspection payload.
type ScheduleOverview struct {
	Enabled   bool            `json:"enabled"`
	Running   bool            `json:"running"`
	Timezone  string          `json:"timezone"`
	PostSlots []string        `json:"post_slots"`
	Entries   []ScheduleEntry `json:"entries"`
}

// CaptionPreview is the request body for ad-hoc caption drafts.
type CaptionPreview struct {
	ImageName string `json:"image_name"`
	Style     string `json:"style"`
}
