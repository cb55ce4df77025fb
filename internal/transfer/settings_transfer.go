package transfer

// SettingsUpdate carries the editable pipeline overrides. Nil pointers
// leave the stored value untouched.
type SettingsUpdate struct {
	PostSlots        *string `json:"post_slots,omitempty"`
	Timezone         *string `json:"timezone,omitempty"`
	CaptionStyle     *string `json:"caption_style,omitempty"`
	ImageSource      *string `json:"image_source,omitempty"`
	CaptionTemplates *string `json:"caption_templates,omitempty"`
	OpenAIAPIKey     *string `json:"openai_api_key,omitempty"`
	ReplicateToken   *string `json:"replicate_token,omitempty"`
	LeonardoToken    *string `json:"leonardo_token,omitempty"`
}

// SettingsSnapshot is the merged, effective configuration returned by the
// settings endpoint. Secrets are reported as set/unset only.
type SettingsSnapshot struct {
	PipelineEnabled  bool     `json:"pipeline_enabled"`
	DryRun           bool     `json:"dry_run"`
	PostSlots        []string `json:"post_slots"`
	Timezone         string   `json:"timezone"`
	MaxPostsPerCycle int      `json:"max_posts_per_cycle"`
	ImageSource      string   `json:"image_source"`
	CaptionStyle     string   `json:"caption_style"`
	CaptionModel     string   `json:"caption_model"`
	CaptionTemplates []string `json:"caption_templates"`
	Platforms        []string `json:"platforms"`
	OpenAIKeySet     bool     `json:"openai_key_set"`
	ReplicateSet     bool     `json:"replicate_token_set"`
	LeonardoSet      bool     `json:"leonardo_token_set"`
}
