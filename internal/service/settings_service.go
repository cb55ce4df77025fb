package service

import (
	"context"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"github.com/maheshrc27/postpilot/pkg/utils"
)

// SettingsService manages the single row of runtime overrides. Overrides
// merge over the env configuration; secrets are stored AES-GCM encrypted
// with the app secret key.
type SettingsService interface {
	Snapshot(ctx context.Context) (*transfer.SettingsSnapshot, error)
	Update(ctx context.Context, update *transfer.SettingsUpdate) error
	Apply(ctx context.Context, base *config.Config) (*config.Config, error)
}

type settingsService struct {
	cfg      *config.Config
	settings repository.SettingsRepository
}

func NewSettingsService(cfg *config.Config, settings repository.SettingsRepository) SettingsService {
	return &settingsService{cfg: cfg, settings: settings}
}

// Apply returns a copy of base with stored overrides merged in. The base
// config is never mutated; callers rebuild services from the copy.
func (s *settingsService) Apply(ctx context.Context, base *config.Config) (*config.Config, error) {
	merged := *base

	stored, found, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return &merged, nil
	}

	if stored.PostSlots != "" {
		merged.PostSlots = splitList(stored.PostSlots)
	}
	if stored.Timezone != "" {
		merged.Timezone = stored.Timezone
	}
	if stored.CaptionStyle != "" {
		merged.CaptionStyle = stored.CaptionStyle
	}
	if stored.ImageSource != "" {
		merged.ImageSource = strings.ToLower(stored.ImageSource)
	}
	if stored.CaptionTemplates != "" {
		merged.CaptionTemplates = splitList(stored.CaptionTemplates)
	}
	if v := s.decrypt(stored.OpenAIAPIKey); v != "" {
		merged.OpenAIAPIKey = v
	}
	if v := s.decrypt(stored.ReplicateToken); v != "" {
		merged.ReplicateToken = v
	}
	if v := s.decrypt(stored.LeonardoToken); v != "" {
		merged.LeonardoToken = v
	}

	return &merged, nil
}

func (s *settingsService) Snapshot(ctx context.Context) (*transfer.SettingsSnapshot, error) {
	merged, err := s.Apply(ctx, s.cfg)
	if err != nil {
		return nil, err
	}

	return &transfer.SettingsSnapshot{
		PipelineEnabled:  merged.PipelineEnabled,
		DryRun:           merged.DryRun,
		PostSlots:        merged.PostSlots,
		Timezone:         merged.Timezone,
		MaxPostsPerCycle: merged.MaxPostsPerCycle,
		ImageSource:      merged.ImageSource,
		CaptionStyle:     merged.CaptionStyle,
		CaptionModel:     merged.CaptionModel,
		CaptionTemplates: merged.CaptionTemplates,
		Platforms:        merged.Platforms,
		OpenAIKeySet:     merged.OpenAIAPIKey != "",
		ReplicateSet:     merged.ReplicateToken != "",
		LeonardoSet:      merged.LeonardoToken != "",
	}, nil
}

func (s *settingsService) Update(ctx context.Context, update *transfer.SettingsUpdate) error {
	stored, found, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !found {
		stored = &models.Settings{ID: 1}
	}

	if update.PostSlots != nil {
		stored.PostSlots = *update.PostSlots
	}
	if update.Timezone != nil {
		stored.Timezone = *update.Timezone
	}
	if update.CaptionStyle != nil {
		stored.CaptionStyle = *update.CaptionStyle
	}
	if update.ImageSource != nil {
		stored.ImageSource = strings.ToLower(*update.ImageSource)
	}
	if update.CaptionTemplates != nil {
		stored.CaptionTemplates = *update.CaptionTemplates
	}
	if update.OpenAIAPIKey != nil {
		if stored.OpenAIAPIKey, err = s.encrypt(*update.OpenAIAPIKey); err != nil {
			return err
		}
	}
	if update.ReplicateToken != nil {
		if stored.ReplicateToken, err = s.encrypt(*update.ReplicateToken); err != nil {
			return err
		}
	}
	if update.LeonardoToken != nil {
		if stored.LeonardoToken, err = s.encrypt(*update.LeonardoToken); err != nil {
			return err
		}
	}

	return s.settings.Upsert(ctx, stored)
}

func (s *settingsService) encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return utils.Encrypt([]byte(value), []byte(s.cfg.SecretKey))
}

func (s *settingsService) decrypt(value string) string {
	if value == "" {
		return ""
	}
	plain, err := utils.Decrypt(value, []byte(s.cfg.SecretKey))
	if err != nil {
		slog.Warn("failed to decrypt stored secret, ignoring it", "error", err)
		return ""
	}
	return plain
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
