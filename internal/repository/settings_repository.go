package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/postpilot/internal/models"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, bool, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, bool, error) {
	query := `
		SELECT id, post_slots, timezone, caption_style, image_source, caption_templates,
			openai_api_key, replicate_token, leonardo_token, updated_at
		FROM settings WHERE id = 1
	`
	row := r.db.QueryRowContext(ctx, query)

	var s models.Settings
	err := row.Scan(&s.ID, &s.PostSlots, &s.Timezone, &s.CaptionStyle, &s.ImageSource,
		&s.CaptionTemplates, &s.OpenAIAPIKey, &s.ReplicateToken, &s.LeonardoToken, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (id, post_slots, timezone, caption_style, image_source, caption_templates,
			openai_api_key, replicate_token, leonardo_token, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			post_slots = excluded.post_slots,
			timezone = excluded.timezone,
			caption_style = excluded.caption_style,
			image_source = excluded.image_source,
			caption_templates = excluded.caption_templates,
			openai_api_key = excluded.openai_api_key,
			replicate_token = excluded.replicate_token,
			leonardo_token = excluded.leonardo_token,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, s.PostSlots, s.Timezone, s.CaptionStyle,
		s.ImageSource, s.CaptionTemplates, s.OpenAIAPIKey, s.ReplicateToken,
		s.LeonardoToken, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
