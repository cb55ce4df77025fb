package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

type CaptionLogRepository interface {
	Create(ctx context.Context, entry *models.CaptionLog) (int64, error)
	Recent(ctx context.Context, limit int) ([]*models.CaptionLog, error)
}

type captionLogRepository struct {
	db *sql.DB
}

func NewCaptionLogRepository(db *sql.DB) CaptionLogRepository {
	return &captionLogRepository{db: db}
}

func (r *captionLogRepository) Create(ctx context.Context, entry *models.CaptionLog) (int64, error) {
	query := `
		INSERT INTO caption_log (image_name, style, caption, provider, extra)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, entry.ImageName, entry.Style,
		entry.Caption, entry.Provider, entry.Extra).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *captionLogRepository) Recent(ctx context.Context, limit int) ([]*models.CaptionLog, error) {
	query := `
		SELECT id, image_name, style, caption, provider, extra, created_at
		FROM caption_log
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CaptionLog
	for rows.Next() {
		var e models.CaptionLog
		err := rows.Scan(&e.ID, &e.ImageName, &e.Style, &e.Caption, &e.Provider, &e.Extra, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
