package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
)

type PostHistoryRepository interface {
	Create(ctx context.Context, record *models.PostRecord) (int64, error)
	PostedIdentities(ctx context.Context) (map[string]struct{}, error)
	IsPosted(ctx context.Context, identity string) (bool, error)
	Recent(ctx context.Context, limit int) ([]*models.PostRecord, error)
}

type postHistoryRepository struct {
	db *sql.DB
}

func NewPostHistoryRepository(db *sql.DB) PostHistoryRepository {
	return &postHistoryRepository{db: db}
}

func (r *postHistoryRepository) Create(ctx context.Context, record *models.PostRecord) (int64, error) {
	query := `
		INSERT INTO post_history (asset_identity, asset_path, caption, style, platform, external_id, stage, dry_run, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		record.AssetIdentity, record.AssetPath, record.Caption, record.Style,
		record.Platform, record.ExternalID, record.Stage, record.DryRun,
		record.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// PostedIdentities returns the set of asset identities with at least one
// record outside the prepare stage. Prepare failures are recorded against a
// sentinel identity and must not block real assets.
func (r *postHistoryRepository) PostedIdentities(ctx context.Context) (map[string]struct{}, error) {
	query := `SELECT DISTINCT asset_identity FROM post_history WHERE stage <> $1`

	rows, err := r.db.QueryContext(ctx, query, models.StagePrepare)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	posted := make(map[string]struct{})
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posted[identity] = struct{}{}
	}
	return posted, rows.Err()
}

func (r *postHistoryRepository) IsPosted(ctx context.Context, identity string) (bool, error) {
	query := `SELECT 1 FROM post_history WHERE asset_identity = $1 AND stage <> $2 LIMIT 1`

	var result int
	err := r.db.QueryRowContext(ctx, query, identity, models.StagePrepare).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postHistoryRepository) Recent(ctx context.Context, limit int) ([]*models.PostRecord, error) {
	query := `
		SELECT id, asset_identity, asset_path, caption, style, platform, external_id, stage, dry_run, error_message, created_at
		FROM post_history
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.PostRecord
	for rows.Next() {
		var rec models.PostRecord
		err := rows.Scan(&rec.ID, &rec.AssetIdentity, &rec.AssetPath, &rec.Caption,
			&rec.Style, &rec.Platform, &rec.ExternalID, &rec.Stage, &rec.DryRun,
			&rec.ErrorMessage, &rec.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
