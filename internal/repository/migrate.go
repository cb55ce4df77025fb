package repository

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS post_history (
	id BIGSERIAL PRIMARY KEY,
	asset_identity TEXT NOT NULL,
	asset_path TEXT NOT NULL DEFAULT '',
	caption TEXT NOT NULL DEFAULT '',
	style TEXT NOT NULL DEFAULT '',
	platform TEXT NOT NULL DEFAULT '',
	external_id TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL DEFAULT '',
	dry_run BOOLEAN NOT NULL DEFAULT FALSE,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_post_history_identity ON post_history(asset_identity);
CREATE INDEX IF NOT EXISTS idx_post_history_created_at ON post_history(created_at);

CREATE TABLE IF NOT EXISTS caption_log (
	id BIGSERIAL PRIMARY KEY,
	image_name TEXT NOT NULL,
	style TEXT NOT NULL DEFAULT '',
	caption TEXT NOT NULL,
	provider TEXT NOT NULL,
	extra TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS settings (
	id SMALLINT PRIMARY KEY DEFAULT 1,
	post_slots TEXT NOT NULL DEFAULT '',
	timezone TEXT NOT NULL DEFAULT '',
	caption_style TEXT NOT NULL DEFAULT '',
	image_source TEXT NOT NULL DEFAULT '',
	caption_templates TEXT NOT NULL DEFAULT '',
	openai_api_key TEXT NOT NULL DEFAULT '',
	replicate_token TEXT NOT NULL DEFAULT '',
	leonardo_token TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrate creates the schema when missing. Safe to run on every startup.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
