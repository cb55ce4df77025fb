// Package platform holds the publish adapters. Each poster is selected
// once at startup from configuration; the publisher fans out over the
// resulting slice in configuration order.
package platform

import (
	"context"
	"log/slog"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
)

// Poster publishes one asset with its platform-shaped text. A poster in
// dry-run mode (missing credentials or a global dry-run flag) still
// returns an outcome, flagged accordingly.
type Poster interface {
	Platform() string
	TextSpec() TextSpec
	Post(ctx context.Context, asset *models.Asset, text string) (*models.PublishOutcome, error)
}

// FromConfig builds the poster list in configuration order. Unknown
// platform names are skipped with a warning so one bad entry cannot take
// down the rest.
func FromConfig(cfg *config.Config) []Poster {
	var posters []Poster
	for _, name := range cfg.Platforms {
		switch name {
		case "twitter":
			posters = append(posters, NewTwitterPoster(cfg))
		case "telegram":
			posters = append(posters, NewTelegramPoster(cfg))
		default:
			slog.Warn("unknown platform, skipping", "platform", name)
		}
	}
	return posters
}
