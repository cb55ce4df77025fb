package service

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/platform"
)

// PublishService fans one asset+caption out to every configured platform.
// Platforms are attempted in configuration order and one failure never
// stops the rest; every platform lands in exactly one of the two slices.
type PublishService interface {
	PublishAll(ctx context.Context, asset *models.Asset, caption string) ([]*models.PublishOutcome, []*models.PublishError)
	Posters() []platform.Poster
}

type publishService struct {
	posters []platform.Poster
}

func NewPublishService(posters []platform.Poster) PublishService {
	return &publishService{posters: posters}
}

func (s *publishService) Posters() []platform.Poster {
	return s.posters
}

func (s *publishService) PublishAll(ctx context.Context, asset *models.Asset, caption string) ([]*models.PublishOutcome, []*models.PublishError) {
	outcomes := make([]*models.PublishOutcome, 0, len(s.posters))
	var failures []*models.PublishError

	for _, poster := range s.posters {
		text := platform.BuildText(poster.TextSpec(), caption)

		outcome, err := poster.Post(ctx, asset, text)
		if err != nil {
			slog.Error("platform publish failed", "platform", poster.Platform(), "image", asset.Identity(), "error", err)
			failures = append(failures, &models.PublishError{Platform: poster.Platform(), Error: err.Error()})
			continue
		}

		slog.Info("published", "platform", poster.Platform(), "image", asset.Identity(), "post_id", outcome.PostID, "dry_run", outcome.DryRun)
		outcomes = append(outcomes, outcome)
	}

	return outcomes, failures
}
