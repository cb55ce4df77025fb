package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

// failedCycleIdentity is the sentinel asset identity for cycles that died
// before an asset was selected. Dedup ignores prepare-stage records, so it
// never blocks a real file.
const failedCycleIdentity = "_cycle_failed"

// StageError tags a pipeline failure with the stage it happened in, so the
// orchestrator can decide what to record without matching error strings.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// CycleSummary reports what one pipeline run did.
type CycleSummary struct {
	Reason    string                   `json:"reason"`
	Posted    int                      `json:"posted"`
	Outcomes  []*models.PublishOutcome `json:"outcomes,omitempty"`
	Failures  []*models.PublishError   `json:"failures,omitempty"`
	StartedAt time.Time                `json:"started_at"`
	Duration  time.Duration            `json:"duration"`
}

// PipelineService runs publish cycles: select an image, resolve a caption,
// fan out, record. At most one cycle is in flight per process; overlapping
// triggers are dropped, not queued.
type PipelineService interface {
	RunOnce(ctx context.Context, reason string) (*CycleSummary, error)
	Running() bool
}

type pipelineService struct {
	cfg      *config.Config
	images   ImageService
	captions CaptionService
	publish  PublishService
	history  repository.PostHistoryRepository
	inflight atomic.Bool
}

func NewPipelineService(cfg *config.Config, images ImageService, captions CaptionService, publish PublishService, history repository.PostHistoryRepository) PipelineService {
	return &pipelineService{
		cfg:      cfg,
		images:   images,
		captions: captions,
		publish:  publish,
		history:  history,
	}
}

func (s *pipelineService) Running() bool {
	return s.inflight.Load()
}

func (s *pipelineService) RunOnce(ctx context.Context, reason string) (*CycleSummary, error) {
	if !s.inflight.CompareAndSwap(false, true) {
		slog.Info("cycle already in flight, dropping trigger", "reason", reason)
		return nil, nil
	}
	defer s.inflight.Store(false)

	summary, err := s.runCycle(ctx, reason)
	if err != nil {
		sentry.CaptureException(err)
	}
	return summary, err
}

// runCycle posts up to MaxPostsPerCycle assets. A persistence write failure
// after a real publish is logged and the cycle continues, which leaves an
// at-least-once risk on restart.
func (s *pipelineService) runCycle(ctx context.Context, reason string) (*CycleSummary, error) {
	summary := &CycleSummary{Reason: reason, StartedAt: time.Now()}
	defer func() { summary.Duration = time.Since(summary.StartedAt) }()

	budget := s.cfg.MaxPostsPerCycle
	if budget < 1 {
		budget = 1
	}
	slog.Info("pipeline cycle started", "reason", reason, "budget", budget)

	// Identities handled in this cycle; a fallback asset reappearing here
	// means the pool is exhausted and the cycle ends.
	skip := make(map[string]struct{})

	for i := 0; i < budget; i++ {
		asset, err := s.images.Select(ctx, skip)
		if err != nil {
			stageErr := &StageError{Stage: models.StagePrepare, Err: err}
			s.recordFailure(ctx, stageErr, nil)
			return summary, stageErr
		}
		if _, seen := skip[asset.Identity()]; seen {
			slog.Info("asset pool exhausted, ending cycle", "posted", summary.Posted)
			break
		}
		skip[asset.Identity()] = struct{}{}

		caption := s.captions.Resolve(ctx, asset)

		outcomes, failures := s.publish.PublishAll(ctx, asset, caption.Text)
		summary.Outcomes = append(summary.Outcomes, outcomes...)
		summary.Failures = append(summary.Failures, failures...)

		if len(outcomes) == 0 {
			stageErr := &StageError{Stage: models.StagePublish, Err: fmt.Errorf("all platforms failed: %s", joinFailures(failures))}
			s.recordFailure(ctx, stageErr, asset)
			return summary, stageErr
		}

		s.recordOutcomes(ctx, asset, caption, outcomes)
		summary.Posted++
	}

	slog.Info("pipeline cycle finished", "reason", reason, "posted", summary.Posted)
	return summary, nil
}

func (s *pipelineService) recordOutcomes(ctx context.Context, asset *models.Asset, caption *models.CaptionResult, outcomes []*models.PublishOutcome) {
	for _, outcome := range outcomes {
		_, err := s.history.Create(ctx, &models.PostRecord{
			AssetIdentity: asset.Identity(),
			AssetPath:     asset.Path,
			Caption:       caption.Text,
			Style:         s.cfg.CaptionStyle,
			Platform:      outcome.Platform,
			ExternalID:    outcome.PostID,
			DryRun:        outcome.DryRun,
		})
		if err != nil {
			slog.Error("failed to record publish outcome", "platform", outcome.Platform, "image", asset.Identity(), "error", err)
			sentry.CaptureException(err)
		}
	}
}

// recordFailure writes a terminal failure record. Failure records are
// always dry_run so they never count as real publishes.
func (s *pipelineService) recordFailure(ctx context.Context, stageErr *StageError, asset *models.Asset) {
	record := &models.PostRecord{
		AssetIdentity: failedCycleIdentity,
		Stage:         stageErr.Stage,
		DryRun:        true,
		ErrorMessage:  stageErr.Error(),
	}
	if asset != nil {
		record.AssetIdentity = asset.Identity()
		record.AssetPath = asset.Path
	}

	if _, err := s.history.Create(ctx, record); err != nil {
		slog.Error("failed to record cycle failure", "error", err)
	}
}

func joinFailures(failures []*models.PublishError) string {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Platform, f.Error))
	}
	if len(parts) == 0 {
		return "no platforms configured"
	}
	return strings.Join(parts, "; ")
}
