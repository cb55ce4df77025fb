// Package app wires the pipeline together and owns its lifecycle. A
// settings change never mutates running services: the container rebuilds
// everything from a fresh snapshot and swaps it in.
package app

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/hibiken/asynq"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/imagegen"
	"github.com/maheshrc27/postpilot/internal/platform"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/scheduler"
	"github.com/maheshrc27/postpilot/internal/service"
)

type App struct {
	base   *config.Config
	db     *sql.DB
	client *asynq.Client

	history     repository.PostHistoryRepository
	captionLogs repository.CaptionLogRepository
	settings    service.SettingsService
	r2          *service.R2Service

	mu       sync.RWMutex
	cfg      *config.Config
	images   service.ImageService
	captions service.CaptionService
	publish  service.PublishService
	pipeline service.PipelineService
	sched    *scheduler.Scheduler
}

func New(ctx context.Context, base *config.Config, db *sql.DB, client *asynq.Client) (*App, error) {
	a := &App{
		base:        base,
		db:          db,
		client:      client,
		history:     repository.NewPostHistoryRepository(db),
		captionLogs: repository.NewCaptionLogRepository(db),
		settings:    service.NewSettingsService(base, repository.NewSettingsRepository(db)),
		r2:          service.NewR2Service(base),
	}

	if err := a.build(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// build constructs a fresh pipeline from env config merged with stored
// settings. Callers hold the write lock or are the constructor.
func (a *App) build(ctx context.Context) error {
	merged, err := a.settings.Apply(ctx, a.base)
	if err != nil {
		return err
	}

	generator := imagegen.FromConfig(merged)
	images := service.NewImageService(merged, a.history, generator, a.r2)
	captions := service.NewCaptionService(merged, a.captionLogs, time.Now().UnixNano())
	publish := service.NewPublishService(platform.FromConfig(merged))
	pipeline := service.NewPipelineService(merged, images, captions, publish, a.history)

	sched := scheduler.New(merged.Timezone, merged.PostSlots, merged.PipelineEnabled, func() {
		if err := queue.EnqueueRun(a.client, "schedule"); err != nil {
			slog.Error("failed to enqueue scheduled run", "error", err)
		}
	})

	a.cfg = merged
	a.images = images
	a.captions = captions
	a.publish = publish
	a.pipeline = pipeline
	a.sched = sched
	return nil
}

// Start begins scheduled firing.
func (a *App) Start() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sched.Start()
}

// Reload stops the scheduler, rebuilds the pipeline from a fresh snapshot
// and restarts. An in-flight cycle keeps its old services until it ends.
func (a *App) Reload(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.sched.Stop()
	if err := a.build(ctx); err != nil {
		return err
	}
	if err := a.sched.Start(); err != nil {
		return err
	}

	slog.Info("pipeline reloaded")
	return nil
}

// Shutdown stops scheduled firing; the caller drains the queue worker.
func (a *App) Shutdown() {
	a.mu.RLock()
	defer a.mu.RUnlock()
	a.sched.Stop()
}

// RunPipeline executes one cycle against the current pipeline. Implements
// the queue worker's CycleRunner.
func (a *App) RunPipeline(ctx context.Context, reason string) error {
	a.mu.RLock()
	pipeline := a.pipeline
	a.mu.RUnlock()

	_, err := pipeline.RunOnce(ctx, reason)
	return err
}

func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) Images() service.ImageService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.images
}

func (a *App) Captions() service.CaptionService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.captions
}

func (a *App) Pipeline() service.PipelineService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pipeline
}

func (a *App) Scheduler() *scheduler.Scheduler {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sched
}

func (a *App) Settings() service.SettingsService {
	return a.settings
}

func (a *App) History() repository.PostHistoryRepository {
	return a.history
}

func (a *App) CaptionLogs() repository.CaptionLogRepository {
	return a.captionLogs
}

func (a *App) Client() *asynq.Client {
	return a.client
}

func (a *App) R2() *service.R2Service {
	return a.r2
}
