package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/platform"
)

func pipelineConfig() *config.Config {
	return &config.Config{
		CaptionStyle:     "default",
		MaxPostsPerCycle: 1,
	}
}

func localAsset(name string) *models.Asset {
	return &models.Asset{Path: "data/ready_to_post/" + name, Source: models.AssetSourceLocal}
}

func newTestPipeline(cfg *config.Config, images ImageService, history *fakeHistoryRepo, posters ...platform.Poster) PipelineService {
	publish := NewPublishService(posters)
	return NewPipelineService(cfg, images, &fakeCaptionService{text: "caption"}, publish, history)
}

func TestRunOnceHappyPath(t *testing.T) {
	history := &fakeHistoryRepo{}
	images := &fakeImageService{queue: []*models.Asset{localAsset("a.png")}}
	poster := &fakePoster{name: "twitter"}
	svc := newTestPipeline(pipelineConfig(), images, history, poster)

	summary, err := svc.RunOnce(context.Background(), "manual")

	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Posted)
	require.Equal(t, 1, history.count())
	assert.Equal(t, "a.png", history.records[0].AssetIdentity)
	assert.Equal(t, "twitter", history.records[0].Platform)
	assert.Equal(t, "id-twitter", history.records[0].ExternalID)
}

func TestRunOnceBudgetCapsRecords(t *testing.T) {
	cfg := pipelineConfig()
	cfg.MaxPostsPerCycle = 2
	history := &fakeHistoryRepo{}
	images := &fakeImageService{queue: []*models.Asset{
		localAsset("a.png"), localAsset("b.png"), localAsset("c.png"),
	}}
	svc := newTestPipeline(cfg, images, history, &fakePoster{name: "twitter"})

	summary, err := svc.RunOnce(context.Background(), "schedule")

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Posted)
	assert.Equal(t, 2, history.count())
	assert.Equal(t, 2, images.calls)
}

func TestRunOnceStopsWhenPoolExhausted(t *testing.T) {
	// The selector keeps returning the default placeholder once local files
	// run out; the cycle must end instead of posting it repeatedly.
	cfg := pipelineConfig()
	cfg.MaxPostsPerCycle = 5
	history := &fakeHistoryRepo{}
	images := &fakeImageService{queue: []*models.Asset{localAsset("a.png")}}
	svc := newTestPipeline(cfg, images, history, &fakePoster{name: "twitter"})

	summary, err := svc.RunOnce(context.Background(), "schedule")

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Posted) // a.png plus one placeholder
	assert.Equal(t, 2, history.count())
}

func TestRunOnceRecordsPrepareFailure(t *testing.T) {
	history := &fakeHistoryRepo{}
	images := &fakeImageService{err: errors.New("disk gone")}
	svc := newTestPipeline(pipelineConfig(), images, history, &fakePoster{name: "twitter"})

	_, err := svc.RunOnce(context.Background(), "manual")

	require.Error(t, err)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StagePrepare, stageErr.Stage)

	require.Equal(t, 1, history.count())
	record := history.records[0]
	assert.Equal(t, models.StagePrepare, record.Stage)
	assert.True(t, record.DryRun)
	assert.Contains(t, record.ErrorMessage, "disk gone")

	// A prepare failure record never enters the posted set.
	posted, perr := history.PostedIdentities(context.Background())
	require.NoError(t, perr)
	assert.Empty(t, posted)
}

func TestRunOnceRecordsPublishFailureWhenAllPlatformsFail(t *testing.T) {
	history := &fakeHistoryRepo{}
	images := &fakeImageService{queue: []*models.Asset{localAsset("a.png")}}
	svc := newTestPipeline(pipelineConfig(), images, history,
		&fakePoster{name: "twitter", err: errors.New("api down")},
		&fakePoster{name: "telegram", err: errors.New("bot down")},
	)

	_, err := svc.RunOnce(context.Background(), "manual")

	require.Error(t, err)
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, models.StagePublish, stageErr.Stage)

	require.Equal(t, 1, history.count())
	record := history.records[0]
	assert.Equal(t, "a.png", record.AssetIdentity)
	assert.Contains(t, record.ErrorMessage, "api down")
	assert.Contains(t, record.ErrorMessage, "bot down")
}

func TestRunOncePartialFailureStillCounts(t *testing.T) {
	history := &fakeHistoryRepo{}
	images := &fakeImageService{queue: []*models.Asset{localAsset("a.png")}}
	svc := newTestPipeline(pipelineConfig(), images, history,
		&fakePoster{name: "twitter", err: errors.New("api down")},
		&fakePoster{name: "telegram"},
	)

	summary, err := svc.RunOnce(context.Background(), "manual")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Posted)
	require.Len(t, summary.Failures, 1)
	require.Equal(t, 1, history.count())
	assert.Equal(t, "telegram", history.records[0].Platform)
}

func TestRunOnceRecordsOneRowPerSuccessfulPlatform(t *testing.T) {
	history := &fakeHistoryRepo{}
	images := &fakeImageService{queue: []*models.Asset{localAsset("a.png")}}
	svc := newTestPipeline(pipelineConfig(), images, history,
		&fakePoster{name: "twitter"},
		&fakePoster{name: "telegram"},
	)

	_, err := svc.RunOnce(context.Background(), "manual")

	require.NoError(t, err)
	require.Equal(t, 2, history.count())
	assert.Equal(t, "twitter", history.records[0].Platform)
	assert.Equal(t, "telegram", history.records[1].Platform)
}

// slowImageService blocks until released, to hold a cycle in flight.
type slowImageService struct {
	fakeImageService
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *slowImageService) Select(ctx context.Context, skip map[string]struct{}) (*models.Asset, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.fakeImageService.Select(ctx, skip)
}

func TestRunOnceCoalescesOverlappingTriggers(t *testing.T) {
	history := &fakeHistoryRepo{}
	images := &slowImageService{
		fakeImageService: fakeImageService{queue: []*models.Asset{localAsset("a.png")}},
		release:          make(chan struct{}),
		started:          make(chan struct{}),
	}
	svc := newTestPipeline(pipelineConfig(), images, history, &fakePoster{name: "twitter"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.RunOnce(context.Background(), "schedule")
		assert.NoError(t, err)
	}()

	<-images.started
	assert.True(t, svc.Running())

	// The overlapping trigger is dropped, not queued.
	summary, err := svc.RunOnce(context.Background(), "schedule")
	require.NoError(t, err)
	assert.Nil(t, summary)

	close(images.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle did not finish")
	}

	assert.False(t, svc.Running())
	assert.Equal(t, 1, history.count())
}

func TestRunOncePersistenceFailureDoesNotAbortCycle(t *testing.T) {
	cfg := pipelineConfig()
	history := &fakeHistoryRepo{}
	images := &fakeImageService{queue: []*models.Asset{localAsset("a.png")}}
	svc := newTestPipeline(cfg, images, history, &fakePoster{name: "twitter"})

	history.failing = true
	summary, err := svc.RunOnce(context.Background(), "manual")

	// The publish already happened; the failed write is logged and the
	// cycle still reports the post.
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Posted)
	assert.Equal(t, 0, history.count())
}
