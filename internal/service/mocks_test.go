package service

import (
	"context"
	"errors"
	"sync"

	"github.com/maheshrc27/postpilot/internal/imagegen"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/platform"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

// fakeHistoryRepo is an in-memory PostHistoryRepository.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	records []*models.PostRecord
	failing bool
}

func (f *fakeHistoryRepo) Create(ctx context.Context, record *models.PostRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errors.New("db down")
	}
	copied := *record
	copied.ID = int64(len(f.records) + 1)
	f.records = append(f.records, &copied)
	return copied.ID, nil
}

func (f *fakeHistoryRepo) PostedIdentities(ctx context.Context) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("db down")
	}
	posted := make(map[string]struct{})
	for _, r := range f.records {
		if r.Stage != models.StagePrepare {
			posted[r.AssetIdentity] = struct{}{}
		}
	}
	return posted, nil
}

func (f *fakeHistoryRepo) IsPosted(ctx context.Context, identity string) (bool, error) {
	posted, err := f.PostedIdentities(ctx)
	if err != nil {
		return false, err
	}
	_, ok := posted[identity]
	return ok, nil
}

func (f *fakeHistoryRepo) Recent(ctx context.Context, limit int) ([]*models.PostRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.PostRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeHistoryRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakeCaptionLogRepo is an in-memory CaptionLogRepository.
type fakeCaptionLogRepo struct {
	mu      sync.Mutex
	entries []*models.CaptionLog
}

func (f *fakeCaptionLogRepo) Create(ctx context.Context, entry *models.CaptionLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *entry
	copied.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, &copied)
	return copied.ID, nil
}

func (f *fakeCaptionLogRepo) Recent(ctx context.Context, limit int) ([]*models.CaptionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.CaptionLog, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

// fakeGenerator is a canned imagegen.Generator.
type fakeGenerator struct {
	name   string
	result *imagegen.Result
	err    error
	calls  int
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(ctx context.Context) (*imagegen.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakePoster is a scriptable platform.Poster.
type fakePoster struct {
	name   string
	spec   platform.TextSpec
	err    error
	dryRun bool

	posted []string // texts received, in call order
	assets []string // asset identities received
}

func (f *fakePoster) Platform() string { return f.name }

func (f *fakePoster) TextSpec() platform.TextSpec { return f.spec }

func (f *fakePoster) Post(ctx context.Context, asset *models.Asset, text string) (*models.PublishOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.posted = append(f.posted, text)
	f.assets = append(f.assets, asset.Identity())
	return &models.PublishOutcome{Platform: f.name, PostID: "id-" + f.name, DryRun: f.dryRun}, nil
}

// fakeImageService returns queued assets.
type fakeImageService struct {
	queue []*models.Asset
	err   error
	calls int
}

func (f *fakeImageService) Select(ctx context.Context, skip map[string]struct{}) (*models.Asset, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queue) == 0 {
		return &models.Asset{Path: "data/default_test.png", Source: models.AssetSourceDefault}, nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next, nil
}

func (f *fakeImageService) Generate(ctx context.Context) *models.Asset {
	return &models.Asset{Path: "data/default_test.png", Source: models.AssetSourceDefault}
}

func (f *fakeImageService) ListReady(ctx context.Context) ([]transfer.ReadyImage, error) {
	return nil, nil
}

func (f *fakeImageService) SaveUpload(name string, data []byte) (string, error) {
	return name, nil
}

// fakeCaptionService returns a fixed caption.
type fakeCaptionService struct {
	text string
}

func (f *fakeCaptionService) Resolve(ctx context.Context, asset *models.Asset) *models.CaptionResult {
	return &models.CaptionResult{Text: f.text, Provider: models.CaptionProviderTemplate}
}

func (f *fakeCaptionService) Preview(ctx context.Context, imageName, style string) *models.CaptionResult {
	return &models.CaptionResult{Text: f.text, Provider: models.CaptionProviderTemplate}
}
