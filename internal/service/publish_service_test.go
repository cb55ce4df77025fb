package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/platform"
)

func TestPublishAllFansOutInOrder(t *testing.T) {
	twitter := &fakePoster{name: "twitter"}
	telegram := &fakePoster{name: "telegram"}
	svc := NewPublishService([]platform.Poster{twitter, telegram})

	asset := &models.Asset{Path: "data/a.png", Source: models.AssetSourceLocal}
	outcomes, failures := svc.PublishAll(context.Background(), asset, "caption")

	require.Len(t, outcomes, 2)
	assert.Empty(t, failures)
	assert.Equal(t, "twitter", outcomes[0].Platform)
	assert.Equal(t, "telegram", outcomes[1].Platform)
}

func TestPublishAllIsolatesFailures(t *testing.T) {
	twitter := &fakePoster{name: "twitter", err: errors.New("rate limited")}
	telegram := &fakePoster{name: "telegram"}
	svc := NewPublishService([]platform.Poster{twitter, telegram})

	asset := &models.Asset{Path: "data/a.png"}
	outcomes, failures := svc.PublishAll(context.Background(), asset, "caption")

	require.Len(t, outcomes, 1)
	assert.Equal(t, "telegram", outcomes[0].Platform)
	require.Len(t, failures, 1)
	assert.Equal(t, "twitter", failures[0].Platform)
	assert.Contains(t, failures[0].Error, "rate limited")
}

func TestPublishAllAppliesPerPlatformTextShaping(t *testing.T) {
	twitter := &fakePoster{name: "twitter", spec: platform.TextSpec{Suffix: " #daily", MaxLength: 280}}
	telegram := &fakePoster{name: "telegram", spec: platform.TextSpec{Prefix: "New: "}}
	svc := NewPublishService([]platform.Poster{twitter, telegram})

	asset := &models.Asset{Path: "data/a.png"}
	svc.PublishAll(context.Background(), asset, "caption")

	require.Len(t, twitter.posted, 1)
	assert.Equal(t, "caption #daily", twitter.posted[0])
	require.Len(t, telegram.posted, 1)
	assert.Equal(t, "New: caption", telegram.posted[0])
}

func TestPublishAllWithNoPlatforms(t *testing.T) {
	svc := NewPublishService(nil)

	outcomes, failures := svc.PublishAll(context.Background(), &models.Asset{Path: "a.png"}, "c")

	assert.Empty(t, outcomes)
	assert.Empty(t, failures)
}

func TestPublishAllEveryPlatformLandsExactlyOnce(t *testing.T) {
	posters := []platform.Poster{
		&fakePoster{name: "a"},
		&fakePoster{name: "b", err: errors.New("down")},
		&fakePoster{name: "c"},
	}
	svc := NewPublishService(posters)

	outcomes, failures := svc.PublishAll(context.Background(), &models.Asset{Path: "x.png"}, "c")

	seen := map[string]int{}
	for _, o := range outcomes {
		seen[o.Platform]++
	}
	for _, f := range failures {
		seen[f.Platform]++
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, seen)
}
