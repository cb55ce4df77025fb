package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
)

func captionConfig(baseURL string) *config.Config {
	return &config.Config{
		CaptionStyle:  "playful",
		CaptionModel:  "gpt-4o-mini",
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: baseURL,
	}
}

func chatReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": text}},
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func completionReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"text": text},
		},
	}
	require.NoError(t, json.NewEncoder(w).Encode(resp))
}

func testAsset() *models.Asset {
	return &models.Asset{Path: "data/ready_to_post/sunset.png", Source: models.AssetSourceLocal}
}

func TestResolveUsesChatTierFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		chatReply(t, w, "  golden hour again  ")
	}))
	defer server.Close()

	logs := &fakeCaptionLogRepo{}
	svc := NewCaptionService(captionConfig(server.URL), logs, 1)

	result := svc.Resolve(context.Background(), testAsset())

	assert.Equal(t, models.CaptionProviderSDK, result.Provider)
	assert.Equal(t, "golden hour again", result.Text)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, "sunset.png", logs.entries[0].ImageName)
	assert.Equal(t, models.CaptionProviderSDK, logs.entries[0].Provider)
}

func TestResolveFallsThroughToCompletionTier(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat/completions":
			w.WriteHeader(http.StatusInternalServerError)
		case "/v1/completions":
			completionReply(t, w, "fallback caption")
		}
	}))
	defer server.Close()

	svc := NewCaptionService(captionConfig(server.URL), &fakeCaptionLogRepo{}, 1)
	result := svc.Resolve(context.Background(), testAsset())

	assert.Equal(t, models.CaptionProviderHTTP, result.Provider)
	assert.Equal(t, "fallback caption", result.Text)
}

func TestResolveNeverFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewCaptionService(captionConfig(server.URL), &fakeCaptionLogRepo{}, 1)
	result := svc.Resolve(context.Background(), testAsset())

	assert.Equal(t, models.CaptionProviderTemplate, result.Provider)
	assert.NotEmpty(t, result.Text)
}

func TestUnauthorizedDisablesCloudTiersPermanently(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := NewCaptionService(captionConfig(server.URL), &fakeCaptionLogRepo{}, 1)

	first := svc.Resolve(context.Background(), testAsset())
	assert.Equal(t, models.CaptionProviderTemplate, first.Provider)
	afterFirst := requests.Load()
	assert.Equal(t, int64(2), afterFirst) // one per cloud tier

	second := svc.Resolve(context.Background(), testAsset())
	assert.Equal(t, models.CaptionProviderTemplate, second.Provider)
	assert.Equal(t, afterFirst, requests.Load(), "no further network calls after 401")
}

func TestTransientFailureKeepsTiersEnabled(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewCaptionService(captionConfig(server.URL), &fakeCaptionLogRepo{}, 1)

	svc.Resolve(context.Background(), testAsset())
	svc.Resolve(context.Background(), testAsset())

	assert.Equal(t, int64(4), requests.Load(), "transient errors retry on the next resolve")
}

func TestTemplateTierWithoutAPIKey(t *testing.T) {
	cfg := &config.Config{
		CaptionStyle:     "moody",
		CaptionTemplates: []string{"{image} in {style} mode"},
	}
	logs := &fakeCaptionLogRepo{}
	svc := NewCaptionService(cfg, logs, 42)

	result := svc.Resolve(context.Background(), testAsset())

	assert.Equal(t, models.CaptionProviderTemplate, result.Provider)
	assert.Equal(t, "sunset in moody mode", result.Text)
}

func TestPreviewSkipsAuditLog(t *testing.T) {
	cfg := &config.Config{CaptionStyle: "default"}
	logs := &fakeCaptionLogRepo{}
	svc := NewCaptionService(cfg, logs, 1)

	result := svc.Preview(context.Background(), "test.png", "")

	assert.Equal(t, models.CaptionProviderTemplate, result.Provider)
	assert.Empty(t, logs.entries)
}
