package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

var defaultCaptionTemplates = []string{
	"New drop: {image} ✨",
	"Today's mood, {style} edition.",
	"Fresh out of the studio: {image}.",
	"Another day, another frame. #{style}",
}

// CaptionService resolves a caption through three tiers: the chat API,
// the legacy completion API, then a local template. The template tier
// cannot fail, so Resolve always returns a caption.
type CaptionService interface {
	Resolve(ctx context.Context, asset *models.Asset) *models.CaptionResult
	Preview(ctx context.Context, imageName, style string) *models.CaptionResult
}

type captionService struct {
	cfg    *config.Config
	logs   repository.CaptionLogRepository
	client *openAIClient
	rng    *rand.Rand
	randMu sync.Mutex
	tierMu sync.Mutex
	sdkOK  bool
	httpOK bool
}

func NewCaptionService(cfg *config.Config, logs repository.CaptionLogRepository, seed int64) CaptionService {
	cloud := cfg.OpenAIAPIKey != ""
	s := &captionService{
		cfg:    cfg,
		logs:   logs,
		rng:    rand.New(rand.NewSource(seed)),
		sdkOK:  cloud,
		httpOK: cloud,
	}
	if cloud {
		s.client = newOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.CaptionModel)
	} else {
		slog.Info("no caption api key configured, using templates only")
	}
	return s
}

func (s *captionService) Resolve(ctx context.Context, asset *models.Asset) *models.CaptionResult {
	result := s.resolve(ctx, asset.Identity(), s.cfg.CaptionStyle)
	s.record(ctx, asset.Identity(), s.cfg.CaptionStyle, result)
	return result
}

// Preview produces a caption draft without writing an audit entry.
func (s *captionService) Preview(ctx context.Context, imageName, style string) *models.CaptionResult {
	if style == "" {
		style = s.cfg.CaptionStyle
	}
	return s.resolve(ctx, imageName, style)
}

func (s *captionService) resolve(ctx context.Context, imageName, style string) *models.CaptionResult {
	prompt := s.prompt(imageName, style)

	if s.tierEnabled(&s.sdkOK) {
		text, err := s.client.ChatCompletion(ctx, "You write short social media captions.", prompt)
		if err == nil && text != "" {
			return &models.CaptionResult{
				Text:     text,
				Provider: models.CaptionProviderSDK,
				Metadata: map[string]string{"model": s.cfg.CaptionModel},
			}
		}
		s.handleTierError(&s.sdkOK, models.CaptionProviderSDK, err)
	}

	if s.tierEnabled(&s.httpOK) {
		text, err := s.client.Completion(ctx, prompt)
		if err == nil && text != "" {
			return &models.CaptionResult{
				Text:     text,
				Provider: models.CaptionProviderHTTP,
				Metadata: map[string]string{"model": s.cfg.CaptionModel},
			}
		}
		s.handleTierError(&s.httpOK, models.CaptionProviderHTTP, err)
	}

	return s.template(imageName, style)
}

func (s *captionService) prompt(imageName, style string) string {
	if s.cfg.CaptionPrompt != "" {
		p := strings.ReplaceAll(s.cfg.CaptionPrompt, "{image}", imageName)
		return strings.ReplaceAll(p, "{style}", style)
	}
	return fmt.Sprintf("Write one short %s-style social media caption for an image named %q. Reply with the caption only.", style, imageName)
}

func (s *captionService) tierEnabled(flag *bool) bool {
	if s.client == nil {
		return false
	}
	s.tierMu.Lock()
	defer s.tierMu.Unlock()
	return *flag
}

// handleTierError disables a tier permanently on 401; any other failure
// just falls through to the next tier for this cycle.
func (s *captionService) handleTierError(flag *bool, tier string, err error) {
	if err == nil {
		err = errors.New("empty caption")
	}
	if errors.Is(err, ErrUnauthorized) {
		s.tierMu.Lock()
		*flag = false
		s.tierMu.Unlock()
		slog.Warn("caption tier disabled after authorization failure", "tier", tier)
		return
	}
	slog.Warn("caption tier failed", "tier", tier, "error", err)
}

func (s *captionService) template(imageName, style string) *models.CaptionResult {
	templates := s.cfg.CaptionTemplates
	if len(templates) == 0 {
		templates = defaultCaptionTemplates
	}

	s.randMu.Lock()
	pick := templates[s.rng.Intn(len(templates))]
	s.randMu.Unlock()

	text := strings.ReplaceAll(pick, "{image}", strings.TrimSuffix(imageName, extOf(imageName)))
	text = strings.ReplaceAll(text, "{style}", style)

	return &models.CaptionResult{
		Text:     text,
		Provider: models.CaptionProviderTemplate,
	}
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

// record writes the audit entry; a failed write never blocks the cycle.
func (s *captionService) record(ctx context.Context, imageName, style string, result *models.CaptionResult) {
	extra := ""
	if len(result.Metadata) > 0 {
		if raw, err := json.Marshal(result.Metadata); err == nil {
			extra = string(raw)
		}
	}

	_, err := s.logs.Create(ctx, &models.CaptionLog{
		ImageName: imageName,
		Style:     style,
		Caption:   result.Text,
		Provider:  result.Provider,
		Extra:     extra,
	})
	if err != nil {
		slog.Warn("failed to write caption log", "error", err)
	}
}
