package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"golang.org/x/oauth2"
)

const (
	twitterMediaUploadURL = "https://api.x.com/2/media/upload"
	twitterTweetsURL      = "https://api.x.com/2/tweets"
	twitterMaxLength      = 280
)

// TwitterPoster publishes to X through the v2 API with an OAuth2 user
// token. Without a token it runs in dry-run mode.
type TwitterPoster struct {
	client *http.Client
	suffix string
	dryRun bool
}

func NewTwitterPoster(cfg *config.Config) *TwitterPoster {
	p := &TwitterPoster{
		suffix: cfg.TwitterSuffix,
		dryRun: cfg.DryRun || cfg.TwitterAccessToken == "",
	}
	if p.dryRun {
		slog.Info("twitter poster running in dry-run mode")
		return p
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.TwitterAccessToken})
	p.client = oauth2.NewClient(context.Background(), src)
	p.client.Timeout = 2 * time.Minute
	return p
}

func (p *TwitterPoster) Platform() string { return "twitter" }

func (p *TwitterPoster) TextSpec() TextSpec {
	return TextSpec{Suffix: p.suffix, MaxLength: twitterMaxLength}
}

func (p *TwitterPoster) Post(ctx context.Context, asset *models.Asset, text string) (*models.PublishOutcome, error) {
	if p.dryRun {
		slog.Info("[dry-run] would post tweet", "image", asset.Identity(), "text", text)
		return &models.PublishOutcome{Platform: p.Platform(), DryRun: true}, nil
	}

	mediaID, err := p.uploadMedia(ctx, asset.Path)
	if err != nil {
		return nil, fmt.Errorf("media upload failed: %w", err)
	}

	tweetID, err := p.createTweet(ctx, text, mediaID)
	if err != nil {
		return nil, err
	}

	return &models.PublishOutcome{Platform: p.Platform(), PostID: tweetID}, nil
}

func (p *TwitterPoster) uploadMedia(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterMediaUploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twitter media upload returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse media upload response: %w", err)
	}
	if parsed.Data.ID != "" {
		return parsed.Data.ID, nil
	}
	if parsed.MediaIDString != "" {
		return parsed.MediaIDString, nil
	}
	return "", fmt.Errorf("media upload response missing media id")
}

func (p *TwitterPoster) createTweet(ctx context.Context, text, mediaID string) (string, error) {
	payload := map[string]any{
		"text": text,
		"media": map[string]any{
			"media_ids": []string{mediaID},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitterTweetsURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("twitter returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse tweet response: %w", err)
	}
	if parsed.Data.ID == "" {
		return "", fmt.Errorf("tweet response missing id")
	}
	return parsed.Data.ID, nil
}
