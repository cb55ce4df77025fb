package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/imagegen"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

var imageSuffixes = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".webp": {},
	".gif":  {},
}

// IsSupportedImage reports whether a filename carries one of the image
// suffixes the pipeline handles.
func IsSupportedImage(name string) bool {
	_, ok := imageSuffixes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// 64x64 grey test card, written lazily when every other source fails.
const defaultPlaceholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAEAAAABACAYAAACqaXHeAAAACXBIWXMAAAsSAAALEgHS3X78AAABfElEQVR4nO2aMU7DMBBF39YhzAGSACSwAElwAEmABJLAASXAATsg3NEEraPFc+UqBnob+Lbs93nE4AAAAAAAAAADwHcN2gVeXuVusYObQtdgEoGf4dAHMWVvUhYAC4ijKkztaAP6gdzppQzcE6huqZwll9gDpc5zsxFrqxbPjzvY4xXHzkwmo7aX6ixkmfsVNH+pEwzTp/DMAYA9YgAXgCBFAANEMAE0QwATRAABRDAFNEAAEUQwDTBABNEEAFEMAU0QAARQwDTBABNEEAURS0x3KgwxhpTAMsoZ07dAhZEBtcHTAr3e8DqgHwhjaxAgAnjcMqxsDCYXgEWh05rq6ArlTcidH8333AdxAi8uKXu95ACnHCqB6gINVi6zkRgLpmjDoE7YOhDdyCjTiMQuILzcuEGoVYBoNvAQmJsteVEhDWUpAJZciV06P88wJEqn3Ejj6+UeJ8V+RaHcRUW2KIiMzFxDBI0X58F3RrgPf63HgFUsVTNAgwAAAABJRU5ErkJggg=="

// ImageService picks the asset for a publish cycle: an unposted local
// file first, then cloud generation, then the static placeholder.
type ImageService interface {
	Select(ctx context.Context, skip map[string]struct{}) (*models.Asset, error)
	Generate(ctx context.Context) *models.Asset
	ListReady(ctx context.Context) ([]transfer.ReadyImage, error)
	SaveUpload(name string, data []byte) (string, error)
}

type imageService struct {
	cfg       *config.Config
	history   repository.PostHistoryRepository
	generator imagegen.Generator
	archive   *R2Service
	client    *http.Client
}

func NewImageService(cfg *config.Config, history repository.PostHistoryRepository, generator imagegen.Generator, archive *R2Service) ImageService {
	return &imageService{
		cfg:       cfg,
		history:   history,
		generator: generator,
		archive:   archive,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *imageService) Select(ctx context.Context, skip map[string]struct{}) (*models.Asset, error) {
	posted, err := s.history.PostedIdentities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posted set: %w", err)
	}

	if asset := s.pickLocal(posted, skip); asset != nil {
		return asset, nil
	}

	if s.generator != nil {
		asset, err := s.generate(ctx)
		if err != nil {
			slog.Warn("cloud generation failed, falling back to default image", "error", err)
		} else {
			return asset, nil
		}
	}

	return s.defaultAsset()
}

// pickLocal returns the lexicographically first supported file that is
// neither posted nor already handled this cycle. Deterministic ordering
// keeps repeated runs reproducible.
func (s *imageService) pickLocal(posted, skip map[string]struct{}) *models.Asset {
	entries, err := os.ReadDir(s.cfg.ReadyDir)
	if err != nil {
		slog.Warn("ready directory not readable", "dir", s.cfg.ReadyDir, "error", err)
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsSupportedImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := posted[name]; ok {
			continue
		}
		if _, ok := skip[name]; ok {
			continue
		}
		slog.Info("selected local image", "image", name)
		return &models.Asset{
			Path:     filepath.Join(s.cfg.ReadyDir, name),
			Source:   models.AssetSourceLocal,
			Metadata: map[string]string{"reason": "ready_to_post"},
		}
	}
	return nil
}

// Generate forces one cloud generation, for the console endpoint. Falls
// back to the default image so the caller always gets an asset.
func (s *imageService) Generate(ctx context.Context) *models.Asset {
	if s.generator == nil {
		slog.Warn("cloud generation is not configured, returning default image")
	} else {
		asset, err := s.generate(ctx)
		if err == nil {
			return asset
		}
		slog.Error("cloud generation failed", "error", err)
	}

	asset, err := s.defaultAsset()
	if err != nil {
		// The placeholder write failing leaves nothing to return; surface
		// a path-only asset so callers can still report something.
		slog.Error("failed to materialize default image", "error", err)
		return &models.Asset{Path: s.cfg.DefaultImage, Source: models.AssetSourceDefault}
	}
	return asset
}

func (s *imageService) generate(ctx context.Context) (*models.Asset, error) {
	result, err := s.generator.Generate(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.download(ctx, result.URL)
	if err != nil {
		return nil, err
	}

	ext := ".png"
	if kind, err := filetype.Match(data); err == nil && kind.Extension != "unknown" {
		ext = "." + kind.Extension
	}

	suffix, err := gonanoid.New(6)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_%s_%s%s", s.generator.Name(), time.Now().Format("20060102_150405"), suffix, ext)
	path := filepath.Join(s.cfg.ReadyDir, name)

	if err := os.MkdirAll(s.cfg.ReadyDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	slog.Info("saved generated image", "image", name, "provider", s.generator.Name())

	if s.archive.Enabled() {
		contentType := http.DetectContentType(data)
		if err := s.archive.Upload(ctx, "assets/"+name, data, contentType); err != nil {
			slog.Warn("failed to archive generated image", "image", name, "error", err)
		}
	}

	metadata := map[string]string{}
	for k, v := range result.Metadata {
		metadata[k] = v
	}
	return &models.Asset{
		Path:     path,
		Source:   models.GeneratedSource(s.generator.Name()),
		Metadata: metadata,
	}, nil
}

func (s *imageService) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *imageService) defaultAsset() (*models.Asset, error) {
	path := s.cfg.DefaultImage
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := base64.StdEncoding.DecodeString(defaultPlaceholderPNG)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
	}
	return &models.Asset{
		Path:     path,
		Source:   models.AssetSourceDefault,
		Metadata: map[string]string{"reason": "fallback"},
	}, nil
}

func (s *imageService) ListReady(ctx context.Context) ([]transfer.ReadyImage, error) {
	posted, err := s.history.PostedIdentities(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.cfg.ReadyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []transfer.ReadyImage{}, nil
		}
		return nil, err
	}

	items := make([]transfer.ReadyImage, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsSupportedImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		_, used := posted[entry.Name()]
		items = append(items, transfer.ReadyImage{
			Filename:   entry.Name(),
			Path:       filepath.Join(s.cfg.ReadyDir, entry.Name()),
			Used:       used,
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	return items, nil
}

// SaveUpload writes an uploaded image under a fresh name and returns the
// filename.
func (s *imageService) SaveUpload(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := imageSuffixes[ext]; !ok {
		return "", fmt.Errorf("unsupported image suffix: %s", ext)
	}
	if !filetype.IsImage(data) {
		return "", fmt.Errorf("file content is not an image")
	}

	suffix, err := gonanoid.New(8)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("upload_%s%s", suffix, ext)
	if err := os.MkdirAll(s.cfg.ReadyDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.cfg.ReadyDir, filename), data, 0o644); err != nil {
		return "", err
	}

	if s.archive.Enabled() {
		if err := s.archive.Upload(context.Background(), "assets/"+filename, data, http.DetectContentType(data)); err != nil {
			slog.Warn("failed to archive upload", "image", filename, "error", err)
		}
	}

	return filename, nil
}
