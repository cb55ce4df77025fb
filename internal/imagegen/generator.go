// Package imagegen holds the cloud image generation adapters. Each adapter
// produces a URL to a finished image; downloading and saving is the image
// service's job.
package imagegen

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	config "github.com/maheshrc27/postpilot/configs"
)

// Result is one finished generation.
type Result struct {
	URL      string
	Metadata map[string]string
}

type Generator interface {
	Name() string
	Generate(ctx context.Context) (*Result, error)
}

// FromConfig selects the generator once at startup. Returns nil when the
// image source is local-only or misconfigured; a broken generation setup
// must degrade to the placeholder path, never stop the process.
func FromConfig(cfg *config.Config) Generator {
	switch cfg.ImageSource {
	case "replicate":
		if cfg.ReplicateToken == "" || cfg.ReplicateModel == "" {
			slog.Warn("image_source is replicate but token or model is missing, generation disabled")
			return nil
		}
		return NewReplicateGenerator(cfg.ReplicateToken, cfg.ReplicateModel, cfg.PromptTemplate)
	case "leonardo":
		if cfg.LeonardoToken == "" || cfg.LeonardoModel == "" {
			slog.Warn("image_source is leonardo but token or model is missing, generation disabled")
			return nil
		}
		return NewLeonardoGenerator(cfg.LeonardoToken, cfg.LeonardoModel, cfg.PromptTemplate)
	case "", "local":
		return nil
	default:
		slog.Warn("unknown image source, generation disabled", "image_source", cfg.ImageSource)
		return nil
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
