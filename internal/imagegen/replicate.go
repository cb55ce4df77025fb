package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const replicateAPIURL = "https://api.replicate.com/v1/predictions"

// ReplicateGenerator drives the Replicate predictions API: create a
// prediction, then poll its status URL until it settles.
type ReplicateGenerator struct {
	token   string
	version string
	prompt  string
	baseURL string
	client  *http.Client
}

func NewReplicateGenerator(token, version, prompt string) *ReplicateGenerator {
	return &ReplicateGenerator{
		token:   token,
		version: version,
		prompt:  prompt,
		baseURL: replicateAPIURL,
		client:  newHTTPClient(),
	}
}

func (g *ReplicateGenerator) Name() string { return "replicate" }

type replicatePrediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
	Error any `json:"error"`
}

func (g *ReplicateGenerator) Generate(ctx context.Context) (*Result, error) {
	payload := map[string]any{
		"version": g.version,
		"input":   map[string]any{"prompt": g.prompt},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+g.token)
	req.Header.Set("Content-Type", "application/json")

	pred, err := g.doPrediction(req)
	if err != nil {
		return nil, err
	}

	// Poll until the prediction settles. Replicate keeps predictions in
	// "starting" or "processing" for a while.
	for pred.Status == "starting" || pred.Status == "processing" {
		if pred.URLs.Get == "" {
			return nil, fmt.Errorf("replicate response missing poll url")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}

		pollReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pred.URLs.Get, nil)
		if err != nil {
			return nil, err
		}
		pollReq.Header.Set("Authorization", "Token "+g.token)
		pred, err = g.doPrediction(pollReq)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return nil, fmt.Errorf("replicate prediction %s ended with status %s", pred.ID, pred.Status)
	}

	url := firstOutputURL(pred.Output)
	if url == "" {
		return nil, fmt.Errorf("replicate prediction %s returned no output", pred.ID)
	}

	return &Result{
		URL:      url,
		Metadata: map[string]string{"prediction_id": pred.ID, "status": pred.Status},
	}, nil
}

func (g *ReplicateGenerator) doPrediction(req *http.Request) (*replicatePrediction, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call replicate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("replicate returned 401, check the API token")
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate returned status %d: %s", resp.StatusCode, string(body))
	}

	var pred replicatePrediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, fmt.Errorf("failed to parse replicate response: %w", err)
	}
	return &pred, nil
}

// firstOutputURL handles both output shapes Replicate uses: a bare string
// or a list of URLs.
func firstOutputURL(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}
