package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const leonardoAPIURL = "https://cloud.leonardo.ai/api/rest/v1/generations"

type LeonardoGenerator struct {
	token   string
	model   string
	prompt  string
	baseURL string
	client  *http.Client
}

func NewLeonardoGenerator(token, model, prompt string) *LeonardoGenerator {
	return &LeonardoGenerator{
		token:   token,
		model:   model,
		prompt:  prompt,
		baseURL: leonardoAPIURL,
		client:  newHTTPClient(),
	}
}

func (g *LeonardoGenerator) Name() string { return "leonardo" }

type leonardoGeneration struct {
	ID              string `json:"id"`
	GeneratedImages []struct {
		URL string `json:"url"`
	} `json:"generated_images"`
}

type leonardoResponse struct {
	Generations []leonardoGeneration `json:"generations"`
	Data        []leonardoGeneration `json:"data"`
}

func (g *LeonardoGenerator) Generate(ctx context.Context) (*Result, error) {
	payload := map[string]any{
		"modelId":    g.model,
		"prompt":     g.prompt,
		"num_images": 1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call leonardo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("leonardo returned 401, check the API token")
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("leonardo returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed leonardoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse leonardo response: %w", err)
	}

	generations := parsed.Generations
	if len(generations) == 0 {
		generations = parsed.Data
	}
	if len(generations) == 0 || len(generations[0].GeneratedImages) == 0 {
		return nil, fmt.Errorf("leonardo returned no images")
	}

	return &Result{
		URL:      generations[0].GeneratedImages[0].URL,
		Metadata: map[string]string{"generation_id": generations[0].ID},
	}, nil
}
