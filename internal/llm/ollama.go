package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fileorg/fileorg/internal/common"
)

const ollamaDefaultEndpoint = "http://localhost:11434/api/chat"

// ollamaClient implements the Client interface for a local Ollama server.
// No API key is required.
type ollamaClient struct {
	httpClient *http.Client
	endpoint   string
	model      string
}

// newOllamaClient creates a new Ollama client.
func newOllamaClient(cfg Config) (Client, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = ollamaDefaultEndpoint
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: Ollama model name is required", common.ErrMissingConfig)
	}

	return &ollamaClient{
		endpoint: endpoint,
		model:    cfg.Model,
		httpClient: &http.Client{
			// Local models can be slow to first token.
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Complete sends a non-streaming chat request to Ollama.
func (c *ollamaClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"stream": false,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: Ollama API error (status %d): %s", common.ErrModelRejected, resp.StatusCode, string(body))
	}

	var response ollamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrParse, err)
	}

	if response.Message.Content == "" {
		return "", fmt.Errorf("%w: empty response", common.ErrParse)
	}

	return response.Message.Content, nil
}

// ollamaResponse represents the Ollama chat response structure.
type ollamaResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}
