package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/david/goodworks/internal/logger"
	"go.uber.org/zap"
)

type OllamaClient struct {
	BaseURL  string
	GenModel string

	client *http.Client
	logger *zap.Logger
}

func NewOllamaClient(baseURL, genModel string, timeout time.Duration, l *zap.Logger) *OllamaClient {
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if genModel = strings.TrimSpace(genModel); genModel == "" {
		genModel = "llama3.2:latest" // Default generation model
	}
	return &OllamaClient{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		GenModel: genModel,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.OrNop(l),
	}
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *OllamaClient) Complete(ctx context.Context, in CompletionRequest) (string, error) {
	reqBody := generateRequest{
		Model:  c.GenModel,
		Prompt: in.User,
		System: in.System,
		Stream: false,
		Options: generateOptions{
			Temperature: in.Temperature,
			NumPredict:  in.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("ollama request failed", zap.String("model", c.GenModel), zap.Error(err))
		return "", wrapUnavailable("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("ollama returned status: %d", resp.StatusCode)
		if unavailableStatus(resp.StatusCode) {
			return "", wrapUnavailable("ollama", err)
		}
		return "", err
	}

	var parsedResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsedResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	answer := strings.TrimSpace(parsedResp.Response)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
