package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/david/goodworks/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient creates a chat-completions client. baseURL is optional and
// points the client at an OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration, l *zap.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.OrNop(l),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		c.logger.Warn("openai completion failed", zap.String("model", c.model), zap.Error(err))
		if openAIUnavailable(err) {
			return "", wrapUnavailable("openai", err)
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyAnswer
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyAnswer
	}
	c.logger.Debug("openai completion", zap.String("model", c.model), zap.Int("total_tokens", resp.Usage.TotalTokens))
	return content, nil
}

func openAIUnavailable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return unavailableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return unavailableStatus(reqErr.HTTPStatusCode)
	}
	return transportFailure(err)
}
