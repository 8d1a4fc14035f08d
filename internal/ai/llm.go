package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/logger"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrUnavailable marks failures where the provider could not be reached
	// or refused the client outright, as opposed to a bad answer.
	ErrUnavailable = errors.New("llm provider unavailable")
	ErrEmptyAnswer = errors.New("llm returned an empty answer")
)

// CompletionRequest is a single system + user prompt exchange.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Completer is the LLM capability used by the matcher.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// New builds the completer selected by cfg.Provider.
func New(ctx context.Context, cfg config.AIConfig, l *zap.Logger) (Completer, error) {
	l = logger.WithComponent(l, "ai")

	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case "", "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout, l), nil
	case "gemini":
		key := cfg.GeminiAPIKey
		if strings.TrimSpace(key) == "" {
			key = cfg.APIKey
		}
		if strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("gemini: %w", ErrNotConfigured)
		}
		return NewGeminiClient(ctx, key, cfg.Model, l)
	case "ollama":
		host := cfg.OllamaHost
		if strings.TrimSpace(host) == "" {
			host = cfg.BaseURL
		}
		return NewOllamaClient(host, cfg.Model, cfg.Timeout, l), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q: %w", provider, ErrNotConfigured)
	}
}

// transportFailure reports whether err means the provider never produced an answer.
func transportFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// unavailableStatus reports statuses that mean the client cannot use the provider at all.
func unavailableStatus(code int) bool {
	return code == 401 || code == 403 || code >= 500
}

func wrapUnavailable(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrUnavailable, err)
}
