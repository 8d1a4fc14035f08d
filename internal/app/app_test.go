package app

import (
	"context"
	"errors"
	"testing"

	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/db"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWithoutStore(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	cfg := &config.Config{AI: config.AIConfig{Provider: "openai"}}

	a, err := New(context.Background(), cfg, zap.New(core), Options{Migrate: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if a.Store != nil || a.Pool != nil {
		t.Fatal("store should be absent")
	}
	if logs.FilterMessage("llm disabled, matching endpoints will fail").Len() != 1 {
		t.Fatal("expected llm warning")
	}

	quotes := a.Scope().Quotes(context.Background())
	if len(quotes) != len(a.Catalog.Quotes) {
		t.Fatalf("expected catalog quotes, got %d", len(quotes))
	}
	if _, err := a.Matcher.MatchNews(context.Background(), a.Scope()); err == nil {
		t.Fatal("news match without llm should fail")
	}
}

func TestNewRequireStore(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, zap.NewNop(), Options{RequireStore: true})
	if !errors.Is(err, db.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
