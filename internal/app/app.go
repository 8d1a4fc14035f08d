// Package app wires configuration into the collaborators shared by the HTTP
// server and the operator tools.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/david/goodworks/internal/ai"
	"github.com/david/goodworks/internal/catalog"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/db"
	"github.com/david/goodworks/internal/logger"
	"github.com/david/goodworks/internal/matcher"
	"github.com/david/goodworks/internal/news"
	"github.com/david/goodworks/internal/opportunity"
	"github.com/david/goodworks/internal/sources"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Options struct {
	// Migrate applies embedded migrations after connecting.
	Migrate bool
	// RequireStore turns a missing or unreachable store into an error.
	RequireStore bool
}

type App struct {
	Config *config.Config
	Logger *zap.Logger

	// Pool and Store are nil when no record store is available.
	Pool  *pgxpool.Pool
	Store *db.Store

	Catalog       *catalog.Catalog
	Resolver      *sources.Resolver
	Opportunities *opportunity.Service
	Matcher       *matcher.Orchestrator
}

func New(ctx context.Context, cfg *config.Config, l *zap.Logger, opts Options) (*App, error) {
	l = logger.OrNop(l)

	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: l, Catalog: cat}

	pool, err := db.Connect(ctx, cfg.Store)
	switch {
	case err == nil:
		a.Pool = pool
		a.Store = db.NewStore(pool)
	case opts.RequireStore:
		return nil, fmt.Errorf("record store: %w", err)
	case errors.Is(err, db.ErrNotConfigured):
		l.Info("record store not configured, serving bundled catalog")
	default:
		l.Warn("record store unreachable, serving bundled catalog", zap.Error(err))
	}

	if a.Pool != nil && opts.Migrate {
		if err := db.ApplyMigrations(ctx, a.Pool, l); err != nil {
			a.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	feed, err := news.New(cfg.News, l)
	if err != nil {
		if errors.Is(err, news.ErrNotConfigured) {
			l.Info("news feed disabled", zap.Error(err))
		} else {
			l.Warn("news feed unavailable", zap.Error(err))
		}
		feed = nil
	}

	llm, err := ai.New(ctx, cfg.AI, l)
	if err != nil {
		l.Warn("llm disabled, matching endpoints will fail", zap.Error(err))
		llm = nil
	}

	// Interfaces below must stay untyped nil when the store is absent.
	var (
		records   sources.RecordStore
		interests opportunity.InterestRecorder
	)
	if a.Store != nil {
		records = a.Store
		interests = a.Store
	}

	a.Resolver = sources.NewResolver(records, feed, cat, l).WithEventLimit(cfg.News.PageSize)
	a.Opportunities = opportunity.NewService(interests, l)
	a.Matcher = matcher.New(llm, l)
	return a, nil
}

// Scope returns a fresh request scope over the resolver.
func (a *App) Scope() *sources.Scope {
	return sources.NewScope(a.Resolver)
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
