package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/david/goodworks/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotConfigured is returned when the store endpoint or credential is missing.
var ErrNotConfigured = errors.New("record store not configured")

func Connect(ctx context.Context, cfg config.StoreConfig) (*pgxpool.Pool, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing db config: %w", err)
	}
	poolCfg.ConnConfig.Password = cfg.Credential
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("error connecting to db: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging db: %w", err)
	}

	return pool, nil
}
