package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/david/goodworks/internal/api"
	"github.com/david/goodworks/internal/app"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "goodworks",
	Short:        "goodworks serves quotes, current events and volunteer opportunities",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is goodworks.yaml in current directory)")
	rootCmd.Flags().StringP("port", "p", "", "listen port (overrides server.port)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return err
	}
	for key, flag := range map[string]string{"server.port": "port", "log.debug": "debug", "log.json": "json"} {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, l, app.Options{Migrate: true})
	if err != nil {
		l.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	deps := api.Deps{
		Loader:        a.Resolver,
		Opportunities: a.Opportunities,
		Matcher:       a.Matcher,
		Catalog:       a.Catalog,
		Logger:        l,
	}
	if a.Store != nil {
		deps.Seeder = a.Store
	}

	srv, err := api.NewServer(cfg.Server, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("server starting", zap.String("port", cfg.Server.Port))
		errCh <- srv.Start(cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l.Error("server stopped", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	l.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
