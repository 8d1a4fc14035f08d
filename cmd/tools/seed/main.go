package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/david/goodworks/internal/app"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/logger"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is goodworks.yaml in current directory)")
	debug := flag.Bool("debug", false, "verbose/debug output")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatal(err)
	}
	l, err := logger.New(false, *debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, l, app.Options{Migrate: true, RequireStore: true})
	if err != nil {
		l.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Collection", "Rows"})

	quotes := a.Catalog.QuoteList()
	if err := a.Store.UpsertQuotes(ctx, quotes); err != nil {
		l.Fatal("seed quotes failed", zap.Error(err))
	}
	t.AppendRow(table.Row{"quotes", len(quotes)})

	opps := a.Catalog.OpportunityList()
	if err := a.Store.UpsertOpportunities(ctx, opps); err != nil {
		l.Fatal("seed opportunities failed", zap.Error(err))
	}
	t.AppendRow(table.Row{"opportunities", len(opps)})

	events := a.Catalog.EventList()
	if err := a.Store.UpsertEvents(ctx, events); err != nil {
		l.Fatal("seed events failed", zap.Error(err))
	}
	t.AppendRow(table.Row{"news_events", len(events)})

	t.Render()
}
