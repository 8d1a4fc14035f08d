package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/db"
	"github.com/jedib0t/go-pretty/v6/table"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is goodworks.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	counts, err := db.NewStore(pool).CountRows(ctx)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Table", "Rows"})
	for _, name := range db.CountedTables() {
		t.AppendRow(table.Row{name, counts[name]})
	}
	t.Render()
}
