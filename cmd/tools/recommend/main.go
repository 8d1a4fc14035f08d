package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/david/goodworks/internal/app"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/logger"
	"github.com/david/goodworks/internal/models"
	"github.com/david/goodworks/internal/opportunity"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is goodworks.yaml in current directory)")
	quoteIDs := flag.String("quotes", "", "Comma-separated recently viewed quote ids")
	interests := flag.String("interests", "", "Comma-separated cause categories")
	skills := flag.String("skills", "", "Comma-separated skills")
	city := flag.String("city", "", "City")
	region := flag.String("region", "", "State or region")
	count := flag.Int("count", opportunity.DefaultRecommendationCount, "Number of recommendations")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatal(err)
	}
	l, err := logger.New(false, false)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	signal := opportunity.Signal{
		RecentQuoteIDs: splitCSV(*quoteIDs),
		Skills:         splitCSV(*skills),
		City:           *city,
		Region:         *region,
	}
	for _, raw := range splitCSV(*interests) {
		cause, err := models.ParseCauseCategory(raw)
		if err != nil {
			l.Fatal("invalid interest", zap.Error(err))
		}
		signal.Interests = append(signal.Interests, cause)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, l, app.Options{})
	if err != nil {
		l.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	recs := a.Opportunities.Recommend(ctx, a.Scope(), signal, *count)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "ID", "Title", "Organization", "Urgency", "Score"})
	for i, r := range recs {
		t.AppendRow(table.Row{i + 1, r.ID, r.Title, r.OrganizationName, r.UrgencyLevel, r.Score})
	}
	t.Render()
}

func splitCSV(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
