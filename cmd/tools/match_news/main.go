package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/david/goodworks/internal/app"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/logger"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is goodworks.yaml in current directory)")
	question := flag.String("question", "", "match a free-text question instead of current events")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
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

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, l, app.Options{})
	if err != nil {
		l.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)

	if q := strings.TrimSpace(*question); q != "" {
		resp, err := a.Matcher.MatchQuestion(ctx, a.Scope(), q)
		if err != nil {
			l.Fatal("question match failed", zap.Error(err))
		}
		t.AppendHeader(table.Row{"Kind", "Item", "Why"})
		for _, m := range resp.Quotes {
			t.AppendRow(table.Row{"quote", m.Quote.Reference, m.Relevance})
		}
		for _, m := range resp.Opportunities {
			t.AppendRow(table.Row{"opportunity", m.Opportunity.Title, m.Reasoning})
		}
		t.Render()
		fmt.Println(resp.Reflection)
		return
	}

	resp, err := a.Matcher.MatchNews(ctx, a.Scope())
	if err != nil {
		l.Fatal("news match failed", zap.Error(err))
	}

	t.AppendHeader(table.Row{"Event", "Quotes", "Opportunities"})
	for _, m := range resp.Matches {
		quotes := make([]string, len(m.MatchedQuotes))
		for i, q := range m.MatchedQuotes {
			quotes[i] = fmt.Sprintf("%s (%.0f)", q.Quote.Reference, q.RelevanceScore)
		}
		opps := make([]string, len(m.MatchedOpportunities))
		for i, o := range m.MatchedOpportunities {
			opps[i] = fmt.Sprintf("%s (%.0f)", o.Opportunity.Title, o.RelevanceScore)
		}
		t.AppendRow(table.Row{logger.TruncateForLog(m.Event.Headline, 60), strings.Join(quotes, "\n"), strings.Join(opps, "\n")})
	}
	t.Render()
	fmt.Println(resp.Summary)
}
