// Package news turns live headlines into current events. Two providers are
// available: the NewsAPI top-headlines endpoint and plain RSS/Atom feeds.
package news

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/david/goodworks/internal/bridge"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/models"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned by New when the selected provider lacks required settings.
var ErrNotConfigured = errors.New("news feed not configured")

const (
	fallbackSummary = "Developing story, details to follow."
	fallbackRegion  = "Global"
)

// Article is a raw headline as returned by a provider. Only Title is required.
type Article struct {
	Title       string
	Description string
	Content     string
	URL         string
	SourceName  string
	PublishedAt *time.Time
}

// Feed is the news capability consumed by the source resolver.
type Feed interface {
	TopHeadlines(ctx context.Context, count int) ([]Article, error)
}

// New builds the provider selected in cfg.
func New(cfg config.NewsConfig, logger *zap.Logger) (Feed, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "newsapi":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("newsapi: missing api key: %w", ErrNotConfigured)
		}
		return NewNewsAPIClient(cfg), nil
	case "rss":
		if len(cfg.RSSURLs) == 0 {
			return nil, fmt.Errorf("rss: no feed urls: %w", ErrNotConfigured)
		}
		return NewRSSFeed(cfg.RSSURLs, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}
}

// ToEvents maps articles to current events. Articles without a title are
// dropped; the category and fallback quotes come from the keyword rules.
func ToEvents(articles []Article, now time.Time) []models.CurrentEvent {
	events := make([]models.CurrentEvent, 0, len(articles))
	for _, a := range articles {
		headline := PlainText(a.Title)
		if headline == "" {
			continue
		}

		summary := PlainText(a.Description)
		if summary == "" {
			summary = PlainText(a.Content)
		}
		if summary == "" {
			summary = fallbackSummary
		}

		category, quoteIDs := bridge.Classify(headline + " " + summary)

		id := strings.TrimSpace(a.URL)
		if id == "" {
			id = fmt.Sprintf("newsapi-%d", len(events))
		}
		region := strings.TrimSpace(a.SourceName)
		if region == "" {
			region = fallbackRegion
		}
		published := now
		if a.PublishedAt != nil && !a.PublishedAt.IsZero() {
			published = *a.PublishedAt
		}

		events = append(events, models.CurrentEvent{
			ID:                    id,
			Headline:              headline,
			Summary:               summary,
			Category:              category,
			Region:                region,
			Source:                strings.TrimSpace(a.SourceName),
			URL:                   strings.TrimSpace(a.URL),
			PublishedAt:           published,
			RelatedQuoteIDs:       quoteIDs,
			RelatedOpportunityIDs: []string{},
		})
	}
	return events
}

var strictPolicy = bluemonday.StrictPolicy()

// PlainText reduces an HTML fragment to collapsed plain text.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style, noscript").Remove()
			s = doc.Text()
		}
		// decoded entities may have reintroduced markup
		s = html.UnescapeString(strictPolicy.Sanitize(s))
	}
	return strings.Join(strings.Fields(s), " ")
}
