package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/david/goodworks/internal/bridge"
	"github.com/david/goodworks/internal/config"
	"github.com/david/goodworks/internal/models"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  plain   text \n here ", "plain text here"},
		{"<p>Food &amp; shelter <b>now</b></p>", "Food & shelter now"},
		{"<div>Volunteers<style>p{color:red}</style> needed</div>", "Volunteers needed"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToEvents(t *testing.T) {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	published := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)

	articles := []Article{
		{Title: "Food bank shelves run empty", Description: "Donations fall", URL: "https://news.example/a", SourceName: "Example Times", PublishedAt: &published},
		{Title: "   "},
		{Title: "Town fair draws crowds", Content: "<p>A <i>quiet</i> weekend</p>"},
		{Title: "Storm warning issued"},
	}

	events := ToEvents(articles, now)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	first := events[0]
	if first.ID != "https://news.example/a" || first.Category != models.CauseHunger || first.Region != "Example Times" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if !first.PublishedAt.Equal(published) {
		t.Fatalf("published_at = %v", first.PublishedAt)
	}
	if len(first.RelatedQuoteIDs) != 1 || first.RelatedQuoteIDs[0] != "quote-matthew-25-40" {
		t.Fatalf("unexpected quotes: %v", first.RelatedQuoteIDs)
	}

	second := events[1]
	if second.ID != "newsapi-1" || second.Summary != "A quiet weekend" || second.Region != "Global" {
		t.Fatalf("unexpected second event: %+v", second)
	}
	if second.Category != bridge.DefaultCategory || second.RelatedQuoteIDs[0] != bridge.DefaultQuoteID {
		t.Fatalf("expected defaults, got %+v", second)
	}
	if !second.PublishedAt.Equal(now) {
		t.Fatalf("missing publish time should default to now, got %v", second.PublishedAt)
	}

	if events[2].ID != "newsapi-2" || events[2].Summary != fallbackSummary || events[2].Category != models.CauseEnvironment {
		t.Fatalf("unexpected third event: %+v", events[2])
	}
}

func TestToEventsNumbersOnlyTitledArticles(t *testing.T) {
	events := ToEvents([]Article{{Title: ""}, {Title: "Storm hits coast"}}, time.Now())
	if len(events) != 1 || events[0].ID != "newsapi-0" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestNewsAPIClientTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/top-headlines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("missing api key header")
		}
		q := r.URL.Query()
		if q.Get("country") != "us" || q.Get("language") != "en" || q.Get("pageSize") != "5" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"source":{"name":"Wire"},"title":"Clinic expands hours","description":null,"content":"More nurses","url":"https://wire.example/1","publishedAt":"2025-01-20T10:00:00Z"},
			{"source":{"name":"Wire"},"title":"Second","description":"d","url":"https://wire.example/2"}
		]}`)
	}))
	defer srv.Close()

	client := NewNewsAPIClient(config.NewsConfig{BaseURL: srv.URL + "/", APIKey: "key"})
	articles, err := client.TopHeadlines(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Description != "" || articles[0].Content != "More nurses" || articles[0].PublishedAt == nil {
		t.Fatalf("unexpected article: %+v", articles[0])
	}
}

func TestNewsAPIClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`)
	}))
	defer srv.Close()

	client := NewNewsAPIClient(config.NewsConfig{BaseURL: srv.URL, APIKey: "nope"})
	if _, err := client.TopHeadlines(context.Background(), 5); err == nil || !strings.Contains(err.Error(), "apiKeyInvalid") {
		t.Fatalf("expected api error, got %v", err)
	}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Local Wire</title>
<item><title>Senior center reopens</title><link>https://local.example/1</link>
<description>&lt;p&gt;Companions for &lt;b&gt;elders&lt;/b&gt;&lt;/p&gt;</description>
<pubDate>Mon, 20 Jan 2025 10:00:00 GMT</pubDate></item>
<item><title>Second item</title><link>https://local.example/2</link></item>
<item><title>Third item</title><link>https://local.example/3</link></item>
</channel></rss>`

func TestRSSFeedTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody)
	}))
	defer srv.Close()

	feed := NewRSSFeed([]string{srv.URL + "/broken", srv.URL + "/feed"}, time.Second, nil)
	articles, err := feed.TopHeadlines(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].SourceName != "Local Wire" || articles[0].PublishedAt == nil {
		t.Fatalf("unexpected article: %+v", articles[0])
	}

	events := ToEvents(articles, time.Now())
	if events[0].Summary != "Companions for elders" || events[0].Category != models.CauseElderly {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestRSSFeedAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	feed := NewRSSFeed([]string{srv.URL}, time.Second, nil)
	if _, err := feed.TopHeadlines(context.Background(), 5); err == nil {
		t.Fatal("expected error when every feed fails")
	}
}

func TestNew(t *testing.T) {
	if _, err := New(config.NewsConfig{Provider: "newsapi"}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New(config.NewsConfig{Provider: "rss"}, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	feed, err := New(config.NewsConfig{Provider: "rss", RSSURLs: []string{"https://x.example/rss"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := feed.(*RSSFeed); !ok {
		t.Fatalf("expected *RSSFeed, got %T", feed)
	}
	if _, err := New(config.NewsConfig{Provider: "carrier-pigeon"}, nil); err == nil {
		t.Fatal("unknown provider should fail")
	}
}
