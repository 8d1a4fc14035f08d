package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/david/goodworks/internal/logger"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const userAgent = "goodworks/1.0 (+https://github.com/david/goodworks)"

// RSSFeed reads headlines from RSS or Atom feeds, in the order the URLs are given.
type RSSFeed struct {
	URLs   []string
	parser *gofeed.Parser
	logger *zap.Logger
}

func NewRSSFeed(urls []string, timeout time.Duration, l *zap.Logger) *RSSFeed {
	fp := gofeed.NewParser()
	fp.Client = newHTTPClient(timeout)
	fp.UserAgent = userAgent
	return &RSSFeed{
		URLs:   urls,
		parser: fp,
		logger: logger.WithComponent(l, "rss"),
	}
}

func (f *RSSFeed) TopHeadlines(ctx context.Context, count int) ([]Article, error) {
	if count <= 0 {
		count = 5
	}

	var articles []Article
	var errs []error
	for _, u := range f.URLs {
		if len(articles) >= count {
			break
		}
		feed, err := f.parser.ParseURLWithContext(u, ctx)
		if err != nil {
			f.logger.Warn("feed fetch failed", zap.String("url", u), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", u, err))
			continue
		}
		for _, item := range feed.Items {
			if len(articles) >= count {
				break
			}
			articles = append(articles, itemToArticle(feed, item))
		}
	}

	if len(articles) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return articles, nil
}

func itemToArticle(feed *gofeed.Feed, item *gofeed.Item) Article {
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}
	return Article{
		Title:       item.Title,
		Description: item.Description,
		Content:     item.Content,
		URL:         item.Link,
		SourceName:  feed.Title,
		PublishedAt: published,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
