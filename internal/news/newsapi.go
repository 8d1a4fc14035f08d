package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/david/goodworks/internal/config"
)

const defaultNewsAPIBase = "https://newsapi.org/v2"

type NewsAPIClient struct {
	BaseURL  string
	APIKey   string
	Country  string
	Language string
	Client   *http.Client
}

func NewNewsAPIClient(cfg config.NewsConfig) *NewsAPIClient {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultNewsAPIBase
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	return &NewsAPIClient{
		BaseURL:  base,
		APIKey:   cfg.APIKey,
		Country:  country,
		Language: language,
		Client:   newHTTPClient(cfg.Timeout),
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string     `json:"title"`
		Description *string    `json:"description"`
		Content     *string    `json:"content"`
		URL         string     `json:"url"`
		PublishedAt *time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (c *NewsAPIClient) TopHeadlines(ctx context.Context, count int) ([]Article, error) {
	if count <= 0 {
		count = 5
	}
	q := url.Values{}
	q.Set("language", c.Language)
	q.Set("country", c.Country)
	q.Set("pageSize", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode newsapi response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status == "error" {
		return nil, fmt.Errorf("newsapi returned status %d: %s %s", resp.StatusCode, parsed.Code, parsed.Message)
	}

	articles := make([]Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		article := Article{
			Title:       a.Title,
			URL:         a.URL,
			SourceName:  a.Source.Name,
			PublishedAt: a.PublishedAt,
		}
		if a.Description != nil {
			article.Description = *a.Description
		}
		if a.Content != nil {
			article.Content = *a.Content
		}
		articles = append(articles, article)
	}
	if len(articles) > count {
		articles = articles[:count]
	}
	return articles, nil
}
