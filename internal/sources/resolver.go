// Package sources resolves quotes, opportunities and current events from the
// best available provider: the record store, a live news feed, or the bundled
// catalog. Resolution never fails; an unavailable provider yields the next one.
package sources

import (
	"context"
	"errors"
	"time"

	"github.com/david/goodworks/internal/catalog"
	"github.com/david/goodworks/internal/logger"
	"github.com/david/goodworks/internal/models"
	"github.com/david/goodworks/internal/news"
	"go.uber.org/zap"
)

// ErrUnavailable is the uniform signal a provider returns when it cannot serve a collection.
var ErrUnavailable = errors.New("source unavailable")

// RecentEventLimit is the default cap on events read from the record store
// and the news feed.
const RecentEventLimit = 5

// RecordStore is the persistence capability the resolver reads from.
type RecordStore interface {
	ListQuotes(ctx context.Context) ([]models.Quote, error)
	ListOpportunities(ctx context.Context) ([]models.Opportunity, error)
	ListRecentEvents(ctx context.Context, limit int) ([]models.CurrentEvent, error)
	UpsertEvents(ctx context.Context, events []models.CurrentEvent) error
}

// Provider is one tier of a resolution chain.
type Provider[T any] struct {
	Name string
	Load func(ctx context.Context) ([]T, error)
}

// Resolve tries providers in order and returns the first non-empty result.
// Errors and empty results both fall through; when every provider is
// exhausted the result is empty.
func Resolve[T any](ctx context.Context, l *zap.Logger, collection string, providers []Provider[T]) ([]T, string) {
	l = logger.OrNop(l)
	for _, p := range providers {
		items, err := p.Load(ctx)
		if err != nil {
			l.Warn("source unavailable, falling through",
				zap.String("collection", collection), zap.String("tier", p.Name), zap.Error(err))
			continue
		}
		if len(items) == 0 {
			l.Debug("source empty, falling through",
				zap.String("collection", collection), zap.String("tier", p.Name))
			continue
		}
		return items, p.Name
	}
	return nil, ""
}

type Resolver struct {
	store   RecordStore
	feed    news.Feed
	catalog *catalog.Catalog
	logger  *zap.Logger
	now     func() time.Time

	eventLimit int
}

// NewResolver wires the tiers. store and feed may be nil when not configured.
func NewResolver(store RecordStore, feed news.Feed, cat *catalog.Catalog, l *zap.Logger) *Resolver {
	return &Resolver{
		store:   store,
		feed:    feed,
		catalog: cat,
		logger:  logger.WithComponent(l, "sources"),
		now:     time.Now,

		eventLimit: RecentEventLimit,
	}
}

// WithEventLimit sets how many recent events the store and feed tiers read.
// Values <= 0 keep the default.
func (r *Resolver) WithEventLimit(n int) *Resolver {
	if n > 0 {
		r.eventLimit = n
	}
	return r
}

func (r *Resolver) LoadQuotes(ctx context.Context) []models.Quote {
	providers := []Provider[models.Quote]{
		{Name: "store", Load: func(ctx context.Context) ([]models.Quote, error) {
			if r.store == nil {
				return nil, ErrUnavailable
			}
			return r.store.ListQuotes(ctx)
		}},
		{Name: "static", Load: func(context.Context) ([]models.Quote, error) {
			return r.catalog.QuoteList(), nil
		}},
	}
	quotes, _ := Resolve(ctx, r.logger, "quotes", providers)
	return quotes
}

func (r *Resolver) LoadOpportunities(ctx context.Context) []models.Opportunity {
	providers := []Provider[models.Opportunity]{
		{Name: "store", Load: func(ctx context.Context) ([]models.Opportunity, error) {
			if r.store == nil {
				return nil, ErrUnavailable
			}
			return r.store.ListOpportunities(ctx)
		}},
		{Name: "static", Load: func(context.Context) ([]models.Opportunity, error) {
			return r.catalog.OpportunityList(), nil
		}},
	}
	opps, _ := Resolve(ctx, r.logger, "opportunities", providers)
	return opps
}

func (r *Resolver) LoadCurrentEvents(ctx context.Context) []models.CurrentEvent {
	providers := []Provider[models.CurrentEvent]{
		{Name: "store", Load: func(ctx context.Context) ([]models.CurrentEvent, error) {
			if r.store == nil {
				return nil, ErrUnavailable
			}
			return r.store.ListRecentEvents(ctx, r.eventLimit)
		}},
		{Name: "news", Load: r.loadLiveEvents},
		{Name: "static", Load: func(context.Context) ([]models.CurrentEvent, error) {
			return r.catalog.EventList(), nil
		}},
	}
	events, _ := Resolve(ctx, r.logger, "events", providers)
	return events
}

// loadLiveEvents fetches headlines and writes them through to the store.
// A failed write is logged and does not affect the result.
func (r *Resolver) loadLiveEvents(ctx context.Context) ([]models.CurrentEvent, error) {
	if r.feed == nil {
		return nil, ErrUnavailable
	}
	articles, err := r.feed.TopHeadlines(ctx, r.eventLimit)
	if err != nil {
		return nil, err
	}
	events := news.ToEvents(articles, r.now())
	if len(events) == 0 || r.store == nil {
		return events, nil
	}
	if err := r.store.UpsertEvents(ctx, events); err != nil {
		r.logger.Warn("failed to persist live events", zap.Int("count", len(events)), zap.Error(err))
	}
	return events, nil
}
