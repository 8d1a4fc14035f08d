package sources

import (
	"context"
	"sync"

	"github.com/david/goodworks/internal/models"
)

// Loader is what a Scope memoizes. *Resolver implements it.
type Loader interface {
	LoadQuotes(ctx context.Context) []models.Quote
	LoadOpportunities(ctx context.Context) []models.Opportunity
	LoadCurrentEvents(ctx context.Context) []models.CurrentEvent
}

type lazy[T any] struct {
	once  sync.Once
	items []T
}

func (l *lazy[T]) get(ctx context.Context, load func(context.Context) []T) []T {
	l.once.Do(func() {
		l.items = load(ctx)
	})
	return l.items
}

// Scope memoizes each collection for the lifetime of one request. Every
// loader runs at most once no matter how many consumers ask. Returned slices
// are shared between consumers and must not be modified.
type Scope struct {
	loader        Loader
	quotes        lazy[models.Quote]
	opportunities lazy[models.Opportunity]
	events        lazy[models.CurrentEvent]
}

func NewScope(loader Loader) *Scope {
	return &Scope{loader: loader}
}

func (s *Scope) Quotes(ctx context.Context) []models.Quote {
	return s.quotes.get(ctx, s.loader.LoadQuotes)
}

func (s *Scope) Opportunities(ctx context.Context) []models.Opportunity {
	return s.opportunities.get(ctx, s.loader.LoadOpportunities)
}

func (s *Scope) CurrentEvents(ctx context.Context) []models.CurrentEvent {
	return s.events.get(ctx, s.loader.LoadCurrentEvents)
}
