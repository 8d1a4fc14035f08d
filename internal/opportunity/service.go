// Package opportunity filters, ranks and relates volunteer opportunities.
package opportunity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/david/goodworks/internal/bridge"
	"github.com/david/goodworks/internal/logger"
	"github.com/david/goodworks/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultFeaturedLimit   = 6
	DefaultEventMatchLimit = 6
)

var (
	ErrStoreUnavailable = errors.New("record store unavailable")
	ErrInvalidInterest  = errors.New("opportunityId is required")
	ErrEventNotFound    = errors.New("event not found")
)

// Collections is the request-scoped view of the resolved data.
type Collections interface {
	Quotes(ctx context.Context) []models.Quote
	Opportunities(ctx context.Context) []models.Opportunity
	CurrentEvents(ctx context.Context) []models.CurrentEvent
}

// InterestRecorder persists expressions of interest.
type InterestRecorder interface {
	InsertInterest(ctx context.Context, interest models.Interest) error
}

type Service struct {
	interests InterestRecorder
	logger    *zap.Logger
	newID     func() uuid.UUID
	now       func() time.Time
}

// NewService returns a service; recorder may be nil when no store is configured.
func NewService(recorder InterestRecorder, l *zap.Logger) *Service {
	return &Service{
		interests: recorder,
		logger:    logger.WithComponent(l, "opportunity"),
		newID:     uuid.New,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, c Collections, opts FilterOptions) []models.Opportunity {
	return Filter(c.Opportunities(ctx), opts)
}

// Get returns the active opportunity with the given id.
func (s *Service) Get(ctx context.Context, c Collections, id string) (models.Opportunity, bool) {
	for _, o := range c.Opportunities(ctx) {
		if o.ID == id && o.ActiveStatus {
			return o, true
		}
	}
	return models.Opportunity{}, false
}

// RelatedQuotes resolves the opportunity's related quote ids in order.
func (s *Service) RelatedQuotes(ctx context.Context, c Collections, o models.Opportunity) []models.Quote {
	if len(o.RelatedQuotes) == 0 {
		return []models.Quote{}
	}
	return models.QuotesByID(c.Quotes(ctx), o.RelatedQuotes)
}

func (s *Service) Featured(ctx context.Context, c Collections, limit int) []models.Opportunity {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	return Filter(c.Opportunities(ctx), FilterOptions{FeaturedOnly: true, Limit: Limit(limit)})
}

// ForEvent returns opportunities connected to a current event. An event that
// lists related opportunities yields those, in the listed order, skipping ids
// that are unknown or inactive. An event without explicit relations yields
// opportunities sharing the first category bridged from its related quotes.
func (s *Service) ForEvent(ctx context.Context, c Collections, eventID string) ([]models.Opportunity, models.CurrentEvent, error) {
	var event models.CurrentEvent
	found := false
	for _, e := range c.CurrentEvents(ctx) {
		if e.ID == eventID {
			event, found = e, true
			break
		}
	}
	if !found {
		return nil, models.CurrentEvent{}, ErrEventNotFound
	}

	if len(event.RelatedOpportunityIDs) > 0 {
		related := make([]models.Opportunity, 0, len(event.RelatedOpportunityIDs))
		for _, id := range event.RelatedOpportunityIDs {
			if o, ok := s.Get(ctx, c, id); ok {
				related = append(related, o)
			}
		}
		return related, event, nil
	}

	opts := FilterOptions{Limit: Limit(DefaultEventMatchLimit)}
	cats := bridge.ExpandQuotes(models.QuotesByID(c.Quotes(ctx), event.RelatedQuoteIDs))
	if len(cats) > 0 {
		opts.Causes = cats[:1]
	}
	return Filter(c.Opportunities(ctx), opts), event, nil
}

func (s *Service) Recommend(ctx context.Context, c Collections, signal Signal, count int) []Scored {
	return Recommend(c.Opportunities(ctx), signal, count)
}

type InterestRequest struct {
	OpportunityID string         `json:"opportunityId"`
	UserID        string         `json:"userId,omitempty"`
	UserEmail     string         `json:"userEmail,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
}

// RecordInterest writes one interest row. Failures are returned, never retried.
func (s *Service) RecordInterest(ctx context.Context, req InterestRequest) (models.Interest, error) {
	req.OpportunityID = strings.TrimSpace(req.OpportunityID)
	if req.OpportunityID == "" {
		return models.Interest{}, ErrInvalidInterest
	}
	if s.interests == nil {
		return models.Interest{}, ErrStoreUnavailable
	}

	interest := models.Interest{
		ID:            s.newID(),
		OpportunityID: req.OpportunityID,
		UserID:        strings.TrimSpace(req.UserID),
		UserEmail:     strings.TrimSpace(req.UserEmail),
		Context:       req.Context,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.interests.InsertInterest(ctx, interest); err != nil {
		s.logger.Error("failed to record interest", zap.String("opportunity_id", interest.OpportunityID), zap.Error(err))
		return models.Interest{}, fmt.Errorf("unable to record interest: %w", err)
	}
	return interest, nil
}
