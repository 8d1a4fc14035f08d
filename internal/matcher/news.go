package matcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/david/goodworks/internal/ai"
	"github.com/david/goodworks/internal/models"
	"go.uber.org/zap"
)

const (
	newsEventLimit         = 5
	newsQuoteLimit         = 3
	newsOpportunityLimit   = 5
	newsFallbackCount      = 3
	preconfiguredScore     = 75.0
	generalScore           = 50.0
	categoryFallbackScore  = 70.0
	preconfiguredReasoning = "Pre-configured match based on event category"
	generalReasoning       = "General volunteer opportunity"
)

type QuoteMatch struct {
	Quote          models.Quote `json:"quote"`
	RelevanceScore float64      `json:"relevanceScore"`
	Reasoning      string       `json:"reasoning"`
}

type OpportunityMatch struct {
	Opportunity    models.Opportunity `json:"opportunity"`
	RelevanceScore float64            `json:"relevanceScore"`
	Reasoning      string             `json:"reasoning"`
}

type EventMatch struct {
	Event                models.CurrentEvent `json:"event"`
	MatchedQuotes        []QuoteMatch        `json:"matchedQuotes"`
	MatchedOpportunities []OpportunityMatch  `json:"matchedOpportunities"`
}

type NewsMatchResponse struct {
	Matches []EventMatch `json:"matches"`
	Summary string       `json:"summary"`
}

// MatchNews pairs the first five resolved current events with quotes
// and opportunities. Each event costs at most two LLM calls, made in order.
// Call failures fall back to rule-based matches; only a missing LLM fails.
func (o *Orchestrator) MatchNews(ctx context.Context, c Collections) (NewsMatchResponse, error) {
	if o.llm == nil {
		o.logger.Error("news match requested without an llm", zap.Error(ai.ErrNotConfigured))
		return NewsMatchResponse{}, fmt.Errorf("%w: %w", ErrNewsMatchFailed, ai.ErrNotConfigured)
	}

	snap := load(ctx, c, true)
	events := snap.events
	if len(events) > newsEventLimit {
		events = events[:newsEventLimit]
	}

	matches := make([]EventMatch, 0, len(events))
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return NewsMatchResponse{}, fmt.Errorf("%w: %w", ErrNewsMatchFailed, err)
		}

		quotes := o.matchEventQuotes(ctx, event, snap.quotes)
		picked := make([]models.Quote, len(quotes))
		for i, q := range quotes {
			picked[i] = q.Quote
		}
		opps := o.matchEventOpportunities(ctx, event, picked, snap.opportunities)

		matches = append(matches, EventMatch{
			Event:                event,
			MatchedQuotes:        quotes,
			MatchedOpportunities: opps,
		})
	}

	return NewsMatchResponse{Matches: matches, Summary: summarize(matches)}, nil
}

func (o *Orchestrator) matchEventQuotes(ctx context.Context, event models.CurrentEvent, quotes []models.Quote) []QuoteMatch {
	res := o.rank(ctx, "news_quotes", newsQuoteRequest(event, quotes), ai.Shape{
		IndexKey:  "quoteNumber",
		ScoreKey:  "relevanceScore",
		ReasonKey: "reasoning",
		Count:     len(quotes),
	})

	if res.status != stepOK {
		o.logger.Info("using pre-configured quotes", zap.String("event_id", event.ID))
		related := models.QuotesByID(quotes, event.RelatedQuoteIDs)
		out := make([]QuoteMatch, len(related))
		for i, q := range related {
			out[i] = QuoteMatch{Quote: q, RelevanceScore: preconfiguredScore, Reasoning: preconfiguredReasoning}
		}
		return out
	}

	out := make([]QuoteMatch, len(res.selections))
	for i, s := range res.selections {
		out[i] = QuoteMatch{Quote: quotes[s.Index], RelevanceScore: s.Score, Reasoning: s.Reason}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	if len(out) > newsQuoteLimit {
		out = out[:newsQuoteLimit]
	}
	return out
}

func (o *Orchestrator) matchEventOpportunities(ctx context.Context, event models.CurrentEvent, matched []models.Quote, opps []models.Opportunity) []OpportunityMatch {
	pool := candidates(opps, matched, event.Category)
	if len(pool) == 0 {
		active := models.ActiveOnly(opps)
		if len(active) > newsFallbackCount {
			active = active[:newsFallbackCount]
		}
		out := make([]OpportunityMatch, len(active))
		for i, op := range active {
			out[i] = OpportunityMatch{Opportunity: op, RelevanceScore: generalScore, Reasoning: generalReasoning}
		}
		return out
	}

	presented := pool
	if len(presented) > newsOpportunityCandidates {
		presented = presented[:newsOpportunityCandidates]
	}
	res := o.rank(ctx, "news_opportunities", newsOpportunityRequest(event, matched, presented), ai.Shape{
		IndexKey:  "opportunityNumber",
		ScoreKey:  "relevanceScore",
		ReasonKey: "reasoning",
		Count:     len(presented),
	})

	if res.status != stepOK {
		o.logger.Info("using category matches", zap.String("event_id", event.ID), zap.String("category", string(event.Category)))
		fallback := pool
		if len(fallback) > newsFallbackCount {
			fallback = fallback[:newsFallbackCount]
		}
		out := make([]OpportunityMatch, len(fallback))
		for i, op := range fallback {
			out[i] = OpportunityMatch{
				Opportunity:    op,
				RelevanceScore: categoryFallbackScore,
				Reasoning:      fmt.Sprintf("Matches %s category", event.Category),
			}
		}
		return out
	}

	out := make([]OpportunityMatch, len(res.selections))
	for i, s := range res.selections {
		out[i] = OpportunityMatch{Opportunity: presented[s.Index], RelevanceScore: s.Score, Reasoning: s.Reason}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RelevanceScore > out[j].RelevanceScore })
	if len(out) > newsOpportunityLimit {
		out = out[:newsOpportunityLimit]
	}
	return out
}

func summarize(matches []EventMatch) string {
	if len(matches) == 0 {
		return "No current events matched to quotes and opportunities."
	}
	total := 0
	for _, m := range matches {
		total += len(m.MatchedOpportunities)
	}
	return fmt.Sprintf("Successfully matched %d current events to relevant biblical wisdom and %d volunteer opportunities. Each event is connected to actionable ways to respond with compassion and service.", len(matches), total)
}
