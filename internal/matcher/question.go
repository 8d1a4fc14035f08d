package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/david/goodworks/internal/ai"
	"github.com/david/goodworks/internal/models"
	"go.uber.org/zap"
)

const (
	askQuoteLimit       = 3
	askOpportunityLimit = 3
)

type QuoteAnswer struct {
	Quote     models.Quote `json:"quote"`
	Relevance string       `json:"relevance"`
}

type ActionSuggestion struct {
	Opportunity models.Opportunity `json:"opportunity"`
	Reasoning   string             `json:"reasoning"`
}

type QuestionMatchResponse struct {
	Question      string             `json:"question"`
	Quotes        []QuoteAnswer      `json:"quotes"`
	Opportunities []ActionSuggestion `json:"opportunities"`
	Reflection    string             `json:"reflection"`
}

// MatchQuestion answers a free-text question with quotes, opportunities and
// a short reflection. A selection step that cannot be used leaves its list
// empty; an unreachable LLM fails the whole call.
func (o *Orchestrator) MatchQuestion(ctx context.Context, c Collections, question string) (QuestionMatchResponse, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return QuestionMatchResponse{}, ErrInvalidQuestion
	}
	if o.llm == nil {
		o.logger.Error("question match requested without an llm", zap.Error(ai.ErrNotConfigured))
		return QuestionMatchResponse{}, fmt.Errorf("%w: %w", ErrQuestionMatchFailed, ai.ErrNotConfigured)
	}

	snap := load(ctx, c, false)

	quotes, err := o.selectQuotes(ctx, question, snap.quotes)
	if err != nil {
		return QuestionMatchResponse{}, err
	}

	picked := make([]models.Quote, len(quotes))
	for i, q := range quotes {
		picked[i] = q.Quote
	}
	opps, err := o.selectOpportunities(ctx, question, quotes, candidates(snap.opportunities, picked))
	if err != nil {
		return QuestionMatchResponse{}, err
	}

	return QuestionMatchResponse{
		Question:      question,
		Quotes:        quotes,
		Opportunities: opps,
		Reflection:    o.reflect(ctx, question, quotes, opps),
	}, nil
}

func (o *Orchestrator) selectQuotes(ctx context.Context, question string, quotes []models.Quote) ([]QuoteAnswer, error) {
	res := o.rank(ctx, "ask_quotes", askQuoteRequest(question, quotes), ai.Shape{
		IndexKey:  "quoteNumber",
		ReasonKey: "relevance",
		Count:     len(quotes),
	})
	switch res.status {
	case stepFatal:
		return nil, fmt.Errorf("%w: %w", ErrQuestionMatchFailed, res.err)
	case stepFallback:
		return []QuoteAnswer{}, nil
	}

	out := make([]QuoteAnswer, 0, len(res.selections))
	for _, s := range res.selections {
		if len(out) == askQuoteLimit {
			break
		}
		out = append(out, QuoteAnswer{Quote: quotes[s.Index], Relevance: s.Reason})
	}
	return out, nil
}

func (o *Orchestrator) selectOpportunities(ctx context.Context, question string, quotes []QuoteAnswer, pool []models.Opportunity) ([]ActionSuggestion, error) {
	if len(pool) == 0 {
		return []ActionSuggestion{}, nil
	}
	if len(pool) > askOpportunityCandidates {
		pool = pool[:askOpportunityCandidates]
	}

	res := o.rank(ctx, "ask_opportunities", askOpportunityRequest(question, quotes, pool), ai.Shape{
		IndexKey:  "opportunityNumber",
		ReasonKey: "reasoning",
		Count:     len(pool),
	})
	switch res.status {
	case stepFatal:
		return nil, fmt.Errorf("%w: %w", ErrQuestionMatchFailed, res.err)
	case stepFallback:
		return []ActionSuggestion{}, nil
	}

	out := make([]ActionSuggestion, 0, len(res.selections))
	for _, s := range res.selections {
		if len(out) == askOpportunityLimit {
			break
		}
		out = append(out, ActionSuggestion{Opportunity: pool[s.Index], Reasoning: s.Reason})
	}
	return out, nil
}

func (o *Orchestrator) reflect(ctx context.Context, question string, quotes []QuoteAnswer, opps []ActionSuggestion) string {
	res := o.complete(ctx, "ask_reflection", reflectionRequest(question, quotes, opps))
	if res.status != stepOK || res.text == "" {
		return fallbackReflection
	}
	return res.text
}
