package matcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/david/goodworks/internal/ai"
	"github.com/david/goodworks/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type staticCollections struct {
	quotes []models.Quote
	opps   []models.Opportunity
	events []models.CurrentEvent
}

func (s staticCollections) Quotes(context.Context) []models.Quote               { return s.quotes }
func (s staticCollections) Opportunities(context.Context) []models.Opportunity { return s.opps }
func (s staticCollections) CurrentEvents(context.Context) []models.CurrentEvent {
	return s.events
}

type scriptedLLM struct {
	mu    sync.Mutex
	calls []ai.CompletionRequest
	reply func(req ai.CompletionRequest) (string, error)
}

func (s *scriptedLLM) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	return s.reply(req)
}

func (s *scriptedLLM) callsFor(system string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.System == system {
			n++
		}
	}
	return n
}

func fixtures() staticCollections {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return base.AddDate(0, 0, n) }

	return staticCollections{
		quotes: []models.Quote{
			{ID: "q1", Text: "I was hungry", Reference: "Matthew 25:35", Theme: "hunger", Tags: []string{"hunger"}},
			{ID: "q2", Text: "Ye are the light", Reference: "Matthew 5:14", Theme: "environment"},
			{ID: "q3", Text: "Come unto me", Reference: "Matthew 11:28", Theme: "hope"},
		},
		opps: []models.Opportunity{
			{ID: "o1", Title: "Food Pantry", Description: strings.Repeat("x", 300), CauseCategories: []models.CauseCategory{models.CauseHunger}, ActiveStatus: true},
			{ID: "o2", Title: "River Cleanup", CauseCategories: []models.CauseCategory{models.CauseEnvironment}, Location: models.Location{Mode: models.ModeRemote}, ActiveStatus: true},
			{ID: "o3", Title: "Clinic Greeter", CauseCategories: []models.CauseCategory{models.CauseHealthcare}, ActiveStatus: true},
			{ID: "o4", Title: "Closed Kitchen", CauseCategories: []models.CauseCategory{models.CauseHunger}, ActiveStatus: false},
			{ID: "o5", Title: "Tutor", CauseCategories: []models.CauseCategory{models.CauseEducation}, ActiveStatus: true},
		},
		events: []models.CurrentEvent{
			{ID: "e-hunger", Category: models.CauseHunger, RelatedQuoteIDs: []string{"q1"}, PublishedAt: day(6)},
			{ID: "e-river", Category: models.CauseEnvironment, RelatedQuoteIDs: []string{"q2", "missing", "q1"}, PublishedAt: day(5)},
			{ID: "e-elders", Category: models.CauseElderly, PublishedAt: day(4)},
			{ID: "e-old", Category: models.CauseHunger, RelatedQuoteIDs: []string{"q1"}, PublishedAt: day(0)},
			{ID: "e-clinic", Category: models.CauseHealthcare, RelatedQuoteIDs: []string{"q3"}, PublishedAt: day(3)},
			{ID: "e-school", Category: models.CauseEducation, PublishedAt: day(2)},
		},
	}
}

func failing(err error) *scriptedLLM {
	return &scriptedLLM{reply: func(ai.CompletionRequest) (string, error) { return "", err }}
}

func TestMatchNewsFallsBackWhenLLMFails(t *testing.T) {
	for _, llmErr := range []error{errors.New("boom"), fmt.Errorf("down: %w", ai.ErrUnavailable)} {
		t.Run(llmErr.Error(), func(t *testing.T) {
			c := fixtures()
			llm := failing(llmErr)
			resp, err := New(llm, zap.NewNop()).MatchNews(context.Background(), c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantOrder := []string{"e-hunger", "e-river", "e-elders", "e-old", "e-clinic"}
			if len(resp.Matches) != len(wantOrder) {
				t.Fatalf("expected %d matches, got %d", len(wantOrder), len(resp.Matches))
			}
			for i, m := range resp.Matches {
				if m.Event.ID != wantOrder[i] {
					t.Fatalf("match %d: got event %s, want %s", i, m.Event.ID, wantOrder[i])
				}
				related := models.QuotesByID(c.quotes, m.Event.RelatedQuoteIDs)
				if len(m.MatchedQuotes) != len(related) {
					t.Fatalf("%s: got %d quotes, want %d", m.Event.ID, len(m.MatchedQuotes), len(related))
				}
				for j, q := range m.MatchedQuotes {
					if q.Quote.ID != related[j].ID || q.RelevanceScore != 75 || q.Reasoning != preconfiguredReasoning {
						t.Fatalf("%s: unexpected quote match %+v", m.Event.ID, q)
					}
				}
			}

			hunger := resp.Matches[0]
			if len(hunger.MatchedOpportunities) != 1 || hunger.MatchedOpportunities[0].Opportunity.ID != "o1" ||
				hunger.MatchedOpportunities[0].RelevanceScore != 70 || hunger.MatchedOpportunities[0].Reasoning != "Matches hunger category" {
				t.Fatalf("unexpected category fallback: %+v", hunger.MatchedOpportunities)
			}

			elders := resp.Matches[2]
			if len(elders.MatchedOpportunities) != 3 {
				t.Fatalf("expected 3 general opportunities, got %+v", elders.MatchedOpportunities)
			}
			for i, want := range []string{"o1", "o2", "o3"} {
				got := elders.MatchedOpportunities[i]
				if got.Opportunity.ID != want || got.RelevanceScore != 50 || got.Reasoning != generalReasoning {
					t.Fatalf("unexpected general fallback %+v", got)
				}
			}

			if n := llm.callsFor(newsOpportunitySystem); n != 4 {
				t.Fatalf("expected 4 opportunity calls (one event had no candidates), got %d", n)
			}
			if n := llm.callsFor(newsQuoteSystem); n != 5 {
				t.Fatalf("expected one quote call per event, got %d", n)
			}
			if !strings.HasPrefix(resp.Summary, "Successfully matched 5 current events") {
				t.Fatalf("unexpected summary %q", resp.Summary)
			}
		})
	}
}

func TestMatchNewsUnparsableAnswerFallsBack(t *testing.T) {
	c := fixtures()
	c.events = c.events[:1]
	llm := &scriptedLLM{reply: func(ai.CompletionRequest) (string, error) {
		return `[{"quoteNumber": 9, "relevanceScore": 90, "reasoning": "out of range"}]`, nil
	}}

	resp, err := New(llm, zap.NewNop()).MatchNews(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := resp.Matches[0]
	if len(m.MatchedQuotes) != 1 || m.MatchedQuotes[0].RelevanceScore != 75 {
		t.Fatalf("expected pre-configured quotes, got %+v", m.MatchedQuotes)
	}
	if len(m.MatchedOpportunities) != 1 || m.MatchedOpportunities[0].RelevanceScore != 70 {
		t.Fatalf("expected category fallback, got %+v", m.MatchedOpportunities)
	}
}

func TestMatchNewsRanksWithLLM(t *testing.T) {
	c := fixtures()
	c.events = c.events[:1]

	var oppPrompt string
	llm := &scriptedLLM{reply: func(req ai.CompletionRequest) (string, error) {
		switch req.System {
		case newsQuoteSystem:
			return "```json\n[{\"quoteNumber\": 2, \"relevanceScore\": 60, \"reasoning\": \"light\"}, {\"quoteNumber\": 1, \"relevanceScore\": 90, \"reasoning\": \"food\"}]\n```", nil
		case newsOpportunitySystem:
			oppPrompt = req.User
			return `[{"opportunityNumber": 1, "relevanceScore": 40, "reasoning": "pantry"}, {"opportunityNumber": 2, "relevanceScore": 80, "reasoning": "river"}]`, nil
		}
		return "", errors.New("unexpected call")
	}}

	resp, err := New(llm, zap.NewNop()).MatchNews(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := resp.Matches[0]
	if len(m.MatchedQuotes) != 2 || m.MatchedQuotes[0].Quote.ID != "q1" || m.MatchedQuotes[1].Quote.ID != "q2" {
		t.Fatalf("quotes not ranked by score: %+v", m.MatchedQuotes)
	}
	if len(m.MatchedOpportunities) != 2 || m.MatchedOpportunities[0].Opportunity.ID != "o2" || m.MatchedOpportunities[0].Reasoning != "river" {
		t.Fatalf("opportunities not ranked by score: %+v", m.MatchedOpportunities)
	}

	if strings.Contains(oppPrompt, "Clinic Greeter") || strings.Contains(oppPrompt, "Closed Kitchen") {
		t.Fatalf("prompt offered opportunities outside the candidate pool:\n%s", oppPrompt)
	}
	if !strings.Contains(oppPrompt, "Location: Remote (remote)") {
		t.Fatalf("prompt missing location line:\n%s", oppPrompt)
	}
	if !strings.Contains(oppPrompt, strings.Repeat("x", newsDescriptionRunes)+"...") || strings.Contains(oppPrompt, strings.Repeat("x", newsDescriptionRunes+1)) {
		t.Fatal("description not clipped")
	}
	if want := "Successfully matched 1 current events to relevant biblical wisdom and 2 volunteer opportunities."; !strings.HasPrefix(resp.Summary, want) {
		t.Fatalf("unexpected summary %q", resp.Summary)
	}
}

func TestMatchNewsWithoutEvents(t *testing.T) {
	c := fixtures()
	c.events = nil
	resp, err := New(failing(errors.New("unused")), zap.NewNop()).MatchNews(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Matches == nil || len(resp.Matches) != 0 {
		t.Fatalf("expected empty matches, got %#v", resp.Matches)
	}
	if resp.Summary != "No current events matched to quotes and opportunities." {
		t.Fatalf("unexpected summary %q", resp.Summary)
	}
}

func TestMatchWithoutLLMFails(t *testing.T) {
	o := New(nil, zap.NewNop())
	if _, err := o.MatchNews(context.Background(), fixtures()); !errors.Is(err, ErrNewsMatchFailed) {
		t.Fatalf("expected ErrNewsMatchFailed, got %v", err)
	}
	if _, err := o.MatchQuestion(context.Background(), fixtures(), "How do I help?"); !errors.Is(err, ErrQuestionMatchFailed) {
		t.Fatalf("expected ErrQuestionMatchFailed, got %v", err)
	}
}

func TestMatchQuestionQuoteFailureLeavesListsEmpty(t *testing.T) {
	llm := &scriptedLLM{reply: func(req ai.CompletionRequest) (string, error) {
		switch req.System {
		case askQuoteSystem:
			return "", errors.New("rate limited")
		case reflectionSystem:
			return "  Serve where you stand.  ", nil
		}
		return "", errors.New("unexpected call")
	}}

	resp, err := New(llm, zap.NewNop()).MatchQuestion(context.Background(), fixtures(), "How do I help?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Quotes == nil || len(resp.Quotes) != 0 {
		t.Fatalf("expected empty quotes, got %#v", resp.Quotes)
	}
	if resp.Opportunities == nil || len(resp.Opportunities) != 0 {
		t.Fatalf("expected empty opportunities, got %#v", resp.Opportunities)
	}
	if resp.Reflection != "Serve where you stand." {
		t.Fatalf("unexpected reflection %q", resp.Reflection)
	}
	if n := llm.callsFor(askOpportunitySystem); n != 0 {
		t.Fatalf("opportunity call should be skipped without candidates, got %d", n)
	}
}

func TestMatchQuestionReflectionFallback(t *testing.T) {
	resp, err := New(failing(errors.New("boom")), zap.NewNop()).MatchQuestion(context.Background(), fixtures(), "Why?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reflection != fallbackReflection {
		t.Fatalf("unexpected reflection %q", resp.Reflection)
	}
}

func TestMatchQuestionUnavailableIsFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	llm := failing(fmt.Errorf("dial: %w", ai.ErrUnavailable))

	_, err := New(llm, zap.New(core)).MatchQuestion(context.Background(), fixtures(), "How do I help?")
	if !errors.Is(err, ErrQuestionMatchFailed) || !errors.Is(err, ai.ErrUnavailable) {
		t.Fatalf("expected fatal question failure, got %v", err)
	}
	if logs.FilterMessage("llm call failed").Len() != 1 {
		t.Fatalf("expected one failed call logged, got %d", logs.Len())
	}
}

func TestMatchQuestionHappyPath(t *testing.T) {
	llm := &scriptedLLM{reply: func(req ai.CompletionRequest) (string, error) {
		switch req.System {
		case askQuoteSystem:
			return `[{"quoteNumber": 1, "relevance": "feeding others"}]`, nil
		case askOpportunitySystem:
			return `[{"opportunityNumber": 1, "reasoning": "stock shelves"}]`, nil
		case reflectionSystem:
			if !strings.Contains(req.User, "Food Pantry") || !strings.Contains(req.User, "I was hungry") {
				t.Errorf("reflection prompt missing matches:\n%s", req.User)
			}
			return "Feed the hungry.", nil
		}
		return "", errors.New("unexpected call")
	}}

	resp, err := New(llm, zap.NewNop()).MatchQuestion(context.Background(), fixtures(), "  What should I do?  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Question != "What should I do?" {
		t.Fatalf("question not trimmed: %q", resp.Question)
	}
	if len(resp.Quotes) != 1 || resp.Quotes[0].Quote.ID != "q1" || resp.Quotes[0].Relevance != "feeding others" {
		t.Fatalf("unexpected quotes %+v", resp.Quotes)
	}
	if len(resp.Opportunities) != 1 || resp.Opportunities[0].Opportunity.ID != "o1" {
		t.Fatalf("unexpected opportunities %+v", resp.Opportunities)
	}
	if resp.Reflection != "Feed the hungry." {
		t.Fatalf("unexpected reflection %q", resp.Reflection)
	}
}

func TestMatchQuestionRejectsBlank(t *testing.T) {
	llm := failing(errors.New("unused"))
	if _, err := New(llm, zap.NewNop()).MatchQuestion(context.Background(), fixtures(), "   "); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
	if len(llm.calls) != 0 {
		t.Fatal("blank question should not reach the llm")
	}
}
