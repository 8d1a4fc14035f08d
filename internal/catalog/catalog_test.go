package catalog

import (
	"testing"

	"github.com/david/goodworks/internal/bridge"
	"github.com/david/goodworks/internal/models"
)

func TestLoad(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(c.Quotes) == 0 || len(c.Opportunities) == 0 || len(c.Events) != 4 {
		t.Fatalf("unexpected sizes: %d quotes, %d opportunities, %d events", len(c.Quotes), len(c.Opportunities), len(c.Events))
	}
	if c.Events[0].PublishedAt.IsZero() {
		t.Fatal("event timestamps should be decoded")
	}
}

func TestReferencesResolve(t *testing.T) {
	c := MustLoad()

	quoteIDs := make(map[string]bool)
	for _, q := range c.Quotes {
		if quoteIDs[q.ID] {
			t.Fatalf("duplicate quote id %s", q.ID)
		}
		quoteIDs[q.ID] = true
	}
	oppIDs := make(map[string]bool)
	for _, o := range c.Opportunities {
		oppIDs[o.ID] = true
		if len(o.CauseCategories) == 0 {
			t.Errorf("opportunity %s has no cause categories", o.ID)
		}
		for _, id := range o.RelatedQuotes {
			if !quoteIDs[id] {
				t.Errorf("opportunity %s references unknown quote %s", o.ID, id)
			}
		}
	}
	for _, e := range c.Events {
		for _, id := range e.RelatedQuoteIDs {
			if !quoteIDs[id] {
				t.Errorf("event %s references unknown quote %s", e.ID, id)
			}
		}
		for _, id := range e.RelatedOpportunityIDs {
			if !oppIDs[id] {
				t.Errorf("event %s references unknown opportunity %s", e.ID, id)
			}
		}
	}

	// every keyword rule must point at bundled quotes so news fallbacks resolve
	for _, rule := range bridge.KeywordRules {
		for _, id := range rule.QuoteIDs {
			if !quoteIDs[id] {
				t.Errorf("keyword rule %s references unknown quote %s", rule.Category, id)
			}
		}
	}
	if !quoteIDs[bridge.DefaultQuoteID] {
		t.Errorf("default quote %s missing", bridge.DefaultQuoteID)
	}
}

func TestListsAreCopies(t *testing.T) {
	c := MustLoad()
	opps := c.OpportunityList()
	opps[0].ID = "mutated"
	if c.Opportunities[0].ID == "mutated" {
		t.Fatal("OpportunityList must return a copy")
	}
	if got := models.ActiveOnly(c.OpportunityList()); len(got) != len(c.Opportunities)-1 {
		t.Fatalf("expected exactly one inactive listing, got %d active of %d", len(got), len(c.Opportunities))
	}
}
