package models

import (
	"errors"
	"testing"
)

func TestParseCauseCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    CauseCategory
		wantErr bool
	}{
		{in: "hunger", want: CauseHunger},
		{in: "  Youth ", want: CauseYouth},
		{in: "mercy", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCauseCategory(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEnum) {
					t.Fatalf("expected ErrInvalidEnum, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCauseCategoriesClosedSet(t *testing.T) {
	if len(CauseCategories) != 13 {
		t.Fatalf("expected 13 cause categories, got %d", len(CauseCategories))
	}
	got := ValidCauseCategories([]string{"peace", "faith", "family", "Hunger"})
	if len(got) != 2 || got[0] != CausePeace || got[1] != CauseFamily {
		t.Fatalf("unexpected valid categories: %v", got)
	}
}

func TestOpportunityIsFeatured(t *testing.T) {
	if !(Opportunity{UrgencyLevel: UrgencyImmediate}).IsFeatured() {
		t.Fatal("immediate urgency should be featured")
	}
	if !(Opportunity{UrgencyLevel: UrgencyOngoing, HighlightReason: "Staff pick"}).IsFeatured() {
		t.Fatal("highlight reason should make an opportunity featured")
	}
	if (Opportunity{UrgencyLevel: UrgencySeasonal, HighlightReason: "   "}).IsFeatured() {
		t.Fatal("blank highlight reason must not count")
	}
}

func TestQuotesByIDKeepsRequestedOrder(t *testing.T) {
	quotes := []Quote{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := QuotesByID(quotes, []string{"c", "missing", "a"})
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("unexpected quotes: %+v", got)
	}
}

func TestInterestMetadata(t *testing.T) {
	i := Interest{UserEmail: "ann@example.org", Context: map[string]any{"source": "event"}}
	meta := i.Metadata()
	if meta["userEmail"] != "ann@example.org" || meta["source"] != "event" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
	if _, ok := i.Context["userEmail"]; ok {
		t.Fatal("metadata must not mutate context")
	}
}
