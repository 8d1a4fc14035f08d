package opportunity

import (
	"reflect"
	"testing"

	"github.com/david/goodworks/internal/models"
)

func fixtures() []models.Opportunity {
	return []models.Opportunity{
		{
			ID: "shelter", Title: "Shelter Host", OrganizationName: "Mission", Description: "Overnight host",
			TimeCommitment: models.CommitmentWeekly, UrgencyLevel: models.UrgencyImmediate,
			Location:        models.Location{City: "Chicago", State: "IL", Country: "USA", Mode: models.ModeLocal},
			SkillsNeeded:    []string{"Hospitality", "Conflict de-escalation"},
			CauseCategories: []models.CauseCategory{models.CauseHomelessness, models.CauseHunger},
			RelatedQuotes:   []string{"q1"},
			ActiveStatus:    true,
		},
		{
			ID: "tutor", Title: "Reading Tutor", OrganizationName: "ReadUp", Description: "Virtual tutoring",
			TimeCommitment: models.CommitmentWeekly, UrgencyLevel: models.UrgencyOngoing,
			Location:        models.Location{Country: "USA", Mode: models.ModeRemote},
			SkillsNeeded:    []string{"tutoring", "reading instruction"},
			CauseCategories: []models.CauseCategory{models.CauseEducation, models.CauseChildren},
			HighlightReason: "600 open slots",
			ActiveStatus:    true,
		},
		{
			ID: "cleanup", Title: "Beach Cleanup", OrganizationName: "Keepers", Description: "Remove plastic",
			TimeCommitment: models.CommitmentSeasonal, UrgencyLevel: models.UrgencySeasonal,
			Location:        models.Location{City: "Seattle", State: "WA", Country: "USA", Mode: models.ModeLocal},
			SkillsNeeded:    []string{"outdoor work", "data logging"},
			CauseCategories: []models.CauseCategory{models.CauseEnvironment},
			ActiveStatus:    true,
		},
		{
			ID: "closed", Title: "Holiday Supper", OrganizationName: "Harvest", Description: "Serve plates",
			TimeCommitment: models.CommitmentOneTime, UrgencyLevel: models.UrgencyImmediate,
			Location:        models.Location{City: "Chicago", State: "IL", Mode: models.ModeLocal},
			SkillsNeeded:    []string{"food service"},
			CauseCategories: []models.CauseCategory{models.CauseHunger},
			ActiveStatus:    false,
		},
	}
}

func ids(opps []models.Opportunity) []string {
	out := []string{}
	for _, o := range opps {
		out = append(out, o.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{name: "no options returns active only", opts: FilterOptions{}, want: []string{"shelter", "tutor", "cleanup"}},
		{name: "location matches city case-insensitively", opts: FilterOptions{Location: "chicago"}, want: []string{"shelter"}},
		{name: "location matches mode", opts: FilterOptions{Location: "remote"}, want: []string{"tutor"}},
		{name: "single cause", opts: FilterOptions{Causes: []models.CauseCategory{models.CauseHunger}}, want: []string{"shelter"}},
		{name: "cause list is a union", opts: FilterOptions{Causes: []models.CauseCategory{models.CauseEnvironment, models.CauseChildren}}, want: []string{"tutor", "cleanup"}},
		{name: "time commitment", opts: FilterOptions{TimeCommitment: models.CommitmentWeekly}, want: []string{"shelter", "tutor"}},
		{name: "any literal is no constraint", opts: FilterOptions{TimeCommitment: models.AnyValue, Urgency: models.AnyValue, Mode: models.AnyValue}, want: []string{"shelter", "tutor", "cleanup"}},
		{name: "mode", opts: FilterOptions{Mode: models.ModeLocal}, want: []string{"shelter", "cleanup"}},
		{name: "urgency", opts: FilterOptions{Urgency: models.UrgencyImmediate}, want: []string{"shelter"}},
		{name: "skills are AND across requested skills", opts: FilterOptions{Skills: []string{"outdoor", "DATA"}}, want: []string{"cleanup"}},
		{name: "skills with no match", opts: FilterOptions{Skills: []string{"outdoor", "tutoring"}}, want: []string{}},
		{name: "search covers highlight reason", opts: FilterOptions{Search: "open SLOTS"}, want: []string{"tutor"}},
		{name: "search covers organization", opts: FilterOptions{Search: "keepers"}, want: []string{"cleanup"}},
		{name: "featured only", opts: FilterOptions{FeaturedOnly: true}, want: []string{"shelter", "tutor"}},
		{name: "impossible combination is empty", opts: FilterOptions{Causes: []models.CauseCategory{models.CausePrison}}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(fixtures(), tt.opts))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterResultsSatisfyPredicates(t *testing.T) {
	opts := FilterOptions{Location: "usa", Skills: []string{"o"}, Limit: Limit(Unlimited)}
	for _, o := range Filter(fixtures(), opts) {
		if !o.ActiveStatus {
			t.Fatalf("inactive opportunity %s returned", o.ID)
		}
		if !Matches(o, opts) {
			t.Fatalf("%s does not satisfy the options", o.ID)
		}
	}
}

func TestFilterPagination(t *testing.T) {
	all := Filter(fixtures(), FilterOptions{Limit: Limit(Unlimited)})
	for limit := 0; limit <= 4; limit++ {
		for offset := 0; offset <= 4; offset++ {
			got := Filter(fixtures(), FilterOptions{Limit: Limit(limit), Offset: offset})

			start := min(offset, len(all))
			end := min(offset+limit, len(all))
			want := all[start:end]
			if !reflect.DeepEqual(ids(got), ids(want)) {
				t.Fatalf("limit=%d offset=%d: got %v, want %v", limit, offset, ids(got), ids(want))
			}
		}
	}
}

func TestFilterDefaultLimit(t *testing.T) {
	many := make([]models.Opportunity, 60)
	for i := range many {
		many[i] = models.Opportunity{ID: string(rune('A' + i%26)), ActiveStatus: true}
	}
	if got := Filter(many, FilterOptions{}); len(got) != DefaultLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultLimit, len(got))
	}
}

func TestEndToEndScenario(t *testing.T) {
	opps := []models.Opportunity{
		{ID: "a", CauseCategories: []models.CauseCategory{models.CauseHunger}, UrgencyLevel: models.UrgencyImmediate, ActiveStatus: true},
		{ID: "b", CauseCategories: []models.CauseCategory{models.CauseJustice}, UrgencyLevel: models.UrgencyOngoing, ActiveStatus: true},
	}

	if got := ids(Filter(opps, FilterOptions{Causes: []models.CauseCategory{models.CauseHunger}})); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("cause filter: got %v", got)
	}
	if got := ids(Filter(opps, FilterOptions{Urgency: models.UrgencyImmediate})); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("urgency filter: got %v", got)
	}

	recs := Recommend(opps, Signal{Interests: []models.CauseCategory{models.CauseHunger}}, 0)
	if len(recs) != 1 || recs[0].ID != "a" || recs[0].Score != 3 {
		t.Fatalf("unexpected recommendations: %+v", recs)
	}
}
