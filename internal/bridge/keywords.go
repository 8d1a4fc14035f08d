package bridge

import (
	"strings"

	"github.com/david/goodworks/internal/models"
)

const (
	DefaultQuoteID  = "quote-matthew-7-16"
	DefaultCategory = models.CauseCommunity
)

// KeywordRule assigns a category and fallback quotes to news text containing any keyword.
type KeywordRule struct {
	Keywords []string
	Category models.CauseCategory
	QuoteIDs []string
}

// KeywordRules are evaluated in order; the first rule with a matching keyword wins.
var KeywordRules = []KeywordRule{
	{Keywords: []string{"homeless", "shelter", "eviction", "housing"}, Category: models.CauseHomelessness, QuoteIDs: []string{"quote-matthew-25-40"}},
	{Keywords: []string{"hunger", "food bank", "food insecurity", "meal"}, Category: models.CauseHunger, QuoteIDs: []string{"quote-matthew-25-40"}},
	{Keywords: []string{"youth", "children", "school", "student", "education"}, Category: models.CauseEducation, QuoteIDs: []string{"quote-matthew-19-14"}},
	{Keywords: []string{"elder", "senior", "nursing home"}, Category: models.CauseElderly, QuoteIDs: []string{"quote-john-13-34"}},
	{Keywords: []string{"clinic", "hospital", "health", "mental health"}, Category: models.CauseHealthcare, QuoteIDs: []string{"quote-luke-10-9"}},
	{Keywords: []string{"prison", "incarceration", "justice system"}, Category: models.CausePrison, QuoteIDs: []string{"quote-luke-4-18", "quote-matthew-5-7"}},
	{Keywords: []string{"violence", "peace", "conflict", "ceasefire"}, Category: models.CausePeace, QuoteIDs: []string{"quote-matthew-5-9"}},
	{Keywords: []string{"climate", "environment", "wildfire", "flood", "storm"}, Category: models.CauseEnvironment, QuoteIDs: []string{"quote-matthew-5-14"}},
}

// MatchRule returns the first rule whose keywords occur in text, case-insensitively.
func MatchRule(text string) (KeywordRule, bool) {
	lower := strings.ToLower(text)
	for _, rule := range KeywordRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule, true
			}
		}
	}
	return KeywordRule{}, false
}

// Classify returns the category and fallback quote ids for a piece of news
// text, defaulting to community and a general quote when no rule matches.
func Classify(text string) (models.CauseCategory, []string) {
	rule, ok := MatchRule(text)
	if !ok {
		return DefaultCategory, []string{DefaultQuoteID}
	}
	ids := make([]string, len(rule.QuoteIDs))
	copy(ids, rule.QuoteIDs)
	return rule.Category, ids
}
