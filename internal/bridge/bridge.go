// Package bridge connects quotes, current events and opportunities through
// shared cause categories when no explicit relation exists between them.
package bridge

import (
	"strings"

	"github.com/david/goodworks/internal/models"
)

var themeCategories = map[string][]models.CauseCategory{
	"hunger":       {models.CauseHunger, models.CauseHomelessness},
	"peace":        {models.CausePeace, models.CauseJustice, models.CauseCommunity},
	"children":     {models.CauseChildren, models.CauseEducation, models.CauseYouth},
	"education":    {models.CauseEducation, models.CauseYouth, models.CauseChildren},
	"healthcare":   {models.CauseHealthcare, models.CauseFamily},
	"homelessness": {models.CauseHomelessness, models.CauseHunger},
	"community":    {models.CauseCommunity, models.CauseFamily},
	"family":       {models.CauseFamily, models.CauseCommunity, models.CauseHealthcare},
	"healing":      {models.CauseHealthcare, models.CauseFamily},
	"mercy":        {models.CausePrison, models.CauseJustice, models.CauseCommunity},
	"environment":  {models.CauseEnvironment, models.CauseCommunity},
	"justice":      {models.CauseJustice, models.CausePeace},
	"hope":         {models.CauseHealthcare, models.CauseFamily, models.CauseCommunity},
	"faith":        {models.CauseCommunity, models.CauseFamily, models.CauseEducation},
}

// CategoriesForTheme returns a copy of the categories mapped to theme, or nil
// when the theme is unknown.
func CategoriesForTheme(theme string) []models.CauseCategory {
	cats, ok := themeCategories[strings.ToLower(strings.TrimSpace(theme))]
	if !ok {
		return nil
	}
	out := make([]models.CauseCategory, len(cats))
	copy(out, cats)
	return out
}

// ExpandQuotes collects the categories reachable from the quotes' themes and
// from tags that are themselves cause categories. The result is deduplicated
// and keeps first-seen order.
func ExpandQuotes(quotes []models.Quote) []models.CauseCategory {
	seen := make(map[models.CauseCategory]struct{})
	var out []models.CauseCategory
	add := func(c models.CauseCategory) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}

	for _, q := range quotes {
		for _, c := range CategoriesForTheme(q.Theme) {
			add(c)
		}
		for _, c := range models.ValidCauseCategories(q.Tags) {
			add(c)
		}
	}
	return out
}
