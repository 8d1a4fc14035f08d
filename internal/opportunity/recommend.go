package opportunity

import (
	"sort"
	"strings"

	"github.com/david/goodworks/internal/models"
)

const DefaultRecommendationCount = 6

const (
	weightQuote    = 3.0
	weightInterest = 2.0
	weightSkill    = 1.5
	weightLocation = 2.0
	weightUrgent   = 1.0
)

// Signal is the per-request preference bundle a caller supplies.
type Signal struct {
	RecentQuoteIDs []string               `json:"recentQuoteIds"`
	Interests      []models.CauseCategory `json:"interests"`
	Skills         []string               `json:"skills"`
	City           string                 `json:"city,omitempty"`
	Region         string                 `json:"region,omitempty"`
}

// Empty reports whether the signal carries no usable hint.
func (s Signal) Empty() bool {
	return len(nonBlank(s.RecentQuoteIDs)) == 0 &&
		len(s.Interests) == 0 &&
		len(nonBlank(s.Skills)) == 0 &&
		strings.TrimSpace(s.City) == "" &&
		strings.TrimSpace(s.Region) == ""
}

type Scored struct {
	models.Opportunity
	Score float64 `json:"score"`
}

// Score computes the additive recommendation score of o against s.
func Score(o models.Opportunity, s Signal) float64 {
	var score float64

	recent := make(map[string]struct{}, len(s.RecentQuoteIDs))
	for _, id := range s.RecentQuoteIDs {
		recent[strings.TrimSpace(id)] = struct{}{}
	}
	for _, id := range o.RelatedQuotes {
		if _, ok := recent[id]; ok {
			score += weightQuote
		}
	}

	for _, c := range o.CauseCategories {
		for _, interest := range s.Interests {
			if c == interest {
				score += weightInterest
				break
			}
		}
	}

	skills := nonBlank(s.Skills)
	for _, needed := range o.SkillsNeeded {
		for _, skill := range skills {
			if containsFold(needed, skill) {
				score += weightSkill
				break
			}
		}
	}

	place := o.Location.City + " " + o.Location.State
	city, region := strings.TrimSpace(s.City), strings.TrimSpace(s.Region)
	if (city != "" && containsFold(place, city)) || (region != "" && containsFold(place, region)) {
		score += weightLocation
	}

	if o.UrgencyLevel == models.UrgencyImmediate {
		score += weightUrgent
	}

	return score
}

// Recommend ranks active opportunities by Score, keeping those with a
// positive score. Ties keep input order. count <= 0 means the default count.
// An empty signal yields no recommendations.
func Recommend(opps []models.Opportunity, s Signal, count int) []Scored {
	if count <= 0 {
		count = DefaultRecommendationCount
	}
	if s.Empty() {
		return []Scored{}
	}

	scored := make([]Scored, 0, len(opps))
	for _, o := range opps {
		if !o.ActiveStatus {
			continue
		}
		if score := Score(o, s); score > 0 {
			scored = append(scored, Scored{Opportunity: o, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > count {
		scored = scored[:count]
	}
	return scored
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
