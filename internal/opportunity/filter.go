package opportunity

import (
	"strings"

	"github.com/david/goodworks/internal/models"
)

const DefaultLimit = 50

// FilterOptions narrows the opportunity list. Zero values mean "no constraint";
// enum fields also accept models.AnyValue. A nil Limit means DefaultLimit.
type FilterOptions struct {
	Location       string
	Causes         []models.CauseCategory
	TimeCommitment models.TimeCommitment
	Mode           models.LocationMode
	Urgency        models.UrgencyLevel
	Skills         []string
	Search         string
	FeaturedOnly   bool
	Limit          *int
	Offset         int
}

// Limit returns a pointer suitable for FilterOptions.Limit.
func Limit(n int) *int {
	return &n
}

// Unlimited disables pagination limits.
const Unlimited = -1

func (f FilterOptions) limit() int {
	if f.Limit == nil {
		return DefaultLimit
	}
	return *f.Limit
}

// Filter returns the active opportunities matching every predicate in opts,
// in input order, paginated by Limit and Offset.
func Filter(opps []models.Opportunity, opts FilterOptions) []models.Opportunity {
	matched := make([]models.Opportunity, 0, len(opps))
	for _, o := range opps {
		if Matches(o, opts) {
			matched = append(matched, o)
		}
	}
	return paginate(matched, opts.Offset, opts.limit())
}

// Matches reports whether a single opportunity passes every predicate.
// Inactive opportunities never match.
func Matches(o models.Opportunity, opts FilterOptions) bool {
	if !o.ActiveStatus {
		return false
	}

	if loc := strings.TrimSpace(opts.Location); loc != "" {
		if !containsFold(locationText(o), loc) {
			return false
		}
	}

	if len(opts.Causes) > 0 && !o.HasCause(opts.Causes...) {
		return false
	}

	if constrained(string(opts.TimeCommitment)) && o.TimeCommitment != opts.TimeCommitment {
		return false
	}
	if constrained(string(opts.Mode)) && o.Location.Mode != opts.Mode {
		return false
	}
	if constrained(string(opts.Urgency)) && o.UrgencyLevel != opts.Urgency {
		return false
	}

	for _, skill := range opts.Skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if !anyContainsFold(o.SkillsNeeded, skill) {
			return false
		}
	}

	if q := strings.TrimSpace(opts.Search); q != "" {
		haystack := strings.Join([]string{o.Title, o.Description, o.OrganizationName, o.HighlightReason}, " ")
		if !containsFold(haystack, q) {
			return false
		}
	}

	if opts.FeaturedOnly && !o.IsFeatured() {
		return false
	}

	return true
}

func constrained(v string) bool {
	return v != "" && v != models.AnyValue
}

func locationText(o models.Opportunity) string {
	return strings.Join([]string{o.Location.City, o.Location.State, o.Location.Country, string(o.Location.Mode)}, " ")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyContainsFold(values []string, needle string) bool {
	for _, v := range values {
		if containsFold(v, needle) {
			return true
		}
	}
	return false
}

func paginate(opps []models.Opportunity, offset, limit int) []models.Opportunity {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(opps) {
		return []models.Opportunity{}
	}
	end := len(opps)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return opps[offset:end]
}
