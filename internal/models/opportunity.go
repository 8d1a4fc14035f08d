package models

import (
	"strings"
	"time"
)

type Location struct {
	City    string       `json:"city,omitempty" yaml:"city"`
	State   string       `json:"state,omitempty" yaml:"state"`
	Country string       `json:"country,omitempty" yaml:"country"`
	Mode    LocationMode `json:"mode" yaml:"mode"`
}

type ContactInfo struct {
	Name         string `json:"name,omitempty" yaml:"name"`
	Email        string `json:"email,omitempty" yaml:"email"`
	Phone        string `json:"phone,omitempty" yaml:"phone"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions"`
}

type Opportunity struct {
	ID               string           `json:"id" yaml:"id"`
	OrganizationName string           `json:"organization_name" yaml:"organization_name"`
	OrganizationType OrganizationType `json:"organization_type" yaml:"organization_type"`
	Title            string           `json:"opportunity_title" yaml:"opportunity_title"`
	Description      string           `json:"description" yaml:"description"`
	TimeCommitment   TimeCommitment   `json:"time_commitment" yaml:"time_commitment"`
	Location         Location         `json:"location" yaml:"location"`
	SkillsNeeded     []string         `json:"skills_needed" yaml:"skills_needed"`
	CauseCategories  []CauseCategory  `json:"cause_categories" yaml:"cause_categories"`
	RelatedQuotes    []string         `json:"related_quotes" yaml:"related_quotes"`
	UrgencyLevel     UrgencyLevel     `json:"urgency_level" yaml:"urgency_level"`
	ContactInfo      ContactInfo      `json:"contact_info" yaml:"contact_info"`
	WebsiteURL       string           `json:"website_url,omitempty" yaml:"website_url"`
	ApplicationURL   string           `json:"application_url,omitempty" yaml:"application_url"`
	VerifiedStatus   bool             `json:"verified_status" yaml:"verified_status"`
	ActiveStatus     bool             `json:"active_status" yaml:"active_status"`
	ImageURL         string           `json:"image_url,omitempty" yaml:"image_url"`
	HighlightReason  string           `json:"highlight_reason,omitempty" yaml:"highlight_reason"`
	DateAdded        time.Time        `json:"date_added" yaml:"date_added"`
}

// IsFeatured reports whether the listing qualifies for featured placement.
func (o Opportunity) IsFeatured() bool {
	return o.UrgencyLevel == UrgencyImmediate || strings.TrimSpace(o.HighlightReason) != ""
}

// HasCause reports whether any of the given causes is among the opportunity's categories.
func (o Opportunity) HasCause(causes ...CauseCategory) bool {
	for _, have := range o.CauseCategories {
		for _, want := range causes {
			if have == want {
				return true
			}
		}
	}
	return false
}

// ActiveOnly returns the active opportunities in their original order.
func ActiveOnly(opps []Opportunity) []Opportunity {
	out := make([]Opportunity, 0, len(opps))
	for _, o := range opps {
		if o.ActiveStatus {
			out = append(out, o)
		}
	}
	return out
}
