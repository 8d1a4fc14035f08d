package models

import (
	"time"

	"github.com/google/uuid"
)

type CurrentEvent struct {
	ID                    string        `json:"id" yaml:"id"`
	Headline              string        `json:"headline" yaml:"headline"`
	Summary               string        `json:"summary" yaml:"summary"`
	Category              CauseCategory `json:"category" yaml:"category"`
	Region                string        `json:"region" yaml:"region"`
	Source                string        `json:"source,omitempty" yaml:"source"`
	URL                   string        `json:"url,omitempty" yaml:"url"`
	PublishedAt           time.Time     `json:"published_at" yaml:"published_at"`
	RelatedQuoteIDs       []string      `json:"related_quote_ids" yaml:"related_quote_ids"`
	RelatedOpportunityIDs []string      `json:"related_opportunity_ids" yaml:"related_opportunity_ids"`
}

// Interest is a single "I want to help" expression recorded against an opportunity.
type Interest struct {
	ID            uuid.UUID      `json:"id"`
	OpportunityID string         `json:"opportunity_id"`
	UserID        string         `json:"user_id,omitempty"`
	UserEmail     string         `json:"user_email,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Metadata is the JSON document stored alongside the interest row.
func (i Interest) Metadata() map[string]any {
	meta := make(map[string]any, len(i.Context)+1)
	for k, v := range i.Context {
		meta[k] = v
	}
	if i.UserEmail != "" {
		meta["userEmail"] = i.UserEmail
	}
	return meta
}
