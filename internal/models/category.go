package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEnum is returned when a value falls outside one of the closed enumerations.
var ErrInvalidEnum = errors.New("invalid enum value")

// AnyValue is the literal callers send to express "no constraint" on an enum filter.
const AnyValue = "any"

type CauseCategory string

const (
	CauseHunger       CauseCategory = "hunger"
	CauseHomelessness CauseCategory = "homelessness"
	CauseEducation    CauseCategory = "education"
	CauseChildren     CauseCategory = "children"
	CauseElderly      CauseCategory = "elderly"
	CauseHealthcare   CauseCategory = "healthcare"
	CausePrison       CauseCategory = "prison"
	CauseEnvironment  CauseCategory = "environment"
	CauseJustice      CauseCategory = "justice"
	CausePeace        CauseCategory = "peace"
	CauseCommunity    CauseCategory = "community"
	CauseFamily       CauseCategory = "family"
	CauseYouth        CauseCategory = "youth"
)

// CauseCategories lists every cause in declaration order.
var CauseCategories = []CauseCategory{
	CauseHunger, CauseHomelessness, CauseEducation, CauseChildren, CauseElderly,
	CauseHealthcare, CausePrison, CauseEnvironment, CauseJustice, CausePeace,
	CauseCommunity, CauseFamily, CauseYouth,
}

func IsCauseCategory(s string) bool {
	for _, c := range CauseCategories {
		if string(c) == s {
			return true
		}
	}
	return false
}

func ParseCauseCategory(s string) (CauseCategory, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if !IsCauseCategory(v) {
		return "", fmt.Errorf("cause category %q: %w", s, ErrInvalidEnum)
	}
	return CauseCategory(v), nil
}

// ValidCauseCategories keeps the values that belong to the enumeration, preserving order.
func ValidCauseCategories(values []string) []CauseCategory {
	out := make([]CauseCategory, 0, len(values))
	for _, v := range values {
		if IsCauseCategory(v) {
			out = append(out, CauseCategory(v))
		}
	}
	return out
}

type TimeCommitment string

const (
	CommitmentOneTime  TimeCommitment = "one-time"
	CommitmentWeekly   TimeCommitment = "weekly"
	CommitmentMonthly  TimeCommitment = "monthly"
	CommitmentSeasonal TimeCommitment = "seasonal"
	CommitmentOngoing  TimeCommitment = "ongoing"
)

var timeCommitments = []TimeCommitment{CommitmentOneTime, CommitmentWeekly, CommitmentMonthly, CommitmentSeasonal, CommitmentOngoing}

func ParseTimeCommitment(s string) (TimeCommitment, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, tc := range timeCommitments {
		if string(tc) == v {
			return tc, nil
		}
	}
	return "", fmt.Errorf("time commitment %q: %w", s, ErrInvalidEnum)
}

type LocationMode string

const (
	ModeRemote LocationMode = "remote"
	ModeLocal  LocationMode = "local"
	ModeHybrid LocationMode = "hybrid"
)

func ParseLocationMode(s string) (LocationMode, error) {
	switch v := LocationMode(strings.ToLower(strings.TrimSpace(s))); v {
	case ModeRemote, ModeLocal, ModeHybrid:
		return v, nil
	}
	return "", fmt.Errorf("location mode %q: %w", s, ErrInvalidEnum)
}

type UrgencyLevel string

const (
	UrgencyImmediate UrgencyLevel = "immediate"
	UrgencyOngoing   UrgencyLevel = "ongoing"
	UrgencySeasonal  UrgencyLevel = "seasonal"
)

func ParseUrgencyLevel(s string) (UrgencyLevel, error) {
	switch v := UrgencyLevel(strings.ToLower(strings.TrimSpace(s))); v {
	case UrgencyImmediate, UrgencyOngoing, UrgencySeasonal:
		return v, nil
	}
	return "", fmt.Errorf("urgency level %q: %w", s, ErrInvalidEnum)
}

type OrganizationType string

const (
	OrgCharity       OrganizationType = "charity"
	OrgChurch        OrganizationType = "church"
	OrgCommunity     OrganizationType = "community"
	OrgEnvironmental OrganizationType = "environmental"
	OrgEducation     OrganizationType = "education"
	OrgHealthcare    OrganizationType = "healthcare"
	OrgAdvocacy      OrganizationType = "advocacy"
	OrgOther         OrganizationType = "other"
)

// NormalizeOrganizationType maps unknown or empty values to OrgOther.
func NormalizeOrganizationType(s string) OrganizationType {
	switch v := OrganizationType(strings.ToLower(strings.TrimSpace(s))); v {
	case OrgCharity, OrgChurch, OrgCommunity, OrgEnvironmental, OrgEducation, OrgHealthcare, OrgAdvocacy:
		return v
	}
	return OrgOther
}
