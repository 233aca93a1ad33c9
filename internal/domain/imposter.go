package domain

import (
	"strings"
	"time"
)

type ImposterStatus string

const (
	StatusSuspected     ImposterStatus = "SUSPECTED"
	StatusConfirmed     ImposterStatus = "CONFIRMED"
	StatusFalsePositive ImposterStatus = "FALSE_POSITIVE"
	StatusResolved      ImposterStatus = "RESOLVED"
)

// Allowed moves. Terminal states have no outgoing edges.
var imposterTransitions = map[ImposterStatus][]ImposterStatus{
	StatusSuspected: {StatusConfirmed, StatusFalsePositive},
	StatusConfirmed: {StatusResolved},
}

func ParseImposterStatus(s string) (ImposterStatus, error) {
	st := ImposterStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusSuspected, StatusConfirmed, StatusFalsePositive, StatusResolved:
		return st, nil
	}
	return "", Invalid("unknown imposter status %q", s)
}

func (s ImposterStatus) Terminal() bool {
	return s == StatusFalsePositive || s == StatusResolved
}

func (s ImposterStatus) CanTransitionTo(next ImposterStatus) bool {
	for _, allowed := range imposterTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition applies an operator status change. On error the imposter is
// left untouched.
func (i *Imposter) Transition(next ImposterStatus, actor string, now time.Time) error {
	if !i.Status.CanTransitionTo(next) {
		return &TransitionError{From: i.Status, To: next}
	}
	i.Status = next
	switch next {
	case StatusConfirmed:
		i.ConfirmedAt = &now
	case StatusResolved:
		i.ResolvedAt = &now
	}
	if actor != "" {
		a := actor
		i.ReviewedBy = &a
	}
	return nil
}

// Refresh updates the volatile descriptive fields from a rescan hit. Status,
// detection time and first-detection rank are never touched.
func (i *Imposter) Refresh(c Candidate, now time.Time) {
	if c.FullURL != "" {
		i.FullURL = c.FullURL
	}
	if c.PageTitle != "" {
		i.PageTitle = c.PageTitle
	}
	if c.Description != "" {
		i.PageDescription = c.Description
	}
	if c.SearchRank > 0 {
		r := c.SearchRank
		i.LastRank = &r
	}
	i.LastSeenAt = &now
}

// NewDetectedImposter builds the SUSPECTED row for a first-time search hit.
func NewDetectedImposter(brandID string, c Candidate, now time.Time) Imposter {
	imp := Imposter{
		BrandID:         brandID,
		Domain:          c.Domain,
		FullURL:         c.FullURL,
		PageTitle:       c.PageTitle,
		PageDescription: c.Description,
		DetectionRule:   c.DetectionRule,
		Source:          SourceGoogleSearch,
		Status:          StatusSuspected,
		DetectedAt:      now,
		LastSeenAt:      &now,
	}
	if c.SearchRank > 0 {
		first, last := c.SearchRank, c.SearchRank
		imp.SearchRank = &first
		imp.LastRank = &last
	}
	return imp
}
