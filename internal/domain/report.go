package domain

import (
	"strings"
	"time"
)

type ReportType string

const (
	ReportCloudflare      ReportType = "CLOUDFLARE"
	ReportHosting         ReportType = "HOSTING"
	ReportGoogleLegal     ReportType = "GOOGLE_LEGAL"
	ReportGoogleCopyright ReportType = "GOOGLE_COPYRIGHT"
	ReportDomainRegistrar ReportType = "DOMAIN_REGISTRAR"
	ReportDomainOwner     ReportType = "DOMAIN_OWNER"
)

// ReportTypes lists every takedown channel in display order.
var ReportTypes = []ReportType{
	ReportCloudflare,
	ReportHosting,
	ReportGoogleLegal,
	ReportGoogleCopyright,
	ReportDomainRegistrar,
	ReportDomainOwner,
}

type ReportStatus string

const (
	ReportNotReported ReportStatus = "NOT_REPORTED"
	ReportPending     ReportStatus = "PENDING"
	ReportInProgress  ReportStatus = "IN_PROGRESS"
	ReportResolved    ReportStatus = "RESOLVED"
	ReportRejected    ReportStatus = "REJECTED"
	ReportNoResponse  ReportStatus = "NO_RESPONSE"
)

func ParseReportType(s string) (ReportType, error) {
	rt := ReportType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ReportTypes {
		if rt == known {
			return rt, nil
		}
	}
	return "", Invalid("unknown report type %q", s)
}

func ParseReportStatus(s string) (ReportStatus, error) {
	st := ReportStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case ReportNotReported, ReportPending, ReportInProgress, ReportResolved, ReportRejected, ReportNoResponse:
		return st, nil
	}
	return "", Invalid("unknown report status %q", s)
}

// ReportUpdate is an operator's status change for one channel. Nil fields are
// left as they are.
type ReportUpdate struct {
	Status           ReportStatus
	TicketNumber     *string
	Notes            *string
	ResponseReceived *bool
	ReportedBy       string
}

// Apply records u against r. created is true when r was just materialised for
// this call. Follow-ups are counted, never reset: every real status change
// bumps FollowUpCount except the initial NOT_REPORTED -> PENDING filing.
func (r *Report) Apply(u ReportUpdate, created bool, now time.Time) {
	prev := r.Status
	initialFiling := r.ReportedAt == nil && prev == ReportNotReported && u.Status == ReportPending
	if created {
		r.CreatedAt = now
	} else if u.Status != prev && !initialFiling {
		r.FollowUpCount++
		r.LastFollowUpAt = &now
	}
	r.Status = u.Status
	if r.ReportedAt == nil && u.Status != ReportNotReported {
		r.ReportedAt = &now
	}
	if u.TicketNumber != nil {
		r.TicketNumber = *u.TicketNumber
	}
	if u.Notes != nil {
		r.Notes = *u.Notes
	}
	if u.ResponseReceived != nil {
		r.ResponseReceived = *u.ResponseReceived
	}
	if u.ReportedBy != "" {
		by := u.ReportedBy
		r.ReportedBy = &by
	}
	r.UpdatedAt = now
}
