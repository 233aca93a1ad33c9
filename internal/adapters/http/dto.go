package httpadapter

import (
	"time"

	"brandguard/internal/domain"
	"brandguard/internal/ports"
)

// Wire shapes; they mirror the schemas in api/openapi.yaml.

type brandJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type createBrandRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

type scanJSON struct {
	ID             string     `json:"id"`
	BrandID        string     `json:"brandId"`
	SearchKeyword  string     `json:"searchKeyword"`
	Geolocation    string     `json:"geolocation"`
	RequestedPages int        `json:"requestedPages"`
	PagesScanned   int        `json:"pagesScanned"`
	TotalResults   int64      `json:"totalResults"`
	ImpostorsFound int        `json:"impostorsFound"`
	NewImposters   int        `json:"newImposters"`
	Errors         []string   `json:"errors"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

type candidateJSON struct {
	Domain        string `json:"domain"`
	FullURL       string `json:"fullUrl"`
	PageTitle     string `json:"pageTitle"`
	Description   string `json:"description"`
	SearchRank    int    `json:"searchRank"`
	DetectionRule string `json:"detectionRule"`
}

type triggerScanRequest struct {
	Keyword     string `json:"keyword"`
	Geolocation string `json:"geolocation"`
	PageCount   int    `json:"pageCount"`
}

type scanSummaryJSON struct {
	Scan       scanJSON        `json:"scan"`
	Candidates []candidateJSON `json:"candidates"`
	Errors     []string        `json:"errors"`
}

type reportJSON struct {
	ID               string     `json:"id"`
	ReportType       string     `json:"reportType"`
	Status           string     `json:"status"`
	ReportedAt       *time.Time `json:"reportedAt,omitempty"`
	LastFollowUpAt   *time.Time `json:"lastFollowUpAt,omitempty"`
	FollowUpCount    int        `json:"followUpCount"`
	ResponseReceived bool       `json:"responseReceived"`
	TicketNumber     string     `json:"ticketNumber,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	ReportedBy       *string    `json:"reportedBy,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type imposterJSON struct {
	ID              string       `json:"id"`
	BrandID         string       `json:"brandId"`
	Domain          string       `json:"domain"`
	FullURL         string       `json:"fullUrl,omitempty"`
	PageTitle       string       `json:"pageTitle,omitempty"`
	PageDescription string       `json:"pageDescription,omitempty"`
	SearchRank      *int         `json:"searchRank,omitempty"`
	LastRank        *int         `json:"lastRank,omitempty"`
	DetectionRule   string       `json:"detectionRule,omitempty"`
	Source          string       `json:"source"`
	Status          string       `json:"status"`
	ReviewNotes     string       `json:"reviewNotes,omitempty"`
	DetectedAt      time.Time    `json:"detectedAt"`
	LastSeenAt      *time.Time   `json:"lastSeenAt,omitempty"`
	ConfirmedAt     *time.Time   `json:"confirmedAt,omitempty"`
	ResolvedAt      *time.Time   `json:"resolvedAt,omitempty"`
	ReviewedBy      *string      `json:"reviewedBy,omitempty"`
	AddedBy         *string      `json:"addedBy,omitempty"`
	ReportCount     int          `json:"reportCount"`
	Reports         []reportJSON `json:"reports"`
}

type addImposterRequest struct {
	Domain string `json:"domain"`
	Notes  string `json:"notes"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

type reportUpdateRequest struct {
	Status           string  `json:"status"`
	TicketNumber     *string `json:"ticketNumber"`
	Notes            *string `json:"notes"`
	ResponseReceived *bool   `json:"responseReceived"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func toBrand(b domain.Brand) brandJSON { return brandJSON{ID: b.ID, Name: b.Name, Domain: b.Domain} }

func toScan(s domain.Scan) scanJSON {
	errs := s.Errors
	if errs == nil {
		errs = []string{}
	}
	return scanJSON{
		ID:             s.ID,
		BrandID:        s.BrandID,
		SearchKeyword:  s.SearchKeyword,
		Geolocation:    s.Geolocation,
		RequestedPages: s.RequestedPages,
		PagesScanned:   s.PagesScanned,
		TotalResults:   s.TotalResults,
		ImpostorsFound: s.ImpostorsFound,
		NewImposters:   s.NewImposters,
		Errors:         errs,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		CompletedAt:    s.CompletedAt,
	}
}

func toSummary(s ports.ScanSummary) scanSummaryJSON {
	out := scanSummaryJSON{Scan: toScan(s.Scan), Candidates: make([]candidateJSON, 0, len(s.Candidates)), Errors: s.Errors}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	for _, c := range s.Candidates {
		out.Candidates = append(out.Candidates, candidateJSON(c))
	}
	return out
}

func toReport(r domain.Report) reportJSON {
	return reportJSON{
		ID:               r.ID,
		ReportType:       string(r.ReportType),
		Status:           string(r.Status),
		ReportedAt:       r.ReportedAt,
		LastFollowUpAt:   r.LastFollowUpAt,
		FollowUpCount:    r.FollowUpCount,
		ResponseReceived: r.ResponseReceived,
		TicketNumber:     r.TicketNumber,
		Notes:            r.Notes,
		ReportedBy:       r.ReportedBy,
		UpdatedAt:        r.UpdatedAt,
	}
}

func toImposter(i domain.Imposter) imposterJSON {
	out := imposterJSON{
		ID:              i.ID,
		BrandID:         i.BrandID,
		Domain:          i.Domain,
		FullURL:         i.FullURL,
		PageTitle:       i.PageTitle,
		PageDescription: i.PageDescription,
		SearchRank:      i.SearchRank,
		LastRank:        i.LastRank,
		DetectionRule:   i.DetectionRule,
		Source:          string(i.Source),
		Status:          string(i.Status),
		ReviewNotes:     i.ReviewNotes,
		DetectedAt:      i.DetectedAt,
		LastSeenAt:      i.LastSeenAt,
		ConfirmedAt:     i.ConfirmedAt,
		ResolvedAt:      i.ResolvedAt,
		ReviewedBy:      i.ReviewedBy,
		AddedBy:         i.AddedBy,
		ReportCount:     i.ReportCount(),
		Reports:         make([]reportJSON, 0, len(i.Reports)),
	}
	for _, r := range i.Reports {
		out.Reports = append(out.Reports, toReport(r))
	}
	return out
}
