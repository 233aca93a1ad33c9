package domain

import "time"

// Core entities. Brand is owned by an external directory; Scan, Imposter and
// Report belong to the brand they reference.

type Brand struct {
	ID     string
	Name   string
	Domain string
}

type ScanStatus string

const (
	ScanRunning   ScanStatus = "RUNNING"
	ScanCompleted ScanStatus = "COMPLETED"
	ScanFailed    ScanStatus = "FAILED"
)

func (s ScanStatus) Terminal() bool { return s == ScanCompleted || s == ScanFailed }

type Scan struct {
	ID             string
	BrandID        string
	SearchKeyword  string
	Geolocation    string
	RequestedPages int
	PagesScanned   int
	TotalResults   int64
	ImpostorsFound int
	NewImposters   int
	Errors         []string
	Status         ScanStatus
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// ScanParams are the inputs recorded when a scan starts.
type ScanParams struct {
	SearchKeyword  string
	Geolocation    string
	RequestedPages int
}

// ScanCompletion carries the summary written when a scan finishes.
type ScanCompletion struct {
	PagesScanned     int
	TotalResults     int64
	ImpostorsFound   int
	NewImposters     int
	Errors           []string
	AnyPageSucceeded bool
}

// OrganicResult is one ranked organic entry returned by a search provider.
// Rank is 1-based across the whole query, not per page.
type OrganicResult struct {
	URL         string
	Name        string
	Description string
	Rank        int
}

// Candidate is a classified, deduplicated domain emitted by the analyzer.
type Candidate struct {
	Domain        string
	FullURL       string
	PageTitle     string
	Description   string
	SearchRank    int
	DetectionRule string
}

type ImposterSource string

const (
	SourceGoogleSearch ImposterSource = "GOOGLE_SEARCH"
	SourceManual       ImposterSource = "MANUAL"
)

type Imposter struct {
	ID              string
	BrandID         string
	Domain          string
	FullURL         string
	PageTitle       string
	PageDescription string
	SearchRank      *int // rank at first detection; nil for manual entries
	LastRank        *int
	DetectionRule   string
	Source          ImposterSource
	Status          ImposterStatus
	ReviewNotes     string
	DetectedAt      time.Time
	LastSeenAt      *time.Time
	ConfirmedAt     *time.Time
	ResolvedAt      *time.Time
	ReviewedBy      *string
	AddedBy         *string // operator who entered a MANUAL imposter

	Reports []Report
}

// ReportCount is the number of channels with a tracked report row.
func (i Imposter) ReportCount() int { return len(i.Reports) }

type Report struct {
	ID               string
	ImposterID       string
	ReportType       ReportType
	Status           ReportStatus
	ReportedAt       *time.Time
	LastFollowUpAt   *time.Time
	FollowUpCount    int
	ResponseReceived bool
	TicketNumber     string
	Notes            string
	ReportedBy       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
