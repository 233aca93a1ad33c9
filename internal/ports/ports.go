package ports

import (
	"context"

	"brandguard/internal/domain"
)

// ScanRequest is an operator's trigger-scan call.
type ScanRequest struct {
	BrandID     string
	Keyword     string // defaults to the brand name
	Geolocation string
	PageCount   int
}

// ScanSummary is what a finished scan hands back to the operator.
type ScanSummary struct {
	Scan       domain.Scan
	Candidates []domain.Candidate
	Errors     []string
}

// Scanner triggers scans and reads their audit records.
type Scanner interface {
	Trigger(ctx context.Context, req ScanRequest) (ScanSummary, error)
	GetScan(ctx context.Context, scanID string) (domain.Scan, error)
	ListScans(ctx context.Context, brandID string) ([]domain.Scan, error)
}

// Lifecycle is the operator side of imposter and report tracking.
type Lifecycle interface {
	ListImposters(ctx context.Context, brandID string, status *domain.ImposterStatus) ([]domain.Imposter, error)
	AddManualImposter(ctx context.Context, brandID, rawDomain, notes, actingUser string) (domain.Imposter, error)
	TransitionImposterStatus(ctx context.Context, imposterID string, next domain.ImposterStatus, actingUser string) (domain.Imposter, error)
	UpsertReportStatus(ctx context.Context, imposterID string, rt domain.ReportType, u domain.ReportUpdate) (domain.Report, error)
}

// Brands exposes the brand directory to operators.
type Brands interface {
	Get(ctx context.Context, brandID string) (domain.Brand, error)
	Register(ctx context.Context, name, rawDomain string) (domain.Brand, error)
	List(ctx context.Context) ([]domain.Brand, error)
}
