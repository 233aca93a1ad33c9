package ports

import (
	"context"
	"time"

	"brandguard/internal/domain"
)

// BrandDirectory resolves the brand a scan or imposter belongs to.
type BrandDirectory interface {
	GetBrand(ctx context.Context, brandID string) (domain.Brand, error)
}

// BrandRegistry is the write side of the directory used by operator tooling.
type BrandRegistry interface {
	BrandDirectory
	CreateBrand(ctx context.Context, name, registrable string) (domain.Brand, error)
	ListBrands(ctx context.Context) ([]domain.Brand, error)
}

// ScanRepository stores the audit record of each scan. Terminal scans are
// immutable; CompleteScan on a finished scan is a no-op.
type ScanRepository interface {
	CreateScan(ctx context.Context, brandID string, params domain.ScanParams, now time.Time) (scanID string, err error)
	CompleteScan(ctx context.Context, scanID string, status domain.ScanStatus, c domain.ScanCompletion, now time.Time) error
	GetScan(ctx context.Context, scanID string) (domain.Scan, error)
	ListScans(ctx context.Context, brandID string) ([]domain.Scan, error)
}

// ImposterRepository persists imposters keyed by (brandID, domain).
type ImposterRepository interface {
	// UpsertDetected inserts a SUSPECTED row or refreshes the descriptive
	// fields of the existing one, atomically under the unique key.
	UpsertDetected(ctx context.Context, brandID string, c domain.Candidate, now time.Time) (imp domain.Imposter, created bool, err error)
	// InsertManual fails with domain.ErrDuplicateDomain on collision.
	InsertManual(ctx context.Context, imp domain.Imposter) (domain.Imposter, error)
	// UpdateImposter loads the row, applies fn and saves the result; nothing
	// is written when fn fails.
	UpdateImposter(ctx context.Context, imposterID string, fn func(*domain.Imposter) error) (domain.Imposter, error)
	GetImposter(ctx context.Context, imposterID string) (domain.Imposter, error)
	// ListImposters returns imposters with their reports, newest first.
	ListImposters(ctx context.Context, brandID string, status *domain.ImposterStatus) ([]domain.Imposter, error)
}

// ReportRepository persists one report row per (imposterID, reportType).
type ReportRepository interface {
	// UpdateReport materialises the row on first use and applies fn under a
	// row lock. created tells fn whether the row is new.
	UpdateReport(ctx context.Context, imposterID string, rt domain.ReportType, fn func(r *domain.Report, created bool) error) (domain.Report, error)
}

// Store is the full persistence capability.
type Store interface {
	BrandRegistry
	ScanRepository
	ImposterRepository
	ReportRepository
}
