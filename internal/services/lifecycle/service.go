// Package lifecycle owns every state change of scans, imposters and their
// takedown reports.
package lifecycle

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"brandguard/internal/domain"
	"brandguard/internal/domainname"
	"brandguard/internal/ports"
)

type Service struct {
	brands    ports.BrandDirectory
	scans     ports.ScanRepository
	imposters ports.ImposterRepository
	reports   ports.ReportRepository
	now       func() time.Time
}

func New(brands ports.BrandDirectory, scans ports.ScanRepository, imposters ports.ImposterRepository, reports ports.ReportRepository) *Service {
	return &Service{
		brands:    brands,
		scans:     scans,
		imposters: imposters,
		reports:   reports,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RecordScan opens a RUNNING scan for the brand.
func (s *Service) RecordScan(ctx context.Context, brandID string, params domain.ScanParams) (string, error) {
	if params.RequestedPages < 1 {
		return "", domain.Invalid("requested pages must be positive, got %d", params.RequestedPages)
	}
	return s.scans.CreateScan(ctx, brandID, params, s.now())
}

// CompleteScan closes a scan: COMPLETED when any page returned data, FAILED
// otherwise.
func (s *Service) CompleteScan(ctx context.Context, scanID string, c domain.ScanCompletion) (domain.Scan, error) {
	status := domain.ScanFailed
	if c.AnyPageSucceeded {
		status = domain.ScanCompleted
	}
	if err := s.scans.CompleteScan(ctx, scanID, status, c, s.now()); err != nil {
		return domain.Scan{}, fmt.Errorf("complete scan %s: %w", scanID, err)
	}
	return s.scans.GetScan(ctx, scanID)
}

// UpsertImposter records a detection. Existing rows keep their status and
// detection time; only descriptive fields are refreshed.
func (s *Service) UpsertImposter(ctx context.Context, brandID string, c domain.Candidate) (domain.Imposter, bool, error) {
	c.Domain = domainname.Normalize(c.Domain)
	if c.Domain == "" {
		return domain.Imposter{}, false, domain.Invalid("empty candidate domain")
	}
	return s.imposters.UpsertDetected(ctx, brandID, c, s.now())
}

// AddManualImposter tracks a domain reported by an operator rather than found
// by a scan.
func (s *Service) AddManualImposter(ctx context.Context, brandID, rawDomain, notes, actingUser string) (domain.Imposter, error) {
	d := domainname.Normalize(rawDomain)
	if d == "" || !strings.Contains(d, ".") {
		return domain.Imposter{}, domain.Invalid("not a domain: %q", rawDomain)
	}
	if _, err := s.brands.GetBrand(ctx, brandID); err != nil {
		return domain.Imposter{}, fmt.Errorf("brand %s: %w", brandID, err)
	}
	var addedBy *string
	if actingUser = strings.TrimSpace(actingUser); actingUser != "" {
		addedBy = &actingUser
	}
	imp := domain.Imposter{
		BrandID:     brandID,
		Domain:      d,
		FullURL:     strings.TrimSpace(rawDomain),
		Source:      domain.SourceManual,
		Status:      domain.StatusSuspected,
		ReviewNotes: notes,
		DetectedAt:  s.now(),
		AddedBy:     addedBy,
	}
	created, err := s.imposters.InsertManual(ctx, imp)
	if err != nil {
		return domain.Imposter{}, err
	}
	log.Printf("[lifecycle] manual imposter %s added for brand %s by %q", d, brandID, actingUser)
	return created, nil
}

// TransitionImposterStatus moves an imposter along
// SUSPECTED -> {CONFIRMED, FALSE_POSITIVE}, CONFIRMED -> RESOLVED.
func (s *Service) TransitionImposterStatus(ctx context.Context, imposterID string, next domain.ImposterStatus, actingUser string) (domain.Imposter, error) {
	now := s.now()
	imp, err := s.imposters.UpdateImposter(ctx, imposterID, func(imp *domain.Imposter) error {
		return imp.Transition(next, actingUser, now)
	})
	if err != nil {
		return domain.Imposter{}, err
	}
	log.Printf("[lifecycle] imposter %s (%s) -> %s by %q", imp.ID, imp.Domain, next, actingUser)
	return imp, nil
}

// UpsertReportStatus records a takedown status for one channel.
func (s *Service) UpsertReportStatus(ctx context.Context, imposterID string, rt domain.ReportType, u domain.ReportUpdate) (domain.Report, error) {
	if _, err := domain.ParseReportType(string(rt)); err != nil {
		return domain.Report{}, err
	}
	if _, err := domain.ParseReportStatus(string(u.Status)); err != nil {
		return domain.Report{}, err
	}
	now := s.now()
	return s.reports.UpdateReport(ctx, imposterID, rt, func(r *domain.Report, created bool) error {
		r.Apply(u, created, now)
		return nil
	})
}

// ListImposters returns the brand's imposters with their reports.
func (s *Service) ListImposters(ctx context.Context, brandID string, status *domain.ImposterStatus) ([]domain.Imposter, error) {
	if _, err := s.brands.GetBrand(ctx, brandID); err != nil {
		return nil, fmt.Errorf("brand %s: %w", brandID, err)
	}
	return s.imposters.ListImposters(ctx, brandID, status)
}

func (s *Service) GetImposter(ctx context.Context, imposterID string) (domain.Imposter, error) {
	return s.imposters.GetImposter(ctx, imposterID)
}
