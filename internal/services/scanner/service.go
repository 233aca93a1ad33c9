package scanner

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"brandguard/internal/domain"
	"brandguard/internal/ports"
	"brandguard/internal/services/analyzer"
)

// Recorder is the slice of the lifecycle store a scan writes to.
type Recorder interface {
	RecordScan(ctx context.Context, brandID string, params domain.ScanParams) (string, error)
	CompleteScan(ctx context.Context, scanID string, c domain.ScanCompletion) (domain.Scan, error)
	UpsertImposter(ctx context.Context, brandID string, c domain.Candidate) (domain.Imposter, bool, error)
}

// Defaults fill in what an operator leaves out of a scan request.
type Defaults struct {
	Geolocation string
	Pages       int
	MaxPages    int
	Timeout     time.Duration // whole-scan deadline; zero means none
}

type Service struct {
	brands       ports.BrandDirectory
	scans        ports.ScanRepository
	recorder     Recorder
	orchestrator *Orchestrator
	analyzer     *analyzer.Analyzer
	defaults     Defaults
}

func New(brands ports.BrandDirectory, scans ports.ScanRepository, recorder Recorder, orch *Orchestrator, an *analyzer.Analyzer, defaults Defaults) *Service {
	if defaults.Pages < 1 {
		defaults.Pages = 1
	}
	if defaults.MaxPages < defaults.Pages {
		defaults.MaxPages = defaults.Pages
	}
	return &Service{brands: brands, scans: scans, recorder: recorder, orchestrator: orch, analyzer: an, defaults: defaults}
}

// Trigger runs one scan to completion: search pages, classify, upsert
// candidates, close the audit record. Per-page and per-candidate failures are
// returned in the summary; only failures to open or close the scan record are
// returned as errors.
func (s *Service) Trigger(ctx context.Context, req ports.ScanRequest) (ports.ScanSummary, error) {
	brand, err := s.brands.GetBrand(ctx, req.BrandID)
	if err != nil {
		return ports.ScanSummary{}, fmt.Errorf("brand %s: %w", req.BrandID, err)
	}
	params, err := s.params(brand, req)
	if err != nil {
		return ports.ScanSummary{}, err
	}
	scanID, err := s.recorder.RecordScan(ctx, brand.ID, params)
	if err != nil {
		return ports.ScanSummary{}, fmt.Errorf("record scan: %w", err)
	}
	log.Printf("[scanner] scan %s started: brand=%s keyword=%q geo=%q pages=%d", scanID, brand.ID, params.SearchKeyword, params.Geolocation, params.RequestedPages)

	runCtx := ctx
	if s.defaults.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.defaults.Timeout)
		defer cancel()
	}
	run := s.orchestrator.Run(runCtx, params.SearchKeyword, params.Geolocation, params.RequestedPages)
	candidates := s.analyzer.Analyze(run.Results, brand.Domain, brand.Name)

	errs := append([]string(nil), run.Errors...)
	recorded, created := 0, 0
	// the scan record must be closed even if the caller has gone away
	writeCtx := context.WithoutCancel(ctx)
	for _, c := range candidates {
		_, isNew, err := s.recorder.UpsertImposter(writeCtx, brand.ID, c)
		if err != nil {
			log.Printf("[scanner] scan %s: upsert %s: %v", scanID, c.Domain, err)
			errs = append(errs, fmt.Sprintf("upsert %s: %v", c.Domain, err))
			continue
		}
		recorded++
		if isNew {
			created++
		}
	}

	scan, err := s.recorder.CompleteScan(writeCtx, scanID, domain.ScanCompletion{
		PagesScanned:     run.PagesScanned,
		TotalResults:     run.TotalResults,
		ImpostorsFound:   recorded,
		NewImposters:     created,
		Errors:           errs,
		AnyPageSucceeded: run.PagesScanned > 0,
	})
	if err != nil {
		return ports.ScanSummary{}, err
	}
	log.Printf("[scanner] scan %s %s: pages=%d/%d results=%d candidates=%d new=%d errors=%d",
		scanID, scan.Status, run.PagesScanned, params.RequestedPages, len(run.Results), len(candidates), created, len(errs))
	return ports.ScanSummary{Scan: scan, Candidates: candidates, Errors: errs}, nil
}

func (s *Service) GetScan(ctx context.Context, scanID string) (domain.Scan, error) {
	return s.scans.GetScan(ctx, scanID)
}

func (s *Service) ListScans(ctx context.Context, brandID string) ([]domain.Scan, error) {
	if _, err := s.brands.GetBrand(ctx, brandID); err != nil {
		return nil, fmt.Errorf("brand %s: %w", brandID, err)
	}
	return s.scans.ListScans(ctx, brandID)
}

func (s *Service) params(brand domain.Brand, req ports.ScanRequest) (domain.ScanParams, error) {
	p := domain.ScanParams{
		SearchKeyword:  strings.TrimSpace(req.Keyword),
		Geolocation:    strings.TrimSpace(req.Geolocation),
		RequestedPages: req.PageCount,
	}
	if p.SearchKeyword == "" {
		p.SearchKeyword = brand.Name
	}
	if p.Geolocation == "" {
		p.Geolocation = s.defaults.Geolocation
	}
	if p.RequestedPages == 0 {
		p.RequestedPages = s.defaults.Pages
	}
	if p.RequestedPages < 1 || p.RequestedPages > s.defaults.MaxPages {
		return p, domain.Invalid("page count must be between 1 and %d, got %d", s.defaults.MaxPages, p.RequestedPages)
	}
	return p, nil
}
