// Package memory is an in-process implementation of the persistence ports,
// used for development runs without Postgres and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"brandguard/internal/domain"
	"brandguard/internal/domainname"
)

type imposterKey struct{ brandID, domain string }
type reportKey struct {
	imposterID string
	rt         domain.ReportType
}

type Store struct {
	mu        sync.RWMutex
	brands    map[string]domain.Brand
	scans     map[string]domain.Scan
	imposters map[string]domain.Imposter
	byDomain  map[imposterKey]string
	reports   map[reportKey]domain.Report
}

func New() *Store {
	return &Store{
		brands:    make(map[string]domain.Brand),
		scans:     make(map[string]domain.Scan),
		imposters: make(map[string]domain.Imposter),
		byDomain:  make(map[imposterKey]string),
		reports:   make(map[reportKey]domain.Report),
	}
}

// Brands

func (s *Store) GetBrand(_ context.Context, brandID string) (domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.brands[brandID]
	if !ok {
		return domain.Brand{}, domain.ErrNotFound
	}
	return b, nil
}

func (s *Store) CreateBrand(_ context.Context, name, registrable string) (domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := domain.Brand{ID: uuid.NewString(), Name: name, Domain: domainname.Normalize(registrable)}
	s.brands[b.ID] = b
	return b, nil
}

func (s *Store) ListBrands(_ context.Context) ([]domain.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Scans

func (s *Store) CreateScan(_ context.Context, brandID string, p domain.ScanParams, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brands[brandID]; !ok {
		return "", domain.ErrNotFound
	}
	sc := domain.Scan{
		ID:             uuid.NewString(),
		BrandID:        brandID,
		SearchKeyword:  p.SearchKeyword,
		Geolocation:    p.Geolocation,
		RequestedPages: p.RequestedPages,
		Status:         domain.ScanRunning,
		CreatedAt:      now,
	}
	s.scans[sc.ID] = sc
	return sc.ID, nil
}

func (s *Store) CompleteScan(_ context.Context, scanID string, status domain.ScanStatus, c domain.ScanCompletion, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scans[scanID]
	if !ok {
		return domain.ErrNotFound
	}
	if sc.Status.Terminal() {
		return nil
	}
	sc.Status = status
	sc.PagesScanned = c.PagesScanned
	sc.TotalResults = c.TotalResults
	sc.ImpostorsFound = c.ImpostorsFound
	sc.NewImposters = c.NewImposters
	sc.Errors = append([]string(nil), c.Errors...)
	sc.CompletedAt = &now
	s.scans[scanID] = sc
	return nil
}

func (s *Store) GetScan(_ context.Context, scanID string) (domain.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.scans[scanID]
	if !ok {
		return domain.Scan{}, domain.ErrNotFound
	}
	return sc, nil
}

func (s *Store) ListScans(_ context.Context, brandID string) ([]domain.Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Scan
	for _, sc := range s.scans {
		if sc.BrandID == brandID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Imposters

func (s *Store) UpsertDetected(_ context.Context, brandID string, c domain.Candidate, now time.Time) (domain.Imposter, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brands[brandID]; !ok {
		return domain.Imposter{}, false, domain.ErrNotFound
	}
	key := imposterKey{brandID, c.Domain}
	if id, ok := s.byDomain[key]; ok {
		imp := s.imposters[id]
		imp.Refresh(c, now)
		s.imposters[id] = imp
		return s.withReports(imp), false, nil
	}
	imp := domain.NewDetectedImposter(brandID, c, now)
	imp.ID = uuid.NewString()
	s.imposters[imp.ID] = imp
	s.byDomain[key] = imp.ID
	return imp, true, nil
}

func (s *Store) InsertManual(_ context.Context, imp domain.Imposter) (domain.Imposter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brands[imp.BrandID]; !ok {
		return domain.Imposter{}, domain.ErrNotFound
	}
	key := imposterKey{imp.BrandID, imp.Domain}
	if _, ok := s.byDomain[key]; ok {
		return domain.Imposter{}, domain.ErrDuplicateDomain
	}
	imp.ID = uuid.NewString()
	s.imposters[imp.ID] = imp
	s.byDomain[key] = imp.ID
	return imp, nil
}

func (s *Store) UpdateImposter(_ context.Context, imposterID string, fn func(*domain.Imposter) error) (domain.Imposter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	imp, ok := s.imposters[imposterID]
	if !ok {
		return domain.Imposter{}, domain.ErrNotFound
	}
	work := imp
	if err := fn(&work); err != nil {
		return domain.Imposter{}, err
	}
	s.imposters[imposterID] = work
	return s.withReports(work), nil
}

func (s *Store) GetImposter(_ context.Context, imposterID string) (domain.Imposter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	imp, ok := s.imposters[imposterID]
	if !ok {
		return domain.Imposter{}, domain.ErrNotFound
	}
	return s.withReports(imp), nil
}

func (s *Store) ListImposters(_ context.Context, brandID string, status *domain.ImposterStatus) ([]domain.Imposter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Imposter
	for _, imp := range s.imposters {
		if imp.BrandID != brandID || (status != nil && imp.Status != *status) {
			continue
		}
		out = append(out, s.withReports(imp))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].DetectedAt.After(out[j].DetectedAt)
		}
		return out[i].Domain < out[j].Domain
	})
	return out, nil
}

// Reports

func (s *Store) UpdateReport(_ context.Context, imposterID string, rt domain.ReportType, fn func(*domain.Report, bool) error) (domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.imposters[imposterID]; !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	key := reportKey{imposterID, rt}
	r, exists := s.reports[key]
	if !exists {
		r = domain.Report{ID: uuid.NewString(), ImposterID: imposterID, ReportType: rt, Status: domain.ReportNotReported}
	}
	if err := fn(&r, !exists); err != nil {
		return domain.Report{}, err
	}
	s.reports[key] = r
	return r, nil
}

// withReports attaches report rows in channel order. Caller holds the lock.
func (s *Store) withReports(imp domain.Imposter) domain.Imposter {
	imp.Reports = nil
	for _, rt := range domain.ReportTypes {
		if r, ok := s.reports[reportKey{imp.ID, rt}]; ok {
			imp.Reports = append(imp.Reports, r)
		}
	}
	return imp
}
