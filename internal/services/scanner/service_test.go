package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandguard/internal/adapters/memory"
	"brandguard/internal/domain"
	"brandguard/internal/ports"
	"brandguard/internal/services/analyzer"
	"brandguard/internal/services/lifecycle"
)

type env struct {
	store *memory.Store
	life  *lifecycle.Service
	brand domain.Brand
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	b, err := st.CreateBrand(context.Background(), "Monster Casino", "monstercasino.co.uk")
	require.NoError(t, err)
	return &env{store: st, life: lifecycle.New(st, st, st, st), brand: b}
}

func (e *env) service(p ports.SearchProvider) *Service {
	return New(e.store, e.store, e.life, NewOrchestrator(p, NoPacer{}, 0), analyzer.New(nil), Defaults{Geolocation: "United Kingdom", Pages: 3, MaxPages: 5})
}

func TestTriggerPartialFailureCompletes(t *testing.T) {
	e := newEnv(t)
	prov := &fakeProvider{
		pages: map[int]ports.SearchPage{
			0:  page(4100, 0, "https://www.monstercasino.co.uk/", "https://monster-casino.com/", "https://wikipedia.org/wiki/Monster"),
			20: page(4100, 20, "https://monstercasino.net/", "https://monster-casino.com/again"),
		},
		fail: map[int]error{10: errors.New("502 bad gateway")},
	}

	sum, err := e.service(prov).Trigger(context.Background(), ports.ScanRequest{BrandID: e.brand.ID})
	require.NoError(t, err)

	assert.Equal(t, domain.ScanCompleted, sum.Scan.Status)
	assert.Equal(t, 2, sum.Scan.PagesScanned)
	assert.Equal(t, int64(4100), sum.Scan.TotalResults)
	assert.Equal(t, 2, sum.Scan.ImpostorsFound)
	assert.Equal(t, 2, sum.Scan.NewImposters)
	assert.Equal(t, "Monster Casino", sum.Scan.SearchKeyword)
	assert.Equal(t, "United Kingdom", sum.Scan.Geolocation)
	assert.Equal(t, 3, sum.Scan.RequestedPages)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, sum.Errors, sum.Scan.Errors)

	require.Len(t, sum.Candidates, 2)
	assert.Equal(t, "monster-casino.com", sum.Candidates[0].Domain)
	assert.Equal(t, 2, sum.Candidates[0].SearchRank)
	assert.Equal(t, "monstercasino.net", sum.Candidates[1].Domain)

	imps, err := e.life.ListImposters(context.Background(), e.brand.ID, nil)
	require.NoError(t, err)
	assert.Len(t, imps, 2)
	for _, imp := range imps {
		assert.Equal(t, domain.StatusSuspected, imp.Status)
	}
}

func TestTriggerAllPagesFailedMarksScanFailed(t *testing.T) {
	e := newEnv(t)
	auth := fmt.Errorf("serpapi: %w", domain.ErrProviderAuth)
	prov := &fakeProvider{fail: map[int]error{0: auth, 10: auth}}

	sum, err := e.service(prov).Trigger(context.Background(), ports.ScanRequest{BrandID: e.brand.ID, PageCount: 2})
	require.NoError(t, err)

	assert.Equal(t, domain.ScanFailed, sum.Scan.Status)
	assert.Len(t, sum.Errors, 2)
	assert.Empty(t, sum.Candidates)
	require.NotNil(t, sum.Scan.CompletedAt)

	stored, err := e.store.GetScan(context.Background(), sum.Scan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanFailed, stored.Status)
}

func TestTriggerRescanKeepsConfirmedStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	prov := &fakeProvider{pages: map[int]ports.SearchPage{0: page(10, 0, "https://monstercasino.com/")}}
	svc := e.service(prov)

	first, err := svc.Trigger(ctx, ports.ScanRequest{BrandID: e.brand.ID, PageCount: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Scan.NewImposters)

	imps, err := e.life.ListImposters(ctx, e.brand.ID, nil)
	require.NoError(t, err)
	require.Len(t, imps, 1)
	_, err = e.life.TransitionImposterStatus(ctx, imps[0].ID, domain.StatusConfirmed, "alice")
	require.NoError(t, err)

	second, err := svc.Trigger(ctx, ports.ScanRequest{BrandID: e.brand.ID, PageCount: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Scan.ImpostorsFound)
	assert.Equal(t, 0, second.Scan.NewImposters)

	imps, err = e.life.ListImposters(ctx, e.brand.ID, nil)
	require.NoError(t, err)
	require.Len(t, imps, 1)
	assert.Equal(t, domain.StatusConfirmed, imps[0].Status)

	scans, err := svc.ListScans(ctx, e.brand.ID)
	require.NoError(t, err)
	assert.Len(t, scans, 2)
}

func TestTriggerValidation(t *testing.T) {
	e := newEnv(t)
	svc := e.service(&fakeProvider{})

	_, err := svc.Trigger(context.Background(), ports.ScanRequest{BrandID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Trigger(context.Background(), ports.ScanRequest{BrandID: e.brand.ID, PageCount: 6})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Trigger(context.Background(), ports.ScanRequest{BrandID: e.brand.ID, PageCount: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	scans, err := e.store.ListScans(context.Background(), e.brand.ID)
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestTriggerClosesScanAfterDeadline(t *testing.T) {
	e := newEnv(t)
	svc := New(e.store, e.store, e.life, NewOrchestrator(slowProvider{}, NoPacer{}, 0), analyzer.New(nil),
		Defaults{Pages: 2, MaxPages: 2, Timeout: 20 * time.Millisecond})

	sum, err := svc.Trigger(context.Background(), ports.ScanRequest{BrandID: e.brand.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanFailed, sum.Scan.Status)
	assert.Len(t, sum.Errors, 2)
}

// rejectingRecorder fails upserts for one domain and passes the rest through.
type rejectingRecorder struct {
	*lifecycle.Service
	reject string
}

func (r rejectingRecorder) UpsertImposter(ctx context.Context, brandID string, c domain.Candidate) (domain.Imposter, bool, error) {
	if c.Domain == r.reject {
		return domain.Imposter{}, false, errors.New("connection reset")
	}
	return r.Service.UpsertImposter(ctx, brandID, c)
}

func TestTriggerCountsOnlyRecordedImpostors(t *testing.T) {
	e := newEnv(t)
	prov := &fakeProvider{pages: map[int]ports.SearchPage{
		0: page(900, 0, "https://monster-casino.com/", "https://monstercasino.net/"),
	}}
	rec := rejectingRecorder{Service: e.life, reject: "monstercasino.net"}
	svc := New(e.store, e.store, rec, NewOrchestrator(prov, NoPacer{}, 0), analyzer.New(nil),
		Defaults{Geolocation: "United Kingdom", Pages: 1, MaxPages: 1})

	sum, err := svc.Trigger(context.Background(), ports.ScanRequest{BrandID: e.brand.ID})
	require.NoError(t, err)
	assert.Len(t, sum.Candidates, 2)
	assert.Equal(t, 1, sum.Scan.ImpostorsFound)
	assert.Equal(t, 1, sum.Scan.NewImposters)
	require.Len(t, sum.Scan.Errors, 1)
	assert.Contains(t, sum.Scan.Errors[0], "monstercasino.net")
	assert.Equal(t, domain.ScanCompleted, sum.Scan.Status)
}
