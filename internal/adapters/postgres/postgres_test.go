package postgres

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandguard/internal/domain"
)

func newMock(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

var imposterCols = []string{"id", "brand_id", "domain", "full_url", "page_title", "page_description",
	"search_rank", "last_rank", "detection_rule", "source", "status", "review_notes",
	"detected_at", "last_seen_at", "confirmed_at", "resolved_at", "reviewed_by", "added_by"}

var reportCols = []string{"id", "imposter_id", "report_type", "status", "reported_at", "last_follow_up_at",
	"follow_up_count", "response_received", "ticket_number", "notes", "reported_by", "created_at", "updated_at"}

func imposterRow(id, status string, firstRank, lastRank int, detected, seen time.Time) []any {
	return []any{id, "brand-1", "monster-casino.com", "https://monster-casino.com/", "Monster Casino", "",
		&firstRank, &lastRank, "hyphenation", "GOOGLE_SEARCH", status, "",
		detected, &seen, (*time.Time)(nil), (*time.Time)(nil), (*string)(nil), (*string)(nil)}
}

// match adapts a predicate to pgxmock.Argument.
type match func(any) bool

func (m match) Match(v any) bool { return m(v) }

func strPtrIs(want string) match {
	return func(v any) bool {
		p, ok := v.(*string)
		return ok && p != nil && *p == want
	}
}

func TestCreateScan(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO scans`).
		WithArgs("brand-1", "Monster Casino", "United Kingdom", 3, now).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("scan-1"))

	id, err := db.CreateScan(context.Background(), "brand-1", domain.ScanParams{SearchKeyword: "Monster Casino", Geolocation: "United Kingdom", RequestedPages: 3}, now)
	require.NoError(t, err)
	assert.Equal(t, "scan-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateScanUnknownBrand(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO scans`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := db.CreateScan(context.Background(), "nope", domain.ScanParams{RequestedPages: 1}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteScanRunning(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`UPDATE scans`).
		WithArgs("scan-1", "COMPLETED", 2, int64(4100), 3, 1, []string{"page 2: boom"}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := db.CompleteScan(context.Background(), "scan-1", domain.ScanCompleted, domain.ScanCompletion{
		PagesScanned: 2, TotalResults: 4100, ImpostorsFound: 3, NewImposters: 1, Errors: []string{"page 2: boom"},
	}, time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteScanAlreadyTerminal(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`UPDATE scans`).
		WithArgs("scan-1", "FAILED", 0, int64(0), 0, 0, []string{}, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("scan-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := db.CompleteScan(context.Background(), "scan-1", domain.ScanFailed, domain.ScanCompletion{}, time.Now())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteScanMissing(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`UPDATE scans`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := db.CompleteScan(context.Background(), "scan-x", domain.ScanCompleted, domain.ScanCompletion{}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertManualDuplicate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO imposters`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "imposters_brand_id_domain_key"})

	_, err := db.InsertManual(context.Background(), domain.Imposter{
		BrandID: "brand-1", Domain: "monstercasino.net", Source: domain.SourceManual, Status: domain.StatusSuspected,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateDomain)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateImposterNotFoundRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM imposters WHERE id = \$1 FOR UPDATE`).
		WithArgs("imp-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	called := false
	_, err := db.UpdateImposter(context.Background(), "imp-1", func(*domain.Imposter) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReportUnknownImposterRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO imposter_reports`).
		WithArgs("imp-404", "HOSTING").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	_, err := db.UpdateReport(context.Background(), "imp-404", domain.ReportHosting, func(*domain.Report, bool) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBrand(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT id::text, name, domain FROM brands`).
		WithArgs("brand-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "domain"}).AddRow("brand-1", "Monster Casino", "monstercasino.co.uk"))
	mock.ExpectQuery(`SELECT id::text, name, domain FROM brands`).
		WithArgs("brand-2").
		WillReturnError(pgx.ErrNoRows)

	b, err := db.GetBrand(context.Background(), "brand-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Brand{ID: "brand-1", Name: "Monster Casino", Domain: "monstercasino.co.uk"}, b)

	_, err = db.GetBrand(context.Background(), "brand-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapErr(t *testing.T) {
	other := errors.New("boom")
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), domain.ErrDuplicateDomain)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "22P02"}), domain.ErrNotFound)
	assert.Equal(t, other, mapErr(other))
}

func TestUpsertDetectedConflictLeavesReviewState(t *testing.T) {
	lower := strings.ToLower(upsertDetectedSQL)
	start := strings.Index(lower, "do update set")
	end := strings.Index(lower, "returning")
	require.True(t, start > 0 && end > start)
	set := lower[start:end]

	for _, col := range []string{"status", "detected_at", "search_rank", "source", "reviewed_by", "confirmed_at", "resolved_at", "added_by"} {
		assert.NotRegexp(t, `\b`+col+`\s*=`, set, "rescan must not write %s", col)
	}
	assert.Contains(t, lower, "on conflict (brand_id, domain)")
	assert.Contains(t, lower, "(xmax = 0) as inserted")
}

func TestUpsertDetectedMapsInsertedFlag(t *testing.T) {
	db, mock := newMock(t)
	t0 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	cols := append(append([]string{}, imposterCols...), "inserted")

	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (brand_id, domain) DO UPDATE`)).
		WithArgs("brand-1", "monster-casino.com", "https://monster-casino.com/", "Monster Casino", "", pgxmock.AnyArg(), "hyphenation", t0).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(append(imposterRow("imp-1", "SUSPECTED", 4, 4, t0, t0), true)...))
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (brand_id, domain) DO UPDATE`)).
		WithArgs("brand-1", "monster-casino.com", "https://monster-casino.com/", "Monster Casino", "", pgxmock.AnyArg(), "hyphenation", t1).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(append(imposterRow("imp-1", "CONFIRMED", 4, 2, t0, t1), false)...))

	c := domain.Candidate{Domain: "monster-casino.com", FullURL: "https://monster-casino.com/", PageTitle: "Monster Casino", SearchRank: 4, DetectionRule: "hyphenation"}
	imp, inserted, err := db.UpsertDetected(context.Background(), "brand-1", c, t0)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, domain.StatusSuspected, imp.Status)
	assert.Equal(t, domain.SourceGoogleSearch, imp.Source)

	c.SearchRank = 2
	again, inserted, err := db.UpsertDetected(context.Background(), "brand-1", c, t1)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, imp.ID, again.ID)
	assert.Equal(t, domain.StatusConfirmed, again.Status)
	assert.Equal(t, t0, again.DetectedAt)
	assert.Equal(t, 4, *again.SearchRank)
	assert.Equal(t, 2, *again.LastRank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDetectedUnknownBrand(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO imposters`).WillReturnError(&pgconn.PgError{Code: "23503"})

	_, _, err := db.UpsertDetected(context.Background(), "brand-x", domain.Candidate{Domain: "a.com"}, time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateImposterCommitsTransition(t *testing.T) {
	db, mock := newMock(t)
	t0 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM imposters WHERE id = \$1 FOR UPDATE`).
		WithArgs("imp-1").
		WillReturnRows(pgxmock.NewRows(imposterCols).AddRow(imposterRow("imp-1", "SUSPECTED", 4, 4, t0, t0)...))
	mock.ExpectExec(`UPDATE imposters`).
		WithArgs("imp-1", "CONFIRMED", pgxmock.AnyArg(), pgxmock.AnyArg(), strPtrIs("alice"), "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`FROM imposter_reports WHERE imposter_id = \$1`).
		WithArgs("imp-1").
		WillReturnRows(pgxmock.NewRows(reportCols))
	mock.ExpectCommit()

	imp, err := db.UpdateImposter(context.Background(), "imp-1", func(i *domain.Imposter) error {
		return i.Transition(domain.StatusConfirmed, "alice", t0)
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, imp.Status)
	require.NotNil(t, imp.ConfirmedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateImposterRejectedTransitionWritesNothing(t *testing.T) {
	db, mock := newMock(t)
	t0 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("imp-1").
		WillReturnRows(pgxmock.NewRows(imposterCols).AddRow(imposterRow("imp-1", "RESOLVED", 4, 4, t0, t0)...))
	mock.ExpectRollback()

	_, err := db.UpdateImposter(context.Background(), "imp-1", func(i *domain.Imposter) error {
		return i.Transition(domain.StatusSuspected, "mallory", t0)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReportExistingRowCountsFollowUp(t *testing.T) {
	db, mock := newMock(t)
	t0 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	t1 := t0.Add(72 * time.Hour)
	alice := "alice"

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO imposter_reports`).
		WithArgs("imp-1", "HOSTING").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM imposter_reports\s+WHERE imposter_id = \$1 AND report_type = \$2\s+FOR UPDATE`).
		WithArgs("imp-1", "HOSTING").
		WillReturnRows(pgxmock.NewRows(reportCols).AddRow("rep-1", "imp-1", "HOSTING", "PENDING", &t0, (*time.Time)(nil),
			0, false, "HST-1", "", &alice, t0, t0))
	mock.ExpectExec(`UPDATE imposter_reports`).
		WithArgs("rep-1", "IN_PROGRESS", pgxmock.AnyArg(), pgxmock.AnyArg(), 1,
			false, "HST-1", "", pgxmock.AnyArg(), t0, t1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	r, err := db.UpdateReport(context.Background(), "imp-1", domain.ReportHosting, func(r *domain.Report, created bool) error {
		assert.False(t, created)
		r.Apply(domain.ReportUpdate{Status: domain.ReportInProgress}, created, t1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.FollowUpCount)
	assert.Equal(t, t1, *r.LastFollowUpAt)
	assert.Equal(t, t0, *r.ReportedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListImpostersStatusFilter(t *testing.T) {
	db, mock := newMock(t)
	t0 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM imposters\s+WHERE brand_id = \$1 AND \(\$2::text IS NULL OR status = \$2::text\)`).
		WithArgs("brand-1", strPtrIs("CONFIRMED")).
		WillReturnRows(pgxmock.NewRows(imposterCols).AddRow(imposterRow("imp-1", "CONFIRMED", 4, 4, t0, t0)...))
	mock.ExpectQuery(`FROM imposter_reports`).
		WithArgs("brand-1").
		WillReturnRows(pgxmock.NewRows(reportCols).
			AddRow("rep-2", "imp-1", "CLOUDFLARE", "PENDING", &t0, (*time.Time)(nil), 0, false, "", "", (*string)(nil), t0, t0).
			AddRow("rep-1", "imp-1", "HOSTING", "PENDING", &t0, (*time.Time)(nil), 0, false, "", "", (*string)(nil), t0, t0))

	confirmed := domain.StatusConfirmed
	list, err := db.ListImposters(context.Background(), "brand-1", &confirmed)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusConfirmed, list[0].Status)
	require.Equal(t, 2, list[0].ReportCount())
	assert.Equal(t, domain.ReportCloudflare, list[0].Reports[0].ReportType)
	assert.Equal(t, domain.ReportHosting, list[0].Reports[1].ReportType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListImpostersNoFilterPassesNull(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM imposters`).
		WithArgs("brand-1", match(func(v any) bool { p, ok := v.(*string); return ok && p == nil })).
		WillReturnRows(pgxmock.NewRows(imposterCols))

	list, err := db.ListImposters(context.Background(), "brand-1", nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertManualStoresAddedBy(t *testing.T) {
	db, mock := newMock(t)
	t0 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	bob := "bob"
	row := imposterRow("imp-9", "SUSPECTED", 0, 0, t0, t0)
	row[6], row[7], row[9], row[13], row[17] = (*int)(nil), (*int)(nil), "MANUAL", (*time.Time)(nil), &bob

	mock.ExpectQuery(`INSERT INTO imposters`).
		WithArgs("brand-1", "monster-casino.com", "", "MANUAL", "SUSPECTED", "", t0, strPtrIs("bob")).
		WillReturnRows(pgxmock.NewRows(imposterCols).AddRow(row...))

	imp, err := db.InsertManual(context.Background(), domain.Imposter{
		BrandID: "brand-1", Domain: "monster-casino.com", Source: domain.SourceManual,
		Status: domain.StatusSuspected, DetectedAt: t0, AddedBy: &bob,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceManual, imp.Source)
	assert.Nil(t, imp.SearchRank)
	require.NotNil(t, imp.AddedBy)
	assert.Equal(t, "bob", *imp.AddedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
