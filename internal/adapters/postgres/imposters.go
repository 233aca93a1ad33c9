package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"brandguard/internal/domain"
)

const imposterColumns = `id::text, brand_id::text, domain, full_url, page_title, page_description,
    search_rank, last_rank, detection_rule, source, status, review_notes,
    detected_at, last_seen_at, confirmed_at, resolved_at, reviewed_by, added_by`

// upsertDetectedSQL inserts a detection or refreshes the descriptive fields
// of the existing row. Review state (status, detected_at, search_rank, source,
// reviewer columns) is not in the update list.
const upsertDetectedSQL = `
        INSERT INTO imposters (brand_id, domain, full_url, page_title, page_description,
                               search_rank, last_rank, detection_rule, source, status,
                               detected_at, last_seen_at)
        VALUES ($1, $2, $3, $4, $5, $6, $6, $7, 'GOOGLE_SEARCH', 'SUSPECTED', $8, $8)
        ON CONFLICT (brand_id, domain) DO UPDATE SET
            full_url         = COALESCE(NULLIF(EXCLUDED.full_url, ''), imposters.full_url),
            page_title       = COALESCE(NULLIF(EXCLUDED.page_title, ''), imposters.page_title),
            page_description = COALESCE(NULLIF(EXCLUDED.page_description, ''), imposters.page_description),
            last_rank        = COALESCE(EXCLUDED.last_rank, imposters.last_rank),
            last_seen_at     = EXCLUDED.last_seen_at
        RETURNING ` + imposterColumns + `, (xmax = 0) AS inserted
    `

// UpsertDetected relies on the (brand_id, domain) unique key so concurrent
// scans of one brand cannot create duplicates.
func (db *DB) UpsertDetected(ctx context.Context, brandID string, c domain.Candidate, now time.Time) (domain.Imposter, bool, error) {
	var rank *int
	if c.SearchRank > 0 {
		rank = &c.SearchRank
	}
	var imp domain.Imposter
	var inserted bool
	err := scanImposterInto(db.Pool.QueryRow(ctx, upsertDetectedSQL,
		brandID, c.Domain, c.FullURL, c.PageTitle, c.Description, rank, c.DetectionRule, now), &imp, &inserted)
	if err != nil {
		return domain.Imposter{}, false, mapErr(err)
	}
	return imp, inserted, nil
}

func (db *DB) InsertManual(ctx context.Context, in domain.Imposter) (domain.Imposter, error) {
	var imp domain.Imposter
	err := scanImposterInto(db.Pool.QueryRow(ctx, `
        INSERT INTO imposters (brand_id, domain, full_url, source, status, review_notes, detected_at, added_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+imposterColumns,
		in.BrandID, in.Domain, in.FullURL, string(in.Source), string(in.Status), in.ReviewNotes, in.DetectedAt, in.AddedBy), &imp)
	if err != nil {
		return domain.Imposter{}, mapErr(err)
	}
	return imp, nil
}

// UpdateImposter locks the row, applies fn and writes the reviewable fields
// back in the same transaction.
func (db *DB) UpdateImposter(ctx context.Context, imposterID string, fn func(*domain.Imposter) error) (domain.Imposter, error) {
	var imp domain.Imposter
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := scanImposterInto(tx.QueryRow(ctx, `SELECT `+imposterColumns+` FROM imposters WHERE id = $1 FOR UPDATE`, imposterID), &imp); err != nil {
			return mapErr(err)
		}
		if err := fn(&imp); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
            UPDATE imposters
            SET status = $2, confirmed_at = $3, resolved_at = $4, reviewed_by = $5, review_notes = $6
            WHERE id = $1
        `, imp.ID, string(imp.Status), imp.ConfirmedAt, imp.ResolvedAt, imp.ReviewedBy, imp.ReviewNotes); err != nil {
			return err
		}
		reports, err := listReports(ctx, tx, `WHERE imposter_id = $1`, imp.ID)
		imp.Reports = reports[imp.ID]
		return err
	})
	if err != nil {
		return domain.Imposter{}, err
	}
	return imp, nil
}

func (db *DB) GetImposter(ctx context.Context, imposterID string) (domain.Imposter, error) {
	var imp domain.Imposter
	if err := scanImposterInto(db.Pool.QueryRow(ctx, `SELECT `+imposterColumns+` FROM imposters WHERE id = $1`, imposterID), &imp); err != nil {
		return domain.Imposter{}, mapErr(err)
	}
	reports, err := listReports(ctx, db.Pool, `WHERE imposter_id = $1`, imp.ID)
	if err != nil {
		return domain.Imposter{}, err
	}
	imp.Reports = reports[imp.ID]
	return imp, nil
}

func (db *DB) ListImposters(ctx context.Context, brandID string, status *domain.ImposterStatus) ([]domain.Imposter, error) {
	var filter *string
	if status != nil {
		s := string(*status)
		filter = &s
	}
	rows, err := db.Pool.Query(ctx, `
        SELECT `+imposterColumns+` FROM imposters
        WHERE brand_id = $1 AND ($2::text IS NULL OR status = $2::text)
        ORDER BY detected_at DESC, domain
    `, brandID, filter)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Imposter
	for rows.Next() {
		var imp domain.Imposter
		if err := scanImposterInto(rows, &imp); err != nil {
			return nil, err
		}
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	reports, err := listReports(ctx, db.Pool, `
        WHERE imposter_id IN (SELECT id FROM imposters WHERE brand_id = $1)`, brandID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Reports = reports[out[i].ID]
	}
	return out, nil
}

func scanImposterInto(row pgx.Row, imp *domain.Imposter, extra ...any) error {
	var source, status string
	dest := []any{&imp.ID, &imp.BrandID, &imp.Domain, &imp.FullURL, &imp.PageTitle, &imp.PageDescription,
		&imp.SearchRank, &imp.LastRank, &imp.DetectionRule, &source, &status, &imp.ReviewNotes,
		&imp.DetectedAt, &imp.LastSeenAt, &imp.ConfirmedAt, &imp.ResolvedAt, &imp.ReviewedBy, &imp.AddedBy}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	imp.Source = domain.ImposterSource(source)
	imp.Status = domain.ImposterStatus(status)
	return nil
}
