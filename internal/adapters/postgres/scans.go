package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"brandguard/internal/domain"
)

const scanColumns = `id::text, brand_id::text, search_keyword, geolocation, requested_pages,
    pages_scanned, total_results, impostors_found, new_imposters, errors, status,
    created_at, completed_at`

// ScanRepository
func (db *DB) CreateScan(ctx context.Context, brandID string, p domain.ScanParams, now time.Time) (string, error) {
	var scanID string
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO scans (brand_id, search_keyword, geolocation, requested_pages, status, created_at)
        VALUES ($1, $2, $3, $4, 'RUNNING', $5)
        RETURNING id::text
    `, brandID, p.SearchKeyword, p.Geolocation, p.RequestedPages, now).Scan(&scanID)
	if err != nil {
		return "", mapErr(err)
	}
	return scanID, nil
}

// CompleteScan only touches RUNNING rows; a finished scan is left as it is.
func (db *DB) CompleteScan(ctx context.Context, scanID string, status domain.ScanStatus, c domain.ScanCompletion, now time.Time) error {
	errs := c.Errors
	if errs == nil {
		errs = []string{}
	}
	tag, err := db.Pool.Exec(ctx, `
        UPDATE scans
        SET status = $2, pages_scanned = $3, total_results = $4, impostors_found = $5,
            new_imposters = $6, errors = $7, completed_at = $8
        WHERE id = $1 AND status = 'RUNNING'
    `, scanID, string(status), c.PagesScanned, c.TotalResults, c.ImpostorsFound, c.NewImposters, errs, now)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM scans WHERE id = $1)`, scanID).Scan(&exists); err != nil {
		return mapErr(err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) GetScan(ctx context.Context, scanID string) (domain.Scan, error) {
	sc, err := scanScan(db.Pool.QueryRow(ctx, `SELECT `+scanColumns+` FROM scans WHERE id = $1`, scanID))
	if err != nil {
		return domain.Scan{}, mapErr(err)
	}
	return sc, nil
}

func (db *DB) ListScans(ctx context.Context, brandID string) ([]domain.Scan, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT `+scanColumns+` FROM scans
        WHERE brand_id = $1
        ORDER BY created_at DESC
    `, brandID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []domain.Scan
	for rows.Next() {
		sc, err := scanScan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func scanScan(row pgx.Row) (domain.Scan, error) {
	var sc domain.Scan
	var status string
	err := row.Scan(&sc.ID, &sc.BrandID, &sc.SearchKeyword, &sc.Geolocation, &sc.RequestedPages,
		&sc.PagesScanned, &sc.TotalResults, &sc.ImpostorsFound, &sc.NewImposters, &sc.Errors, &status,
		&sc.CreatedAt, &sc.CompletedAt)
	sc.Status = domain.ScanStatus(status)
	return sc, err
}
