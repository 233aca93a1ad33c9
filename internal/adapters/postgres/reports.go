package postgres

import (
	"context"
	"errors"
	"slices"

	"github.com/jackc/pgx/v5"

	"brandguard/internal/domain"
)

const reportColumns = `id::text, imposter_id::text, report_type, status, reported_at, last_follow_up_at,
    follow_up_count, response_received, ticket_number, notes, reported_by, created_at, updated_at`

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// UpdateReport creates the channel row on first use, then applies fn to the
// locked row so concurrent follow-ups are counted, not lost.
func (db *DB) UpdateReport(ctx context.Context, imposterID string, rt domain.ReportType, fn func(*domain.Report, bool) error) (domain.Report, error) {
	var r domain.Report
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		created := true
		var id string
		err := tx.QueryRow(ctx, `
            INSERT INTO imposter_reports (imposter_id, report_type)
            VALUES ($1, $2)
            ON CONFLICT (imposter_id, report_type) DO NOTHING
            RETURNING id::text
        `, imposterID, string(rt)).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			created = false
		} else if err != nil {
			return mapErr(err)
		}
		if err := scanReportInto(tx.QueryRow(ctx, `
            SELECT `+reportColumns+` FROM imposter_reports
            WHERE imposter_id = $1 AND report_type = $2
            FOR UPDATE
        `, imposterID, string(rt)), &r); err != nil {
			return mapErr(err)
		}
		if err := fn(&r, created); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
            UPDATE imposter_reports
            SET status = $2, reported_at = $3, last_follow_up_at = $4, follow_up_count = $5,
                response_received = $6, ticket_number = $7, notes = $8, reported_by = $9,
                created_at = $10, updated_at = $11
            WHERE id = $1
        `, r.ID, string(r.Status), r.ReportedAt, r.LastFollowUpAt, r.FollowUpCount,
			r.ResponseReceived, r.TicketNumber, r.Notes, r.ReportedBy, r.CreatedAt, r.UpdatedAt)
		return err
	})
	if err != nil {
		return domain.Report{}, err
	}
	return r, nil
}

// listReports loads reports matching where, grouped by imposter id and kept
// in channel order.
func listReports(ctx context.Context, q queryer, where string, args ...any) (map[string][]domain.Report, error) {
	rows, err := q.Query(ctx, `SELECT `+reportColumns+` FROM imposter_reports `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]domain.Report)
	for rows.Next() {
		var r domain.Report
		if err := scanReportInto(rows, &r); err != nil {
			return nil, err
		}
		out[r.ImposterID] = append(out[r.ImposterID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for id := range out {
		slices.SortFunc(out[id], func(a, b domain.Report) int {
			return slices.Index(domain.ReportTypes, a.ReportType) - slices.Index(domain.ReportTypes, b.ReportType)
		})
	}
	return out, nil
}

func scanReportInto(row pgx.Row, r *domain.Report) error {
	var rt, status string
	if err := row.Scan(&r.ID, &r.ImposterID, &rt, &status, &r.ReportedAt, &r.LastFollowUpAt,
		&r.FollowUpCount, &r.ResponseReceived, &r.TicketNumber, &r.Notes, &r.ReportedBy,
		&r.CreatedAt, &r.UpdatedAt); err != nil {
		return err
	}
	r.ReportType = domain.ReportType(rt)
	r.Status = domain.ReportStatus(status)
	return nil
}
