package postgres

import (
	"context"

	"brandguard/internal/domain"
	"brandguard/internal/domainname"
)

// BrandDirectory

func (db *DB) GetBrand(ctx context.Context, brandID string) (domain.Brand, error) {
	var b domain.Brand
	err := db.Pool.QueryRow(ctx, `SELECT id::text, name, domain FROM brands WHERE id = $1`, brandID).
		Scan(&b.ID, &b.Name, &b.Domain)
	if err != nil {
		return domain.Brand{}, mapErr(err)
	}
	return b, nil
}

func (db *DB) CreateBrand(ctx context.Context, name, registrable string) (domain.Brand, error) {
	b := domain.Brand{Name: name, Domain: domainname.Normalize(registrable)}
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO brands (name, domain) VALUES ($1, $2)
        RETURNING id::text
    `, b.Name, b.Domain).Scan(&b.ID)
	return b, err
}

func (db *DB) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id::text, name, domain FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Brand
	for rows.Next() {
		var b domain.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Domain); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
