package menus

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lunchline/lunchline/internal/platform/db"
)

// ErrNotFound indicates the menu does not exist.
var ErrNotFound = errors.New("menu not found")

// Repository provides PostgreSQL backed persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*Menu, error)
	ListByDate(ctx context.Context, date time.Time) ([]MenuWithVendor, error)
	ReplaceForDay(ctx context.Context, vendorID int64, date time.Time, items []Menu) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Menu, error) {
	var m Menu
	var menuDate pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz
	err := r.pool.QueryRow(ctx,
		`SELECT id, vendor_id, menu_date, name, price_yen, created_at, updated_at FROM menus WHERE id = $1`,
		id).Scan(&m.ID, &m.VendorID, &menuDate, &m.Name, &m.PriceYen, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if menuDate.Valid {
		m.MenuDate = menuDate.Time
	}
	if createdAt.Valid {
		m.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		m.UpdatedAt = updatedAt.Time
	}
	return &m, nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]MenuWithVendor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.vendor_id, m.menu_date, m.name, m.price_yen, m.created_at, m.updated_at,
		       v.name AS vendor_name
		FROM menus m
		JOIN vendors v ON m.vendor_id = v.id
		WHERE m.menu_date = $1
		ORDER BY v.name, m.name
	`, pgtype.Date{Time: date, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MenuWithVendor
	for rows.Next() {
		var m MenuWithVendor
		var menuDate pgtype.Date
		var createdAt, updatedAt pgtype.Timestamptz
		if err := rows.Scan(&m.ID, &m.VendorID, &menuDate, &m.Name, &m.PriceYen,
			&createdAt, &updatedAt, &m.VendorName); err != nil {
			return nil, err
		}
		if menuDate.Valid {
			m.MenuDate = menuDate.Time
		}
		if createdAt.Valid {
			m.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			m.UpdatedAt = updatedAt.Time
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ReplaceForDay swaps the vendor's offering for the date atomically so
// readers never observe a half-replaced menu set.
func (r *repository) ReplaceForDay(ctx context.Context, vendorID int64, date time.Time, items []Menu) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM menus WHERE vendor_id = $1 AND menu_date = $2`,
			vendorID, pgtype.Date{Time: date, Valid: true}); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO menus (vendor_id, menu_date, name, price_yen) VALUES ($1, $2, $3, $4)`,
				vendorID, pgtype.Date{Time: date, Valid: true}, item.Name, item.PriceYen); err != nil {
				return err
			}
		}
		return nil
	})
}
