package vendors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the vendor does not exist.
var ErrNotFound = errors.New("vendor not found")

// Repository provides PostgreSQL backed persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*Vendor, error)
	List(ctx context.Context, activeOnly bool) ([]Vendor, error)
	Create(ctx context.Context, v Vendor) (int64, error)
	Update(ctx context.Context, id int64, name, phone *string, isActive *bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const vendorColumns = `id, name, phone, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Vendor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	return scanVendor(row)
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, v Vendor) (int64, error) {
	var phone pgtype.Text
	if v.Phone != nil {
		phone = pgtype.Text{String: *v.Phone, Valid: true}
	}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vendors (name, phone, is_active) VALUES ($1, $2, $3) RETURNING id`,
		v.Name, phone, v.IsActive).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, name, phone *string, isActive *bool) error {
	var n, p pgtype.Text
	if name != nil {
		n = pgtype.Text{String: *name, Valid: true}
	}
	if phone != nil {
		p = pgtype.Text{String: *phone, Valid: true}
	}
	var active pgtype.Bool
	if isActive != nil {
		active = pgtype.Bool{Bool: *isActive, Valid: true}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE vendors
		SET name = COALESCE($1, name),
		    phone = COALESCE($2, phone),
		    is_active = COALESCE($3, is_active),
		    updated_at = NOW()
		WHERE id = $4
	`, n, p, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVendor(row pgx.Row) (*Vendor, error) {
	var v Vendor
	var phone pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&v.ID, &v.Name, &phone, &v.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if phone.Valid {
		v.Phone = &phone.String
	}
	if createdAt.Valid {
		v.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		v.UpdatedAt = updatedAt.Time
	}
	return &v, nil
}
