package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// singletonID pins the settings table to one row.
const singletonID = 1

// Repository provides PostgreSQL backed persistence for system_settings.
type Repository interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) (Settings, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Load reads the singleton row. A missing row is not an error: it decodes as
// the zero Settings, meaning no constraints are configured.
func (r *repository) Load(ctx context.Context) (Settings, error) {
	var s Settings
	var maxAhead, closingDay pgtype.Int4
	var updatedAt pgtype.Timestamptz

	err := r.pool.QueryRow(ctx,
		`SELECT max_order_days_ahead, closing_day, updated_at FROM system_settings WHERE id = $1`,
		singletonID).Scan(&maxAhead, &closingDay, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	if maxAhead.Valid {
		v := int(maxAhead.Int32)
		s.MaxOrderDaysAhead = &v
	}
	if closingDay.Valid {
		v := int(closingDay.Int32)
		s.ClosingDay = &v
	}
	if updatedAt.Valid {
		s.UpdatedAt = updatedAt.Time
	}
	return s, nil
}

func (r *repository) Save(ctx context.Context, s Settings) (Settings, error) {
	var maxAhead, closingDay pgtype.Int4
	if s.MaxOrderDaysAhead != nil {
		maxAhead = pgtype.Int4{Int32: int32(*s.MaxOrderDaysAhead), Valid: true}
	}
	if s.ClosingDay != nil {
		closingDay = pgtype.Int4{Int32: int32(*s.ClosingDay), Valid: true}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO system_settings (id, max_order_days_ahead, closing_day)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET max_order_days_ahead = EXCLUDED.max_order_days_ahead,
		    closing_day = EXCLUDED.closing_day,
		    updated_at = NOW()
	`, singletonID, maxAhead, closingDay)
	if err != nil {
		return Settings{}, err
	}
	return r.Load(ctx)
}
