package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no calendar row exists for the date.
var ErrNotFound = errors.New("calendar day not found")

// Repository provides PostgreSQL backed persistence for order_calendar.
type Repository interface {
	FindByDate(ctx context.Context, date time.Time) (*Day, error)
	ListRange(ctx context.Context, from, to time.Time) ([]Day, error)
	Upsert(ctx context.Context, day Day) (*Day, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const dayColumns = `id, target_date, is_available, deadline_time, note, created_at, updated_at`

func (r *repository) FindByDate(ctx context.Context, date time.Time) (*Day, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+dayColumns+` FROM order_calendar WHERE target_date = $1`,
		pgtype.Date{Time: date, Valid: true})
	return scanDay(row)
}

func (r *repository) ListRange(ctx context.Context, from, to time.Time) ([]Day, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+dayColumns+` FROM order_calendar WHERE target_date >= $1 AND target_date <= $2 ORDER BY target_date`,
		pgtype.Date{Time: from, Valid: true}, pgtype.Date{Time: to, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []Day
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, *day)
	}
	return days, rows.Err()
}

func (r *repository) Upsert(ctx context.Context, d Day) (*Day, error) {
	var deadline, note pgtype.Text
	if d.DeadlineTime != nil {
		deadline = pgtype.Text{String: *d.DeadlineTime, Valid: true}
	}
	if d.Note != nil {
		note = pgtype.Text{String: *d.Note, Valid: true}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO order_calendar (target_date, is_available, deadline_time, note)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (target_date) DO UPDATE
		SET is_available = EXCLUDED.is_available,
		    deadline_time = EXCLUDED.deadline_time,
		    note = EXCLUDED.note,
		    updated_at = NOW()
		RETURNING `+dayColumns,
		pgtype.Date{Time: d.TargetDate, Valid: true}, d.IsAvailable, deadline, note)
	return scanDay(row)
}

func scanDay(row pgx.Row) (*Day, error) {
	var d Day
	var targetDate pgtype.Date
	var deadline, note pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&d.ID, &targetDate, &d.IsAvailable, &deadline, &note, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if targetDate.Valid {
		d.TargetDate = targetDate.Time
	}
	if deadline.Valid {
		d.DeadlineTime = &deadline.String
	}
	if note.Valid {
		d.Note = &note.String
	}
	if createdAt.Valid {
		d.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		d.UpdatedAt = updatedAt.Time
	}
	return &d, nil
}
