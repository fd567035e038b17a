package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads audit_logs joined with actor names.
type Repository interface {
	TimelineWindow(ctx context.Context, f TimelineFilters, limit, offset int) ([]TimelineRow, error)
	TimelineAll(ctx context.Context, f TimelineFilters) ([]TimelineRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) TimelineWindow(ctx context.Context, f TimelineFilters, limit, offset int) ([]TimelineRow, error) {
	query, args := buildTimelineQuery(f)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.query(ctx, query, args)
}

func (r *repository) TimelineAll(ctx context.Context, f TimelineFilters) ([]TimelineRow, error) {
	query, args := buildTimelineQuery(f)
	return r.query(ctx, query, args)
}

func (r *repository) query(ctx context.Context, query string, args []interface{}) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var at pgtype.Timestamptz
		if err := rows.Scan(&at, &row.Actor, &row.Action, &row.Entity, &row.EntityID); err != nil {
			return nil, err
		}
		if at.Valid {
			row.At = at.Time
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func buildTimelineQuery(f TimelineFilters) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	add := func(cond string, val interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, val)
		argPos++
	}

	if !f.From.IsZero() {
		add("al.occurred_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("al.occurred_at <= $%d", f.To)
	}
	if v := strings.TrimSpace(f.Actor); v != "" {
		add("u.email = $%d", v)
	}
	if v := strings.TrimSpace(f.Entity); v != "" {
		add("al.entity = $%d", v)
	}
	if v := strings.TrimSpace(f.Action); v != "" {
		add("al.action = $%d", v)
	}

	query := `
		SELECT al.occurred_at, u.email, al.action, al.entity, al.entity_id
		FROM audit_logs al
		JOIN users u ON al.actor_id = u.id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY al.occurred_at DESC, al.id DESC`
	return query, args
}
