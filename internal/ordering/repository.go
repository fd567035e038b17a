package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrder indicates the user already has an order for the date.
	ErrDuplicateOrder = errors.New("order already exists for this date")
)

// Repository provides PostgreSQL backed persistence for orders. The
// one-order-per-user-per-date invariant lives here (unique index on
// user_id/order_date), not in the admission engine, which stays advisory.
type Repository interface {
	Get(ctx context.Context, id int64) (*Order, error)
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]OrderWithUser, int, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]OrderWithUser, error)
	Create(ctx context.Context, order Order) (int64, error)
	Update(ctx context.Context, id int64, menuID *int64, note *string) error
	UpdateStatus(ctx context.Context, id int64, status OrderStatus, actorID int64) error
	Reassign(ctx context.Context, id int64, newUserID int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository constructs a Repository over a pgx pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const orderColumns = `id, user_id, menu_id, order_date, status, note, cancelled_by, cancelled_at, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns), id)
	return scanOrder(row)
}

func (r *repository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) (*Order, error) {
	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 AND order_date = $2`, orderColumns),
		userID, pgtype.Date{Time: date, Valid: true})
	return scanOrder(row)
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]OrderWithUser, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if req.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argPos))
		args = append(args, *req.UserID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders o %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT o.id, o.user_id, o.menu_id, o.order_date, o.status, o.note,
		       o.cancelled_by, o.cancelled_at, o.created_at, o.updated_at,
		       u.name AS user_name,
		       m.name AS menu_name
		FROM orders o
		JOIN users u ON o.user_id = u.id
		LEFT JOIN menus m ON o.menu_id = m.id
		%s
		ORDER BY o.order_date DESC, o.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)

	args = append(args, req.Limit, req.Offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := collectOrdersWithUser(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, rows.Err()
}

func (r *repository) ListByDateRange(ctx context.Context, from, to time.Time) ([]OrderWithUser, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.user_id, o.menu_id, o.order_date, o.status, o.note,
		       o.cancelled_by, o.cancelled_at, o.created_at, o.updated_at,
		       u.name AS user_name,
		       m.name AS menu_name
		FROM orders o
		JOIN users u ON o.user_id = u.id
		LEFT JOIN menus m ON o.menu_id = m.id
		WHERE o.order_date >= $1 AND o.order_date <= $2
		ORDER BY o.order_date ASC, u.name ASC
	`, pgtype.Date{Time: from, Valid: true}, pgtype.Date{Time: to, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders, err := collectOrdersWithUser(rows)
	if err != nil {
		return nil, err
	}
	return orders, rows.Err()
}

func (r *repository) Create(ctx context.Context, o Order) (int64, error) {
	var menuID pgtype.Int8
	if o.MenuID != nil {
		menuID = pgtype.Int8{Int64: *o.MenuID, Valid: true}
	}
	var note pgtype.Text
	if o.Note != nil {
		note = pgtype.Text{String: *o.Note, Valid: true}
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, menu_id, order_date, status, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, o.UserID, menuID, pgtype.Date{Time: o.OrderDate, Valid: true}, o.Status, note).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateOrder
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, menuID *int64, note *string) error {
	var menu pgtype.Int8
	if menuID != nil {
		menu = pgtype.Int8{Int64: *menuID, Valid: true}
	}
	var n pgtype.Text
	if note != nil {
		n = pgtype.Text{String: *note, Valid: true}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET menu_id = $1, note = $2, updated_at = NOW() WHERE id = $3`,
		menu, n, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status OrderStatus, actorID int64) error {
	var cancelledBy pgtype.Int8
	var cancelledAt pgtype.Timestamptz
	if status == OrderStatusCancelled {
		cancelledBy = pgtype.Int8{Int64: actorID, Valid: true}
		cancelledAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $1, cancelled_by = $2, cancelled_at = $3, updated_at = NOW()
		WHERE id = $4
	`, status, cancelledBy, cancelledAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Reassign(ctx context.Context, id int64, newUserID int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET user_id = $1, updated_at = NOW() WHERE id = $2`,
		newUserID, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var menuID, cancelledBy pgtype.Int8
	var orderDate pgtype.Date
	var note pgtype.Text
	var cancelledAt, createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&o.ID, &o.UserID, &menuID, &orderDate, &o.Status, &note,
		&cancelledBy, &cancelledAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if menuID.Valid {
		o.MenuID = &menuID.Int64
	}
	if orderDate.Valid {
		o.OrderDate = orderDate.Time
	}
	if note.Valid {
		o.Note = &note.String
	}
	if cancelledBy.Valid {
		o.CancelledBy = &cancelledBy.Int64
	}
	if cancelledAt.Valid {
		o.CancelledAt = &cancelledAt.Time
	}
	if createdAt.Valid {
		o.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		o.UpdatedAt = updatedAt.Time
	}
	return &o, nil
}

func collectOrdersWithUser(rows pgx.Rows) ([]OrderWithUser, error) {
	var orders []OrderWithUser
	for rows.Next() {
		var o OrderWithUser
		var menuID, cancelledBy pgtype.Int8
		var orderDate pgtype.Date
		var note, menuName pgtype.Text
		var cancelledAt, createdAt, updatedAt pgtype.Timestamptz

		err := rows.Scan(&o.ID, &o.UserID, &menuID, &orderDate, &o.Status, &note,
			&cancelledBy, &cancelledAt, &createdAt, &updatedAt,
			&o.UserName, &menuName)
		if err != nil {
			return nil, err
		}

		if menuID.Valid {
			o.MenuID = &menuID.Int64
		}
		if orderDate.Valid {
			o.OrderDate = orderDate.Time
		}
		if note.Valid {
			o.Note = &note.String
		}
		if cancelledBy.Valid {
			o.CancelledBy = &cancelledBy.Int64
		}
		if cancelledAt.Valid {
			o.CancelledAt = &cancelledAt.Time
		}
		if createdAt.Valid {
			o.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			o.UpdatedAt = updatedAt.Time
		}
		if menuName.Valid {
			o.MenuName = &menuName.String
		}
		orders = append(orders, o)
	}
	return orders, nil
}
