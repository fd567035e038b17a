package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/lunchline/lunchline/internal/jobs"
	"github.com/lunchline/lunchline/internal/ordering"
)

// VendorSheetJob mails the aggregated order counts for one date, grouped by
// vendor and menu item, so the kitchen can place the supplier order.
type VendorSheetJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Mailer  Mailer
	clock   func() time.Time
}

// NewVendorSheetJob initialises the order sheet handler.
func NewVendorSheetJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics, mailer Mailer) *VendorSheetJob {
	return &VendorSheetJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		Mailer:  mailer,
		clock:   time.Now,
	}
}

type sheetLine struct {
	Vendor string
	Menu   string
	Count  int
}

// Handle executes the order sheet aggregation.
func (j *VendorSheetJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("vendor sheet: handler not configured")
	}
	var payload VendorSheetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	date := ordering.Today(j.now())
	if payload.Date != "" {
		parsed, err := ordering.ParseISODate(payload.Date)
		if err != nil {
			return asynq.SkipRetry
		}
		date = parsed
	}

	tracker := j.metrics().Track(TaskVendorSheet)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("date", ordering.FormatISODate(date)))

	lines, unassigned, err := j.aggregate(ctx, date)
	if err != nil {
		resultErr = err
		logger.Error("aggregate orders", slog.Any("error", err))
		return resultErr
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Order sheet for %s\n\n", ordering.FormatISODate(date))
	total := 0
	for _, line := range lines {
		fmt.Fprintf(&body, "%s / %s: %d\n", line.Vendor, line.Menu, line.Count)
		total += line.Count
	}
	if unassigned > 0 {
		fmt.Fprintf(&body, "(no menu selected): %d\n", unassigned)
		total += unassigned
	}
	fmt.Fprintf(&body, "\nTotal: %d orders\n", total)

	if j.Mailer != nil {
		subject := fmt.Sprintf("Lunch order sheet %s", ordering.FormatISODate(date))
		if err := j.Mailer.Send(ctx, payload.To, subject, body.String()); err != nil {
			resultErr = err
			logger.Error("send order sheet", slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed order sheet",
		slog.Int("lines", len(lines)),
		slog.Int("total", total),
	)
	return nil
}

func (j *VendorSheetJob) aggregate(ctx context.Context, date time.Time) ([]sheetLine, int, error) {
	if j.Pool == nil {
		return nil, 0, errors.New("vendor sheet: pool not configured")
	}
	rows, err := j.Pool.Query(ctx, `
		SELECT v.name, m.name, COUNT(*)
		FROM orders o
		JOIN menus m ON o.menu_id = m.id
		JOIN vendors v ON m.vendor_id = v.id
		WHERE o.order_date = $1 AND o.status = 'PLACED'
		GROUP BY v.name, m.name
		ORDER BY v.name, m.name`, date)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var lines []sheetLine
	for rows.Next() {
		var line sheetLine
		if err := rows.Scan(&line.Vendor, &line.Menu, &line.Count); err != nil {
			return nil, 0, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unassigned int
	err = j.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE order_date = $1 AND status = 'PLACED' AND menu_id IS NULL`,
		date,
	).Scan(&unassigned)
	if err != nil {
		return nil, 0, err
	}
	return lines, unassigned, nil
}

func (j *VendorSheetJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskVendorSheet))
	}
	return slog.Default().With(slog.String("job", TaskVendorSheet))
}

func (j *VendorSheetJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *VendorSheetJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
