package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/lunchline/lunchline/internal/jobs"
	"github.com/lunchline/lunchline/internal/ordering"
)

// DeadlineReminderJob emails users who have not placed an order for an
// available day before its cutoff.
type DeadlineReminderJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Mailer  Mailer
	clock   func() time.Time
}

// NewDeadlineReminderJob initialises the reminder handler.
func NewDeadlineReminderJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics, mailer Mailer) *DeadlineReminderJob {
	return &DeadlineReminderJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		Mailer:  mailer,
		clock:   time.Now,
	}
}

// Handle executes the reminder scan.
func (j *DeadlineReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("deadline reminder: handler not configured")
	}
	var payload DeadlineReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	now := j.now()
	date := ordering.Today(now)
	if payload.Date != "" {
		parsed, err := ordering.ParseISODate(payload.Date)
		if err != nil {
			return asynq.SkipRetry
		}
		date = parsed
	}

	tracker := j.metrics().Track(TaskOrderDeadlineReminder)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("date", ordering.FormatISODate(date)))

	available, deadline, err := j.dayState(ctx, date)
	if err != nil {
		resultErr = err
		logger.Error("load calendar day", slog.Any("error", err))
		return resultErr
	}
	if !available {
		logger.Info("ordering closed, no reminders")
		return nil
	}
	if deadline != nil && !now.Before(deadline.On(date)) {
		logger.Info("deadline already passed, no reminders")
		return nil
	}

	recipients, err := j.usersWithoutOrder(ctx, date)
	if err != nil {
		resultErr = err
		logger.Error("find users without orders", slog.Any("error", err))
		return resultErr
	}

	subject := fmt.Sprintf("Lunch order reminder for %s", ordering.FormatISODate(date))
	body := "You have not placed a lunch order for " + ordering.FormatISODate(date) + " yet."
	if deadline != nil {
		body += " Orders close at " + deadline.String() + "."
	}

	sent := 0
	for _, rcpt := range recipients {
		if j.Mailer == nil {
			break
		}
		if err := j.Mailer.Send(ctx, rcpt, subject, body); err != nil {
			logger.Warn("send reminder", slog.Any("error", err), slog.String("to", rcpt))
			j.metrics().AddReminders("failed", 1)
			continue
		}
		sent++
	}
	j.metrics().AddReminders("sent", sent)

	logger.Info("completed reminder scan",
		slog.Int("candidates", len(recipients)),
		slog.Int("sent", sent),
	)
	return nil
}

func (j *DeadlineReminderJob) dayState(ctx context.Context, date time.Time) (bool, *ordering.TimeOfDay, error) {
	if j.Pool == nil {
		return false, nil, errors.New("deadline reminder: pool not configured")
	}
	var available bool
	var deadlineRaw *string
	err := j.Pool.QueryRow(ctx,
		`SELECT is_available, deadline_time FROM order_calendar WHERE target_date = $1`,
		date,
	).Scan(&available, &deadlineRaw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil, nil
		}
		return false, nil, err
	}
	if !available || deadlineRaw == nil {
		return available, nil, nil
	}
	tod, err := ordering.ParseTimeOfDay(*deadlineRaw)
	if err != nil {
		return false, nil, err
	}
	return true, &tod, nil
}

func (j *DeadlineReminderJob) usersWithoutOrder(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT u.email
		FROM users u
		WHERE u.is_active
		  AND NOT EXISTS (
			SELECT 1 FROM orders o
			WHERE o.user_id = u.id AND o.order_date = $1 AND o.status = 'PLACED'
		  )
		ORDER BY u.email`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (j *DeadlineReminderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskOrderDeadlineReminder))
	}
	return slog.Default().With(slog.String("job", TaskOrderDeadlineReminder))
}

func (j *DeadlineReminderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *DeadlineReminderJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
