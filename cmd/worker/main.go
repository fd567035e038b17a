package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/lunchline/lunchline/internal/app"
	jobmetrics "github.com/lunchline/lunchline/internal/jobs"
	"github.com/lunchline/lunchline/internal/platform/cache"
	"github.com/lunchline/lunchline/internal/platform/db"
	"github.com/lunchline/lunchline/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mailer := &jobs.SMTPMailer{
		Addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		From: cfg.SMTPFrom,
	}
	metrics := jobmetrics.NewMetrics(nil)

	emailJob := &jobs.SendEmailJob{Mailer: mailer, Logger: logger}
	reminderJob := jobs.NewDeadlineReminderJob(pool, logger, metrics, mailer)
	sheetJob := jobs.NewVendorSheetJob(pool, logger, metrics, mailer)

	reminderTask, err := jobs.NewDeadlineReminderTask(jobs.DeadlineReminderPayload{})
	if err != nil {
		logger.Error("build reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	sheetTask, err := jobs.NewVendorSheetTask(jobs.VendorSheetPayload{To: cfg.SMTPFrom})
	if err != nil {
		logger.Error("build order sheet task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: emailJob.Handle},
			{Type: jobs.TaskOrderDeadlineReminder, Handler: reminderJob.Handle},
			{Type: jobs.TaskVendorSheet, Handler: sheetJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			// one hour before the default 10:00 cutoff on weekdays
			{Spec: "0 9 * * 1-5", Task: reminderTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			// kitchen order sheet right after the cutoff
			{Spec: "5 10 * * 1-5", Task: sheetTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
