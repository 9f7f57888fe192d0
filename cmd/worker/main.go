package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fintrack/fintrack/internal/accounts"
	"github.com/fintrack/fintrack/internal/app"
	"github.com/fintrack/fintrack/internal/categories"
	"github.com/fintrack/fintrack/internal/ledger"
	"github.com/fintrack/fintrack/internal/mail"
	"github.com/fintrack/fintrack/internal/platform/cache"
	"github.com/fintrack/fintrack/internal/platform/db"
	"github.com/fintrack/fintrack/jobs"
)

func main() {
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		From: cfg.SMTPFrom,
	})

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo, nil, logger)

	categoriesRepo := categories.NewRepository(pool)
	ledgerRepo := ledger.NewRepository(pool)
	ledgerCache := ledger.NewCache(redisClient, 10*time.Minute)
	ledgerService := ledger.NewService(ledgerRepo, categoriesRepo, ledgerCache, logger)

	sendEmailJob := &jobs.SendEmailJob{Sender: sender, Logger: logger}
	notifyJob := jobs.NewNotifyJob(accountsService, ledgerService, sender, cfg.FrontendURL, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: sendEmailJob.Handle},
			{Type: jobs.TaskTypeDailyReminder, Handler: notifyJob.HandleReminder},
			{Type: jobs.TaskTypeDailySummary, Handler: notifyJob.HandleSummary},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 22 * * *", Task: jobs.NewDailyReminderTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 23 * * *", Task: jobs.NewDailySummaryTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
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
