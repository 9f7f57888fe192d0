package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/fintrack/fintrack/internal/accounts"
	"github.com/fintrack/fintrack/internal/ledger"
	"github.com/fintrack/fintrack/internal/mail"
)

const sendConcurrency = 4

// AccountLister iterates every registered account.
type AccountLister interface {
	List(ctx context.Context) ([]accounts.Account, error)
}

// LedgerReader reads per-day transactions for one account.
type LedgerReader interface {
	ForAccountOnDate(ctx context.Context, accountID int64, kind ledger.Kind, date time.Time) ([]ledger.Transaction, error)
}

// NotifyJob runs the two daily notification passes over all accounts. One
// account's failure never stops the loop: errors are logged and the run
// continues.
type NotifyJob struct {
	Accounts    AccountLister
	Ledger      LedgerReader
	Sender      mail.Sender
	FrontendURL string
	Logger      *slog.Logger
	clock       func() time.Time
}

// NewNotifyJob wires dependencies for the notification handlers.
func NewNotifyJob(accountSource AccountLister, ledgerSource LedgerReader, sender mail.Sender, frontendURL string, logger *slog.Logger) *NotifyJob {
	return &NotifyJob{
		Accounts:    accountSource,
		Ledger:      ledgerSource,
		Sender:      sender,
		FrontendURL: frontendURL,
		Logger:      logger,
		clock:       time.Now,
	}
}

// HandleReminder processes the 22:00 reminder trigger: every account gets a
// log-your-day nudge, active or not.
func (j *NotifyJob) HandleReminder(ctx context.Context, t *asynq.Task) error {
	logger := j.logger(TaskTypeDailyReminder)
	logger.Info("job started")

	all, err := j.Accounts.List(ctx)
	if err != nil {
		logger.Error("list accounts", slog.Any("error", err))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sendConcurrency)
	for _, account := range all {
		g.Go(func() error {
			body := composeReminder(account.FullName, j.FrontendURL)
			if err := j.Sender.Send(gctx, account.Email, reminderSubject, body); err != nil {
				logger.Warn("send reminder", slog.String("email", account.Email), slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("job completed", slog.Int("accounts", len(all)))
	return nil
}

// HandleSummary processes the 23:00 summary trigger: accounts with expenses
// dated today (in the scheduler zone) receive a tabular summary, the rest
// receive nothing.
func (j *NotifyJob) HandleSummary(ctx context.Context, t *asynq.Task) error {
	logger := j.logger(TaskTypeDailySummary)
	logger.Info("job started")

	loc, err := time.LoadLocation(SchedulerZone)
	if err != nil {
		return err
	}
	today := ledger.DateOnly(j.now(), loc)

	all, err := j.Accounts.List(ctx)
	if err != nil {
		logger.Error("list accounts", slog.Any("error", err))
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sendConcurrency)
	for _, account := range all {
		g.Go(func() error {
			todays, err := j.Ledger.ForAccountOnDate(gctx, account.ID, ledger.KindExpense, today)
			if err != nil {
				logger.Warn("load todays expenses", slog.String("email", account.Email), slog.Any("error", err))
				return nil
			}
			if len(todays) == 0 {
				return nil
			}
			body := composeSummary(account.FullName, todays)
			if err := j.Sender.Send(gctx, account.Email, summarySubject, body); err != nil {
				logger.Warn("send summary", slog.String("email", account.Email), slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("job completed", slog.Int("accounts", len(all)))
	return nil
}

func (j *NotifyJob) logger(task string) *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", task))
	}
	return slog.Default().With(slog.String("job", task))
}

func (j *NotifyJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
