package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/categories"
	"github.com/fintrack/fintrack/internal/shared"
)

// CategorySource resolves categories during transaction creation.
type CategorySource interface {
	Get(ctx context.Context, id int64) (categories.Category, error)
}

// Service is the ledger store and query engine. Every operation is scoped to
// the acting account id passed explicitly by the caller.
type Service struct {
	repo       Repository
	categories CategorySource
	cache      *Cache
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, categorySource CategorySource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		categories: categorySource,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

// Add records a transaction for the acting account. The category must exist
// and belong to the same account; a category owned by someone else reports
// not found rather than revealing its existence. A zero date defaults to
// today in server local time.
func (s *Service) Add(ctx context.Context, actingAccountID int64, kind Kind, input AddInput) (Transaction, error) {
	category, err := s.categories.Get(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Transaction{}, fmt.Errorf("%w: category %d", shared.ErrNotFound, input.CategoryID)
		}
		return Transaction{}, err
	}
	if category.AccountID != actingAccountID {
		return Transaction{}, fmt.Errorf("%w: category %d", shared.ErrNotFound, input.CategoryID)
	}

	date := input.Date
	if date.IsZero() {
		date = DateOnly(s.now(), time.Local)
	}

	created, err := s.repo.Insert(ctx, Transaction{
		AccountID:  actingAccountID,
		CategoryID: input.CategoryID,
		Kind:       kind,
		Name:       input.Name,
		Icon:       input.Icon,
		Amount:     input.Amount,
		Date:       date,
	})
	if err != nil {
		return Transaction{}, err
	}
	s.invalidate(ctx, actingAccountID)
	return created, nil
}

// Delete removes a transaction after checking existence, kind and ownership
// in the service layer. A transaction of the other kind reports not found, so
// an income cannot be removed through the expense surface. Only a genuine
// storage failure is wrapped as DeleteFailed; not-found and forbidden stay
// distinct internally.
func (s *Service) Delete(ctx context.Context, actingAccountID int64, kind Kind, transactionID int64) error {
	existing, err := s.repo.Get(ctx, transactionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return shared.DeleteFailed(err)
	}
	if existing.Kind != kind {
		return fmt.Errorf("%w: transaction %d", shared.ErrNotFound, transactionID)
	}
	if existing.AccountID != actingAccountID {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, transactionID); err != nil {
		return shared.DeleteFailed(err)
	}
	s.invalidate(ctx, actingAccountID)
	return nil
}

// RecentTop5 returns the five most recent transactions, newest first.
func (s *Service) RecentTop5(ctx context.Context, actingAccountID int64, kind Kind) ([]Transaction, error) {
	return s.repo.RecentTop5(ctx, actingAccountID, kind)
}

// CurrentMonth returns transactions dated in the current local month,
// first and last day inclusive, computed at call time.
func (s *Service) CurrentMonth(ctx context.Context, actingAccountID int64, kind Kind) ([]Transaction, error) {
	today := DateOnly(s.now(), time.Local)
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)
	return s.repo.ListBetween(ctx, actingAccountID, kind, first, last)
}

// Total sums all amounts for the account. With no transactions the result is
// exact zero, never absent.
func (s *Service) Total(ctx context.Context, actingAccountID int64, kind Kind) (decimal.Decimal, error) {
	return s.repo.Sum(ctx, actingAccountID, kind)
}

// Filter runs the dynamic filter/sort query. Unrecognized sort parameters
// are rejected, never silently defaulted.
func (s *Service) Filter(ctx context.Context, actingAccountID int64, kind Kind, filter FilterInput) ([]Transaction, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListFiltered(ctx, actingAccountID, kind, filter)
}

// ForAccountOnDate returns transactions dated exactly on the given civil
// date. Used by the notification scheduler.
func (s *Service) ForAccountOnDate(ctx context.Context, accountID int64, kind Kind, date time.Time) ([]Transaction, error) {
	return s.repo.ListOnDate(ctx, accountID, kind, date)
}

// Dashboard aggregates totals and recent activity for both kinds. The
// snapshot is cached per account and invalidated on every mutation.
type Dashboard struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	Balance        decimal.Decimal `json:"balance"`
	RecentIncomes  []Transaction   `json:"recentIncomes"`
	RecentExpenses []Transaction   `json:"recentExpenses"`
}

// GetDashboard computes or fetches the cached dashboard snapshot.
func (s *Service) GetDashboard(ctx context.Context, actingAccountID int64) (Dashboard, error) {
	load := func(ctx context.Context) (any, error) {
		return s.buildDashboard(ctx, actingAccountID)
	}
	var out Dashboard
	if s.cache == nil {
		value, err := load(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		return value.(Dashboard), nil
	}
	key, err := s.cache.BuildKey(ctx, actingAccountID, "dashboard")
	if err != nil {
		return Dashboard{}, err
	}
	if err := s.cache.FetchJSON(ctx, key, &out, load); err != nil {
		return Dashboard{}, err
	}
	return out, nil
}

func (s *Service) buildDashboard(ctx context.Context, accountID int64) (Dashboard, error) {
	totalIncome, err := s.repo.Sum(ctx, accountID, KindIncome)
	if err != nil {
		return Dashboard{}, err
	}
	totalExpense, err := s.repo.Sum(ctx, accountID, KindExpense)
	if err != nil {
		return Dashboard{}, err
	}
	recentIncomes, err := s.repo.RecentTop5(ctx, accountID, KindIncome)
	if err != nil {
		return Dashboard{}, err
	}
	recentExpenses, err := s.repo.RecentTop5(ctx, accountID, KindExpense)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		TotalIncome:    totalIncome,
		TotalExpense:   totalExpense,
		Balance:        totalIncome.Sub(totalExpense),
		RecentIncomes:  recentIncomes,
		RecentExpenses: recentExpenses,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, accountID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx, accountID); err != nil {
		s.logger.Warn("bump ledger cache", slog.Int64("account_id", accountID), slog.Any("error", err))
	}
}
