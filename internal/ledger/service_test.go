package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/categories"
	"github.com/fintrack/fintrack/internal/shared"
)

type memoryLedgerRepo struct {
	transactions map[int64]Transaction
	nextID       int64
	deleteErr    error
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{transactions: make(map[int64]Transaction)}
}

func (r *memoryLedgerRepo) Insert(ctx context.Context, tx Transaction) (Transaction, error) {
	r.nextID++
	tx.ID = r.nextID
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	r.transactions[tx.ID] = tx
	return tx, nil
}

func (r *memoryLedgerRepo) Get(ctx context.Context, id int64) (Transaction, error) {
	tx, ok := r.transactions[id]
	if !ok {
		return Transaction{}, shared.ErrNotFound
	}
	return tx, nil
}

func (r *memoryLedgerRepo) Delete(ctx context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.transactions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.transactions, id)
	return nil
}

func (r *memoryLedgerRepo) scoped(accountID int64, kind Kind) []Transaction {
	var out []Transaction
	for id := int64(1); id <= r.nextID; id++ {
		if tx, ok := r.transactions[id]; ok && tx.AccountID == accountID && tx.Kind == kind {
			out = append(out, tx)
		}
	}
	return out
}

func (r *memoryLedgerRepo) RecentTop5(ctx context.Context, accountID int64, kind Kind) ([]Transaction, error) {
	out := r.scoped(accountID, kind)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out, nil
}

func (r *memoryLedgerRepo) ListBetween(ctx context.Context, accountID int64, kind Kind, start, end time.Time) ([]Transaction, error) {
	var out []Transaction
	for _, tx := range r.scoped(accountID, kind) {
		if !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memoryLedgerRepo) ListOnDate(ctx context.Context, accountID int64, kind Kind, date time.Time) ([]Transaction, error) {
	var out []Transaction
	for _, tx := range r.scoped(accountID, kind) {
		if tx.Date.Equal(date) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memoryLedgerRepo) Sum(ctx context.Context, accountID int64, kind Kind) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range r.scoped(accountID, kind) {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func (r *memoryLedgerRepo) ListFiltered(ctx context.Context, accountID int64, kind Kind, filter FilterInput) ([]Transaction, error) {
	var out []Transaction
	for _, tx := range r.scoped(accountID, kind) {
		if filter.StartDate != nil && tx.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && tx.Date.After(*filter.EndDate) {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(tx.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		out = append(out, tx)
	}
	asc := filter.SortOrder == SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		switch filter.SortField {
		case SortByAmount:
			if out[i].Amount.Equal(out[j].Amount) {
				return out[i].ID < out[j].ID
			}
			less = out[i].Amount.LessThan(out[j].Amount)
		case SortByName:
			if out[i].Name == out[j].Name {
				return out[i].ID < out[j].ID
			}
			less = out[i].Name < out[j].Name
		default:
			if out[i].Date.Equal(out[j].Date) {
				return out[i].ID < out[j].ID
			}
			less = out[i].Date.Before(out[j].Date)
		}
		if asc {
			return less
		}
		return !less
	})
	return out, nil
}

var _ Repository = (*memoryLedgerRepo)(nil)

type stubCategorySource struct {
	categories map[int64]categories.Category
}

func (s stubCategorySource) Get(ctx context.Context, id int64) (categories.Category, error) {
	category, ok := s.categories[id]
	if !ok {
		return categories.Category{}, shared.ErrNotFound
	}
	return category, nil
}

func newTestService(repo *memoryLedgerRepo) *Service {
	source := stubCategorySource{categories: map[int64]categories.Category{
		10: {ID: 10, AccountID: 1, Name: "Food", Type: categories.TypeExpense},
		11: {ID: 11, AccountID: 1, Name: "Salary", Type: categories.TypeIncome},
		20: {ID: 20, AccountID: 2, Name: "Other", Type: categories.TypeExpense},
	}}
	return NewService(repo, source, nil, nil)
}

func civil(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddRecordsTransaction(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)

	created, err := svc.Add(context.Background(), 1, KindExpense, AddInput{
		CategoryID: 10,
		Name:       "Groceries",
		Amount:     amt("42.50"),
		Date:       civil(2026, time.March, 5),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.AccountID)
	require.Equal(t, KindExpense, created.Kind)
	require.True(t, created.Amount.Equal(amt("42.50")))
}

func TestAddDefaultsDateToToday(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	fixed := time.Date(2026, time.March, 5, 17, 45, 0, 0, time.Local)
	svc.now = func() time.Time { return fixed }

	created, err := svc.Add(context.Background(), 1, KindExpense, AddInput{
		CategoryID: 10,
		Name:       "Coffee",
		Amount:     amt("3.20"),
	})
	require.NoError(t, err)
	require.True(t, created.Date.Equal(DateOnly(fixed, time.Local)))
}

func TestAddRejectsForeignCategory(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)

	cases := map[string]int64{
		"unknown category":       99,
		"someone elses category": 20,
	}
	for name, categoryID := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), 1, KindExpense, AddInput{
				CategoryID: categoryID,
				Name:       "Sneaky",
				Amount:     amt("1.00"),
				Date:       civil(2026, time.March, 5),
			})
			require.ErrorIs(t, err, shared.ErrNotFound)
		})
	}
	require.Empty(t, repo.transactions)
}

func TestDeleteOwnership(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Add(ctx, 1, KindExpense, AddInput{
		CategoryID: 10, Name: "Rent", Amount: amt("900.00"), Date: civil(2026, time.March, 1),
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, 2, KindExpense, created.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	// the failed attempt must not remove the record
	_, err = repo.Get(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, KindExpense, created.ID))
	_, err = repo.Get(ctx, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRejectsKindMismatch(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	income, err := svc.Add(ctx, 1, KindIncome, AddInput{
		CategoryID: 11, Name: "Salary", Amount: amt("1000.00"), Date: civil(2026, time.March, 1),
	})
	require.NoError(t, err)

	// an income is not reachable through the expense surface
	err = svc.Delete(ctx, 1, KindExpense, income.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.Get(ctx, income.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, KindIncome, income.ID))
}

func TestDeleteUnknownTransaction(t *testing.T) {
	svc := newTestService(newMemoryLedgerRepo())

	err := svc.Delete(context.Background(), 1, KindExpense, 404)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.NotErrorIs(t, err, shared.ErrDeleteFailed)
}

func TestDeleteWrapsStorageFailure(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	created, err := svc.Add(ctx, 1, KindExpense, AddInput{
		CategoryID: 10, Name: "Broken", Amount: amt("5.00"), Date: civil(2026, time.March, 1),
	})
	require.NoError(t, err)

	repo.deleteErr = errors.New("connection reset by peer")
	err = svc.Delete(ctx, 1, KindExpense, created.ID)
	require.ErrorIs(t, err, shared.ErrDeleteFailed)
	require.Contains(t, err.Error(), "connection reset")
}

func TestTotalSumsAmounts(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	total, err := svc.Total(ctx, 1, KindExpense)
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.Zero))

	_, err = svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "A", Amount: amt("100"), Date: civil(2026, time.March, 1)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "B", Amount: amt("50"), Date: civil(2026, time.March, 2)})
	require.NoError(t, err)

	total, err = svc.Total(ctx, 1, KindExpense)
	require.NoError(t, err)
	require.True(t, total.Equal(amt("150")))

	// income total is unaffected by expenses
	income, err := svc.Total(ctx, 1, KindIncome)
	require.NoError(t, err)
	require.True(t, income.Equal(decimal.Zero))
}

func TestCurrentMonthBounds(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	svc.now = func() time.Time {
		return time.Date(2026, time.February, 14, 12, 0, 0, 0, time.Local)
	}

	day := func(d int) time.Time {
		return time.Date(2026, time.February, d, 0, 0, 0, 0, time.Local)
	}
	_, err := svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "first", Amount: amt("1"), Date: day(1)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "last", Amount: amt("2"), Date: day(28)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "next month", Amount: amt("3"), Date: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.Local)})
	require.NoError(t, err)

	got, err := svc.CurrentMonth(ctx, 1, KindExpense)
	require.NoError(t, err)
	require.Len(t, got, 2)
	names := []string{got[0].Name, got[1].Name}
	require.ElementsMatch(t, []string{"first", "last"}, names)
}

func TestFilterValidatesSortParams(t *testing.T) {
	svc := newTestService(newMemoryLedgerRepo())

	_, err := svc.Filter(context.Background(), 1, KindExpense, FilterInput{SortField: "icon", SortOrder: SortAsc})
	require.ErrorIs(t, err, shared.ErrInvalidFilter)

	_, err = svc.Filter(context.Background(), 1, KindExpense, FilterInput{SortField: SortByDate, SortOrder: "upwards"})
	require.ErrorIs(t, err, shared.ErrInvalidFilter)
}

func TestFilterSortsAndScopes(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "cinema", Amount: amt("12"), Date: civil(2026, time.March, 3)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "books", Amount: amt("30"), Date: civil(2026, time.March, 1)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 2, KindExpense, AddInput{CategoryID: 20, Name: "cinema", Amount: amt("99"), Date: civil(2026, time.March, 3)})
	require.NoError(t, err)

	got, err := svc.Filter(ctx, 1, KindExpense, FilterInput{SortField: SortByAmount, SortOrder: SortDesc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "books", got[0].Name)
	require.Equal(t, "cinema", got[1].Name)
	for _, tx := range got {
		require.Equal(t, int64(1), tx.AccountID)
	}

	got, err = svc.Filter(ctx, 1, KindExpense, FilterInput{Keyword: "CIN", SortField: SortByDate, SortOrder: SortAsc})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "cinema", got[0].Name)
}

func TestFilterEqualAmountsKeepInsertionOrder(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.Add(ctx, 1, KindExpense, AddInput{
			CategoryID: 10, Name: name, Amount: amt("25.00"), Date: civil(2026, time.March, 4),
		})
		require.NoError(t, err)
	}

	// equal keys keep insertion order in both directions
	for _, order := range []string{SortAsc, SortDesc} {
		got, err := svc.Filter(ctx, 1, KindExpense, FilterInput{SortField: SortByAmount, SortOrder: order})
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, "first", got[0].Name)
		require.Equal(t, "second", got[1].Name)
		require.Equal(t, "third", got[2].Name)
	}
}

func TestFilterSortsByName(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	for _, name := range []string{"zoo", "apple", "mango", "apple"} {
		_, err := svc.Add(ctx, 1, KindExpense, AddInput{
			CategoryID: 10, Name: name, Amount: amt("5.00"), Date: civil(2026, time.March, 4),
		})
		require.NoError(t, err)
	}

	got, err := svc.Filter(ctx, 1, KindExpense, FilterInput{SortField: SortByName, SortOrder: SortAsc})
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, "apple", got[0].Name)
	require.Equal(t, "apple", got[1].Name)
	require.Equal(t, "mango", got[2].Name)
	require.Equal(t, "zoo", got[3].Name)
	// the two apples stay in insertion order
	require.Less(t, got[0].ID, got[1].ID)
}

func TestDashboardAggregates(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, KindIncome, AddInput{CategoryID: 11, Name: "salary", Amount: amt("1000"), Date: civil(2026, time.March, 1)})
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, KindExpense, AddInput{CategoryID: 10, Name: "rent", Amount: amt("400"), Date: civil(2026, time.March, 2)})
	require.NoError(t, err)

	dash, err := svc.GetDashboard(ctx, 1)
	require.NoError(t, err)
	require.True(t, dash.TotalIncome.Equal(amt("1000")))
	require.True(t, dash.TotalExpense.Equal(amt("400")))
	require.True(t, dash.Balance.Equal(amt("600")))
	require.Len(t, dash.RecentIncomes, 1)
	require.Len(t, dash.RecentExpenses, 1)
}
