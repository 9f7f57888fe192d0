package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/platform/db"
	"github.com/fintrack/fintrack/internal/shared"
)

// Repository defines persistence operations for the transaction ledger.
// Every query is scoped by account id; cross-account interference is
// prevented by that scoping alone.
type Repository interface {
	Insert(ctx context.Context, tx Transaction) (Transaction, error)
	Get(ctx context.Context, id int64) (Transaction, error)
	Delete(ctx context.Context, id int64) error
	RecentTop5(ctx context.Context, accountID int64, kind Kind) ([]Transaction, error)
	ListBetween(ctx context.Context, accountID int64, kind Kind, start, end time.Time) ([]Transaction, error)
	ListOnDate(ctx context.Context, accountID int64, kind Kind, date time.Time) ([]Transaction, error)
	Sum(ctx context.Context, accountID int64, kind Kind) (decimal.Decimal, error)
	ListFiltered(ctx context.Context, accountID int64, kind Kind, filter FilterInput) ([]Transaction, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const txSelect = `
	SELECT t.id, t.account_id, t.category_id, COALESCE(c.name, 'N/A'), t.kind, t.name, t.icon, t.amount, t.date, t.created_at, t.updated_at
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.CategoryName, &t.Kind, &t.Name, &t.Icon, &t.Amount, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, shared.ErrNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

// Insert stores a new transaction and returns it with the joined category
// name. The insert and the read-back share one transaction so the joined row
// reflects exactly what was written.
func (r *PGRepository) Insert(ctx context.Context, tx Transaction) (Transaction, error) {
	now := time.Now().UTC()
	var created Transaction
	err := db.WithTx(ctx, r.pool, func(dbtx pgx.Tx) error {
		var id int64
		if err := dbtx.QueryRow(ctx, `
			INSERT INTO transactions (account_id, category_id, kind, name, icon, amount, date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			RETURNING id`,
			tx.AccountID, tx.CategoryID, tx.Kind, tx.Name, tx.Icon, tx.Amount, tx.Date, now).Scan(&id); err != nil {
			return err
		}
		var err error
		created, err = scanTransaction(dbtx.QueryRow(ctx, txSelect+` WHERE t.id = $1`, id))
		return err
	})
	if err != nil {
		return Transaction{}, err
	}
	return created, nil
}

// Get fetches a transaction by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx, txSelect+` WHERE t.id = $1`, id))
}

// Delete removes a transaction.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RecentTop5 returns the five most recent transactions by date.
func (r *PGRepository) RecentTop5(ctx context.Context, accountID int64, kind Kind) ([]Transaction, error) {
	return r.list(ctx, txSelect+`
		WHERE t.account_id = $1 AND t.kind = $2
		ORDER BY t.date DESC, t.id DESC
		LIMIT 5`, accountID, kind)
}

// ListBetween returns transactions dated within [start, end] inclusive.
func (r *PGRepository) ListBetween(ctx context.Context, accountID int64, kind Kind, start, end time.Time) ([]Transaction, error) {
	return r.list(ctx, txSelect+`
		WHERE t.account_id = $1 AND t.kind = $2 AND t.date BETWEEN $3 AND $4
		ORDER BY t.date DESC, t.id DESC`, accountID, kind, start, end)
}

// ListOnDate returns transactions dated exactly on the given civil date.
func (r *PGRepository) ListOnDate(ctx context.Context, accountID int64, kind Kind, date time.Time) ([]Transaction, error) {
	return r.list(ctx, txSelect+`
		WHERE t.account_id = $1 AND t.kind = $2 AND t.date = $3
		ORDER BY t.id`, accountID, kind, date)
}

// Sum returns the amount total for the account, exact zero when empty.
func (r *PGRepository) Sum(ctx context.Context, accountID int64, kind Kind) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE account_id = $1 AND kind = $2`,
		accountID, kind).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListFiltered composes the dynamic filter query. Sort columns come from a
// whitelist; the id tiebreak keeps equal keys in insertion order.
func (r *PGRepository) ListFiltered(ctx context.Context, accountID int64, kind Kind, filter FilterInput) ([]Transaction, error) {
	query := txSelect + ` WHERE t.account_id = $1 AND t.kind = $2`
	args := []any{accountID, kind}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += ` AND t.date >= $` + strconv.Itoa(len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += ` AND t.date <= $` + strconv.Itoa(len(args))
	}
	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		query += ` AND t.name ILIKE $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY ` + sortClause(filter.SortField, filter.SortOrder) + `, t.id ASC`
	return r.list(ctx, query, args...)
}

func sortClause(field, order string) string {
	column := "t.date"
	switch field {
	case SortByAmount:
		column = "t.amount"
	case SortByName:
		column = "t.name"
	}
	dir := "ASC"
	if order == SortDesc {
		dir = "DESC"
	}
	return column + " " + dir
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.CategoryName, &t.Kind, &t.Name, &t.Icon, &t.Amount, &t.Date, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
