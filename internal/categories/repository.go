package categories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrack/fintrack/internal/shared"
)

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, category Category) (Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	ListForAccount(ctx context.Context, accountID int64) ([]Category, error)
	ListForAccountByType(ctx context.Context, accountID int64, t Type) ([]Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const categoryColumns = `id, account_id, name, icon, type, created_at, updated_at`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.AccountID, &c.Name, &c.Icon, &c.Type, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

// Create inserts a new category.
func (r *PGRepository) Create(ctx context.Context, category Category) (Category, error) {
	now := time.Now().UTC()
	return scanCategory(r.pool.QueryRow(ctx, `
		INSERT INTO categories (account_id, name, icon, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+categoryColumns,
		category.AccountID, category.Name, category.Icon, category.Type, now))
}

// Get fetches a category by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (Category, error) {
	return scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

// ListForAccount returns all categories owned by the account.
func (r *PGRepository) ListForAccount(ctx context.Context, accountID int64) ([]Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE account_id = $1 ORDER BY id`, accountID)
}

// ListForAccountByType returns the account's categories of one type.
func (r *PGRepository) ListForAccountByType(ctx context.Context, accountID int64, t Type) ([]Category, error) {
	return r.list(ctx, `SELECT `+categoryColumns+` FROM categories WHERE account_id = $1 AND type = $2 ORDER BY id`, accountID, t)
}

// Update persists the mutable category fields.
func (r *PGRepository) Update(ctx context.Context, category Category) (Category, error) {
	return scanCategory(r.pool.QueryRow(ctx, `
		UPDATE categories SET name = $1, icon = $2, updated_at = now()
		WHERE id = $3
		RETURNING `+categoryColumns,
		category.Name, category.Icon, category.ID))
}

// Delete removes a category. Referential constraint violations from existing
// transactions propagate as plain errors for the service to wrap.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) list(ctx context.Context, query string, args ...any) ([]Category, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.Icon, &c.Type, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
