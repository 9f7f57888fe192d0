package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fintrack/fintrack/internal/shared"
)

const uniqueViolation = "23505"

// Repository defines persistence operations for accounts.
type Repository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, id int64) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByActivationToken(ctx context.Context, token string) (Account, error)
	MarkActive(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Account, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, full_name, email, password_hash, profile_image_url, activation_token, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.ProfileImageURL, &a.ActivationToken, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// Create inserts a new account. The email uniqueness constraint surfaces as
// shared.ErrDuplicateEmail.
func (r *PGRepository) Create(ctx context.Context, account Account) (Account, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (full_name, email, password_hash, profile_image_url, activation_token, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+accountColumns,
		account.FullName, account.Email, account.PasswordHash, account.ProfileImageURL, account.ActivationToken, account.IsActive, now)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, shared.ErrDuplicateEmail
		}
		return Account{}, err
	}
	return created, nil
}

// GetByID fetches an account by primary key.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// FindByEmail fetches an account by its unique email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

// FindByActivationToken fetches an account by activation token.
func (r *PGRepository) FindByActivationToken(ctx context.Context, token string) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE activation_token = $1`, token))
}

// MarkActive flips the activation flag.
func (r *PGRepository) MarkActive(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE accounts SET is_active = TRUE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns every account, oldest first. Used by the notification jobs.
func (r *PGRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.ProfileImageURL, &a.ActivationToken, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repository = (*PGRepository)(nil)
