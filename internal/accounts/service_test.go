package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/fintrack/internal/shared"
)

type memoryAccountRepo struct {
	accounts map[int64]Account
	nextID   int64
}

func newMemoryAccountRepo() *memoryAccountRepo {
	return &memoryAccountRepo{accounts: make(map[int64]Account)}
}

func (r *memoryAccountRepo) Create(ctx context.Context, account Account) (Account, error) {
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return Account{}, shared.ErrDuplicateEmail
		}
	}
	r.nextID++
	account.ID = r.nextID
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	r.accounts[account.ID] = account
	return account, nil
}

func (r *memoryAccountRepo) GetByID(ctx context.Context, id int64) (Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return Account{}, shared.ErrNotFound
	}
	return account, nil
}

func (r *memoryAccountRepo) FindByEmail(ctx context.Context, email string) (Account, error) {
	for _, account := range r.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return Account{}, shared.ErrNotFound
}

func (r *memoryAccountRepo) FindByActivationToken(ctx context.Context, token string) (Account, error) {
	for _, account := range r.accounts {
		if account.ActivationToken != nil && *account.ActivationToken == token {
			return account, nil
		}
	}
	return Account{}, shared.ErrNotFound
}

func (r *memoryAccountRepo) MarkActive(ctx context.Context, id int64) error {
	account, ok := r.accounts[id]
	if !ok {
		return shared.ErrNotFound
	}
	account.IsActive = true
	r.accounts[id] = account
	return nil
}

func (r *memoryAccountRepo) List(ctx context.Context) ([]Account, error) {
	out := make([]Account, 0, len(r.accounts))
	for id := int64(1); id <= r.nextID; id++ {
		if account, ok := r.accounts[id]; ok {
			out = append(out, account)
		}
	}
	return out, nil
}

var _ Repository = (*memoryAccountRepo)(nil)

type recordingNotifier struct {
	sent []Account
	err  error
}

func (n *recordingNotifier) SendActivationEmail(ctx context.Context, account Account) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, account)
	return nil
}

func TestRegisterActivateLifecycle(t *testing.T) {
	repo := newMemoryAccountRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Password: "sturdy-passphrase",
	})
	require.NoError(t, err)
	require.False(t, created.IsActive)
	require.NotNil(t, created.ActivationToken)
	require.Len(t, notifier.sent, 1)

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("sturdy-passphrase")))

	active, err := svc.IsActive(ctx, "asha@example.com")
	require.NoError(t, err)
	require.False(t, active)

	ok, err := svc.Activate(ctx, *created.ActivationToken)
	require.NoError(t, err)
	require.True(t, ok)

	active, err = svc.IsActive(ctx, "asha@example.com")
	require.NoError(t, err)
	require.True(t, active)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "First", Email: "dup@example.com", Password: "password-one"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{FullName: "Second", Email: "dup@example.com", Password: "password-two"})
	require.ErrorIs(t, err, shared.ErrDuplicateEmail)
}

func TestRegisterSurvivesNotifierFailure(t *testing.T) {
	repo := newMemoryAccountRepo()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := NewService(repo, notifier, nil)

	created, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Unlucky",
		Email:    "unlucky@example.com",
		Password: "still-works",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestActivateUnknownToken(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@example.com", Password: "password"})
	require.NoError(t, err)

	ok, err := svc.Activate(ctx, "no-such-token")
	require.NoError(t, err)
	require.False(t, ok)

	active, err := svc.IsActive(ctx, "a@example.com")
	require.NoError(t, err)
	require.False(t, active)
}

func TestActivateIsIdempotent(t *testing.T) {
	repo := newMemoryAccountRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{FullName: "B", Email: "b@example.com", Password: "password"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := svc.Activate(ctx, *created.ActivationToken)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestIsActiveUnknownEmail(t *testing.T) {
	svc := NewService(newMemoryAccountRepo(), nil, nil)

	active, err := svc.IsActive(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	require.False(t, active)
}
