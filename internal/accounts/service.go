package accounts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/fintrack/internal/shared"
)

// Notifier dispatches the activation email after registration. Delivery is
// fire-and-forget: a failure never rolls back the account creation.
type Notifier interface {
	SendActivationEmail(ctx context.Context, account Account) error
}

// Service wraps account lifecycle business rules.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Register creates an inactive account with a fresh activation token and
// queues the activation email.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	token := uuid.NewString()
	account := Account{
		FullName:        input.FullName,
		Email:           input.Email,
		PasswordHash:    string(hash),
		ProfileImageURL: input.ProfileImageURL,
		ActivationToken: &token,
		IsActive:        false,
	}
	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return Account{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.SendActivationEmail(ctx, created); err != nil {
			s.logger.Warn("queue activation email",
				slog.String("email", created.Email), slog.Any("error", err))
		}
	}
	return created, nil
}

// Activate marks the account matching the token as active. Unknown tokens
// return false without error. The token is not cleared on success, so a
// repeated call with the same token reports true again.
func (s *Service) Activate(ctx context.Context, token string) (bool, error) {
	account, err := s.repo.FindByActivationToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := s.repo.MarkActive(ctx, account.ID); err != nil {
		return false, err
	}
	return true, nil
}

// IsActive reports whether the account with the given email is activated.
// Unknown emails report false rather than a distinct signal, so this path
// cannot be used to enumerate registered addresses.
func (s *Service) IsActive(ctx context.Context, email string) (bool, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.IsActive, nil
}

// FindByEmail fetches an account by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (Account, error) {
	return s.repo.FindByEmail(ctx, email)
}

// PublicProfile returns the credential-free profile for the given email.
func (s *Service) PublicProfile(ctx context.Context, email string) (Profile, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Profile{}, err
	}
	return account.PublicProfile(), nil
}

// List returns all accounts. Used by the notification jobs.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}
