package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack/fintrack/internal/accounts"
	"github.com/fintrack/fintrack/internal/shared"
)

// AccountSource resolves stored accounts during authentication.
type AccountSource interface {
	FindByEmail(ctx context.Context, email string) (accounts.Account, error)
}

// Service verifies credentials and issues session tokens.
type Service struct {
	source AccountSource
	tokens *TokenIssuer
}

// NewService constructs a new Service.
func NewService(source AccountSource, tokens *TokenIssuer) *Service {
	return &Service{source: source, tokens: tokens}
}

// Authenticate validates email/password credentials and returns a session
// token. Unknown email, wrong password, inactive account and internal lookup
// failures all collapse into shared.ErrInvalidCredentials so the response
// never reveals which check failed.
func (s *Service) Authenticate(ctx context.Context, email, password string) (accounts.Account, string, error) {
	account, err := s.source.FindByEmail(ctx, email)
	if err != nil {
		return accounts.Account{}, "", shared.ErrInvalidCredentials
	}
	if !account.IsActive {
		return accounts.Account{}, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return accounts.Account{}, "", shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(account.Email)
	if err != nil {
		return accounts.Account{}, "", shared.ErrInvalidCredentials
	}
	return account, token, nil
}

// CurrentAccount resolves the account bound to a previously validated session
// subject. A subject that no longer resolves reports shared.ErrNotFound: the
// account was deleted between token issue and use.
func (s *Service) CurrentAccount(ctx context.Context, subject string) (accounts.Account, error) {
	if subject == "" {
		return accounts.Account{}, shared.ErrUnauthenticated
	}
	return s.source.FindByEmail(ctx, subject)
}
