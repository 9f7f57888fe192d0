package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/fintrack/fintrack/internal/shared"
)

// Service enforces category business rules, including ownership. Every
// operation takes the acting account id explicitly.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new category for the acting account.
func (s *Service) Create(ctx context.Context, actingAccountID int64, input CreateInput) (Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return Category{}, errors.New("category name is required")
	}
	if _, err := ParseType(string(input.Type)); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, Category{
		AccountID: actingAccountID,
		Name:      input.Name,
		Icon:      input.Icon,
		Type:      input.Type,
	})
}

// ListForAccount returns all categories owned by the acting account.
func (s *Service) ListForAccount(ctx context.Context, actingAccountID int64) ([]Category, error) {
	return s.repo.ListForAccount(ctx, actingAccountID)
}

// ListForAccountByType returns the acting account's categories of one type.
// Values outside the closed set are rejected, never defaulted.
func (s *Service) ListForAccountByType(ctx context.Context, actingAccountID int64, rawType string) ([]Category, error) {
	t, err := ParseType(rawType)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForAccountByType(ctx, actingAccountID, t)
}

// Update modifies a category after checking ownership. The ownership check
// happens here, before any write reaches storage.
func (s *Service) Update(ctx context.Context, actingAccountID, categoryID int64, input UpdateInput) (Category, error) {
	existing, err := s.repo.Get(ctx, categoryID)
	if err != nil {
		return Category{}, err
	}
	if existing.AccountID != actingAccountID {
		return Category{}, shared.ErrForbidden
	}
	existing.Name = input.Name
	existing.Icon = input.Icon
	return s.repo.Update(ctx, existing)
}

// Delete removes a category after checking ownership. Storage failures, such
// as the referential constraint from existing transactions, are wrapped so
// they surface as a client error carrying the original message.
func (s *Service) Delete(ctx context.Context, actingAccountID, categoryID int64) error {
	existing, err := s.repo.Get(ctx, categoryID)
	if err != nil {
		return err
	}
	if existing.AccountID != actingAccountID {
		return shared.ErrForbidden
	}
	if err := s.repo.Delete(ctx, categoryID); err != nil {
		return shared.DeleteFailed(err)
	}
	return nil
}
