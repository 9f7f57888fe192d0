package categories

import (
	"fmt"
	"time"

	"github.com/fintrack/fintrack/internal/shared"
)

// Type is the closed set of category kinds.
type Type string

const (
	TypeExpense Type = "expense"
	TypeIncome  Type = "income"
)

// ParseType validates a raw type string against the closed set.
func ParseType(raw string) (Type, error) {
	switch Type(raw) {
	case TypeExpense, TypeIncome:
		return Type(raw), nil
	default:
		return "", fmt.Errorf("%w: category type %q", shared.ErrInvalidFilter, raw)
	}
}

// Category is a named, typed classification owned by one account.
type Category struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"-"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Type      Type      `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateInput carries the fields accepted at category creation.
type CreateInput struct {
	Name string
	Icon string
	Type Type
}

// UpdateInput carries the mutable category fields.
type UpdateInput struct {
	Name string
	Icon string
}
