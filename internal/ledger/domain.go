package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fintrack/fintrack/internal/shared"
)

// Kind distinguishes the two instances of the shared transaction shape.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// ParseKind validates a raw kind string against the closed set.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindExpense, KindIncome:
		return Kind(raw), nil
	default:
		return "", fmt.Errorf("%w: transaction kind %q", shared.ErrInvalidFilter, raw)
	}
}

// Transaction is a single dated monetary record owned by one account and one
// category. Timestamps are system-assigned and immutable by callers.
type Transaction struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"-"`
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Kind         Kind            `json:"-"`
	Name         string          `json:"name"`
	Icon         string          `json:"icon,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// AddInput carries the fields accepted when recording a transaction.
type AddInput struct {
	CategoryID int64
	Name       string
	Icon       string
	Amount     decimal.Decimal
	// Date is optional; the zero value defaults to today in server local time.
	Date time.Time
}

// Sort fields and orders accepted by Filter.
const (
	SortByDate   = "date"
	SortByAmount = "amount"
	SortByName   = "name"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// FilterInput composes the dynamic filter query. Nil date bounds are
// unbounded on that side; the keyword matches name as a case-insensitive
// substring.
type FilterInput struct {
	StartDate *time.Time
	EndDate   *time.Time
	Keyword   string
	SortField string
	SortOrder string
}

// Validate rejects unrecognized sort parameters instead of defaulting them.
func (f FilterInput) Validate() error {
	switch f.SortField {
	case SortByDate, SortByAmount, SortByName:
	default:
		return fmt.Errorf("%w: sort field %q", shared.ErrInvalidFilter, f.SortField)
	}
	switch f.SortOrder {
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("%w: sort order %q", shared.ErrInvalidFilter, f.SortOrder)
	}
	return nil
}

// DateOnly truncates a time to its civil date in the given location.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
