package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fintrack/fintrack/internal/shared"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("expense")
	require.NoError(t, err)
	require.Equal(t, KindExpense, kind)

	kind, err = ParseKind("income")
	require.NoError(t, err)
	require.Equal(t, KindIncome, kind)

	_, err = ParseKind("transfer")
	require.ErrorIs(t, err, shared.ErrInvalidFilter)
}

func TestFilterInputValidate(t *testing.T) {
	valid := FilterInput{SortField: SortByName, SortOrder: SortDesc}
	require.NoError(t, valid.Validate())

	// an empty field is unrecognized, not defaulted
	require.ErrorIs(t, FilterInput{SortOrder: SortAsc}.Validate(), shared.ErrInvalidFilter)
	require.ErrorIs(t, FilterInput{SortField: SortByDate}.Validate(), shared.ErrInvalidFilter)
	require.ErrorIs(t, FilterInput{SortField: "category", SortOrder: SortAsc}.Validate(), shared.ErrInvalidFilter)
}

func TestDateOnly(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC on the 5th is 01:30 on the 6th in Kolkata
	in := time.Date(2026, time.March, 5, 20, 0, 0, 0, time.UTC)
	got := DateOnly(in, loc)
	require.Equal(t, 2026, got.Year())
	require.Equal(t, time.March, got.Month())
	require.Equal(t, 6, got.Day())
	require.Equal(t, 0, got.Hour())
}
