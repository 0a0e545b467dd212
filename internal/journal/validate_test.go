package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

type mockAccounts struct {
	ids map[string]bool
}

func (m *mockAccounts) Exists(id string) bool {
	return m.ids[id]
}

func newMockAccounts(ids ...string) *mockAccounts {
	m := &mockAccounts{ids: make(map[string]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func balancedEntry(amount string) model.JournalEntry {
	return model.JournalEntry{
		Date:        date(2025, 1, 15),
		Description: "Owner contribution",
		Currency:    "USD",
		Lines: []model.JournalEntryLine{
			filled("a", amount, ""),
			filled("b", "", amount),
		},
	}
}

func hasErr(verrs []ValidationError, target error) bool {
	for _, ve := range verrs {
		if errors.Is(ve, target) {
			return true
		}
	}
	return false
}

func TestValidate_Balanced(t *testing.T) {
	errs := ValidateEntry(balancedEntry("100.00"), newMockAccounts("a", "b"))
	assert.Empty(t, errs)
}

func TestValidate_Unbalanced(t *testing.T) {
	e := balancedEntry("100.00")
	e.Lines[1].Credit = amt("99.00")

	errs := ValidateEntry(e, newMockAccounts("a", "b"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnbalanced)
	assert.Equal(t, 0, errs[0].Line)
	assert.Contains(t, errs[0].Error(), "debits (100.00) != credits (99.00)")
}

func TestValidate_InvalidAmountBlocksEvenWhenBalanced(t *testing.T) {
	e := balancedEntry("0")
	e.Lines[0].Debit = amt("12,50")
	e.Lines[1].Credit = amt("oops")

	errs := ValidateEntry(e, newMockAccounts("a", "b"))
	assert.True(t, hasErr(errs, ErrInvalidAmount))
	assert.False(t, hasErr(errs, ErrUnbalanced), "coerced totals are zero on both sides")
}

func TestValidate_BothSides(t *testing.T) {
	e := balancedEntry("10")
	e.Lines = append(e.Lines, filled("a", "5", "5"))

	errs := ValidateEntry(e, newMockAccounts("a", "b"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrBothSides)
	assert.Equal(t, 3, errs[0].Line)
}

func TestValidate_NoAmount(t *testing.T) {
	e := balancedEntry("10")
	e.Lines = append(e.Lines, model.JournalEntryLine{AccountID: "a", Description: "memo only"})

	errs := ValidateEntry(e, newMockAccounts("a", "b"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrNoAmount)
}

func TestValidate_UnknownAccount(t *testing.T) {
	errs := ValidateEntry(balancedEntry("10"), newMockAccounts("a"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrUnknownAccount)
	assert.Equal(t, 2, errs[0].Line)
}

func TestValidate_MissingAccountWithoutChecker(t *testing.T) {
	e := balancedEntry("10")
	e.Lines[0].AccountID = ""

	errs := ValidateEntry(e, nil)
	assert.True(t, hasErr(errs, ErrUnknownAccount))
}

func TestValidate_TooFewLines(t *testing.T) {
	e := balancedEntry("0")
	e.Lines = []model.JournalEntryLine{{}, {}}

	errs := ValidateEntry(e, newMockAccounts())
	assert.True(t, hasErr(errs, ErrTooFewLines))
}

func TestValidate_Precision(t *testing.T) {
	errs := ValidateEntry(balancedEntry("10.123"), newMockAccounts("a", "b"))
	require.Len(t, errs, 2)
	for _, ve := range errs {
		assert.ErrorIs(t, ve, ErrPrecision)
	}
}

func TestValidate_MissingDate(t *testing.T) {
	e := balancedEntry("10")
	e.Date = time.Time{}
	errs := ValidateEntry(e, newMockAccounts("a", "b"))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMissingDate)
}

func TestJoin(t *testing.T) {
	assert.NoError(t, Join(nil))

	e := balancedEntry("10")
	e.Lines[1].Credit = amt("x")
	err := Join(ValidateEntry(e, newMockAccounts("a")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.ErrorIs(t, err, ErrUnbalanced)
}
