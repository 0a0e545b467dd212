package openingbalance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bal(id, amount string, typ model.Nature) model.OpeningBalanceEntry {
	return model.OpeningBalanceEntry{AccountID: id, Balance: dec(amount), Type: typ}
}

func TestAggregate_Balanced(t *testing.T) {
	res := Aggregate([]model.OpeningBalanceEntry{
		bal("A", "100", model.NatureDebit),
		bal("B", "60", model.NatureCredit),
		bal("C", "40", model.NatureCredit),
	})

	assert.True(t, res.TotalDebit.Equal(dec("100")))
	assert.True(t, res.TotalCredit.Equal(dec("100")))
	assert.True(t, res.Difference.IsZero())
	assert.True(t, res.IsBalanced)

	require.Len(t, res.Lines, 3)
	assert.Equal(t, "A", res.Lines[0].AccountID)
	assert.Equal(t, "100.00", res.Lines[0].Debit.String())
	assert.True(t, res.Lines[0].Credit.IsZero())
	assert.Equal(t, "60.00", res.Lines[1].Credit.String())
	assert.True(t, res.Lines[1].Debit.IsZero())
}

func TestAggregate_Unbalanced(t *testing.T) {
	res := Aggregate([]model.OpeningBalanceEntry{
		bal("A", "100", model.NatureDebit),
		bal("B", "75.50", model.NatureCredit),
	})

	assert.False(t, res.IsBalanced)
	assert.True(t, res.Difference.Equal(dec("24.50")))
	assert.Len(t, res.Lines, 2, "no corrective line")
}

func TestAggregate_Tolerance(t *testing.T) {
	res := Aggregate([]model.OpeningBalanceEntry{
		bal("A", "100.004", model.NatureDebit),
		bal("B", "100", model.NatureCredit),
	})
	assert.True(t, res.IsBalanced)
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil)
	assert.Empty(t, res.Lines)
	assert.True(t, res.IsBalanced)
}

func TestResultEntry(t *testing.T) {
	res := Aggregate([]model.OpeningBalanceEntry{
		bal("A", "100", model.NatureDebit),
		bal("Z", "0", model.NatureDebit),
		bal("B", "100", model.NatureCredit),
	})

	e := res.Entry(date(2025, 1, 1), "Opening balances", "USD")
	assert.Equal(t, "Opening balances", e.Description)
	assert.Equal(t, "USD", e.Currency)
	require.Len(t, e.Lines, 2, "zero balance left out")
	assert.Equal(t, "A", e.Lines[0].AccountID)
	assert.Equal(t, "B", e.Lines[1].AccountID)
}

func TestMerge(t *testing.T) {
	existing := []model.OpeningBalanceEntry{
		bal("A", "10", model.NatureDebit),
		bal("B", "10", model.NatureCredit),
	}
	imported := []model.OpeningBalanceEntry{
		bal("C", "5", model.NatureCredit),
		bal("A", "25", model.NatureDebit),
	}

	got := Merge(existing, imported)
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].AccountID)
	assert.True(t, got[0].Balance.Equal(dec("25")), "imported replaces in place")
	assert.Equal(t, "B", got[1].AccountID)
	assert.Equal(t, "C", got[2].AccountID)
	assert.True(t, existing[0].Balance.Equal(dec("10")), "input untouched")
}
