package journal

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// Tolerance is the largest debit/credit difference still treated as balanced.
var Tolerance = decimal.RequireFromString("0.01")

// Totals is the running state of a set of lines. An unbalanced Totals is a
// normal state to display, not an error.
type Totals struct {
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	Difference      decimal.Decimal // TotalDebit - TotalCredit
	IsBalanced      bool
	ConvertedDebit  decimal.Decimal
	ConvertedCredit decimal.Decimal
	HasInvalid      bool // some amount failed to parse; counted as zero above
}

// CanPost reports whether the totals allow the entry to be submitted.
func (t Totals) CanPost() bool {
	return t.IsBalanced && !t.HasInvalid
}

// Summarize sums debits and credits. Invalid amounts add zero but set
// HasInvalid. A zero rate is treated as 1.
func Summarize(lines []model.JournalEntryLine, rate decimal.Decimal) Totals {
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	var t Totals
	for _, l := range lines {
		if l.Debit.Invalid || l.Credit.Invalid {
			t.HasInvalid = true
		}
		t.TotalDebit = t.TotalDebit.Add(l.Debit.Decimal())
		t.TotalCredit = t.TotalCredit.Add(l.Credit.Decimal())
	}

	t.Difference = t.TotalDebit.Sub(t.TotalCredit)
	t.IsBalanced = Balanced(t.Difference)
	t.ConvertedDebit = t.TotalDebit.Mul(rate)
	t.ConvertedCredit = t.TotalCredit.Mul(rate)
	return t
}

// Balanced reports whether |diff| is within Tolerance.
func Balanced(diff decimal.Decimal) bool {
	return diff.Abs().LessThan(Tolerance)
}
