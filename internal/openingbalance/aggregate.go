package openingbalance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerdesk/internal/journal"
	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// Result is the aggregate of a set of opening balances. An unbalanced
// Result is reported as is; no suspense line is added.
type Result struct {
	Lines       []model.JournalEntryLine
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal // TotalDebit - TotalCredit
	IsBalanced  bool
}

// Aggregate converts single-account balances into one line each, debit or
// credit according to the balance type.
func Aggregate(balances []model.OpeningBalanceEntry) Result {
	r := Result{Lines: make([]model.JournalEntryLine, 0, len(balances))}
	for _, b := range balances {
		line := model.JournalEntryLine{AccountID: b.AccountID}
		switch b.Type {
		case model.NatureDebit:
			line.Debit = model.NewAmount(b.Balance)
			r.TotalDebit = r.TotalDebit.Add(b.Balance)
		case model.NatureCredit:
			line.Credit = model.NewAmount(b.Balance)
			r.TotalCredit = r.TotalCredit.Add(b.Balance)
		}
		r.Lines = append(r.Lines, line)
	}
	r.Difference = r.TotalDebit.Sub(r.TotalCredit)
	r.IsBalanced = journal.Balanced(r.Difference)
	return r
}

// Entry builds the journal entry payload. Lines with a zero balance are
// left out since they carry no amount to post.
func (r Result) Entry(date time.Time, description, currency string) model.JournalEntry {
	lines := make([]model.JournalEntryLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		if l.Debit.IsZero() && l.Credit.IsZero() {
			continue
		}
		lines = append(lines, l)
	}
	return model.JournalEntry{
		Date:        date,
		Description: description,
		Currency:    currency,
		Lines:       lines,
	}
}

// Merge overlays imported balances onto existing ones. An imported balance
// replaces the existing balance for the same account in place; new accounts
// are appended in import order.
func Merge(existing, imported []model.OpeningBalanceEntry) []model.OpeningBalanceEntry {
	out := make([]model.OpeningBalanceEntry, 0, len(existing)+len(imported))
	pos := make(map[string]int, len(existing)+len(imported))
	for _, set := range [][]model.OpeningBalanceEntry{existing, imported} {
		for _, b := range set {
			if i, ok := pos[b.AccountID]; ok {
				out[i] = b
				continue
			}
			pos[b.AccountID] = len(out)
			out = append(out, b)
		}
	}
	return out
}
