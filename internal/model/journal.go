package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryLine is one debit-or-credit row of a journal entry.
// Account code and name are denormalized for display.
type JournalEntryLine struct {
	AccountID   string
	AccountCode string
	AccountName string
	Debit       Amount
	Credit      Amount
	Description string
}

// JournalEntry is the aggregate submitted to the persistence sink.
type JournalEntry struct {
	ID           string // "YYYY-MM-NNN", assigned on post
	Date         time.Time
	Description  string
	Currency     string
	ExchangeRate decimal.Decimal // zero means 1
	Lines        []JournalEntryLine
}

// Rate returns the exchange rate, treating an unset rate as 1.
func (e JournalEntry) Rate() decimal.Decimal {
	if e.ExchangeRate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return e.ExchangeRate
}

// OpeningBalanceEntry is a single account's starting balance.
type OpeningBalanceEntry struct {
	AccountID string
	Balance   decimal.Decimal // unsigned magnitude
	Type      Nature
}
