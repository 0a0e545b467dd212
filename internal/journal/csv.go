package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// Header is the CSV header for journal.csv. Each row is one entry line;
// entry-level fields repeat on every line of the entry.
var Header = []string{
	"entry_id", "line", "date", "entry_description", "currency", "exchange_rate",
	"account_id", "account_code", "account_name", "description", "debit", "credit",
}

const (
	numFields    = 12
	dateFormat   = "2006-01-02"
	colEntryID   = 0
	colLine      = 1
	colDate      = 2
	colEntryDesc = 3
	colCurrency  = 4
	colRate      = 5
	colAcctID    = 6
	colAcctCode  = 7
	colAcctName  = 8
	colDesc      = 9
	colDebit     = 10
	colCredit    = 11
)

// ReadEntries reads a journal.csv reader and groups rows into entries in
// file order.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.JournalEntry
	index := make(map[string]int)
	for i, rec := range records[1:] {
		entry, line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		j, seen := index[entry.ID]
		if !seen {
			j = len(entries)
			index[entry.ID] = j
			entries = append(entries, entry)
		}
		entries[j].Lines = append(entries[j].Lines, line)
	}
	return entries, nil
}

// WriteEntries writes entries to a journal.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := writeRows(cw, entries); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// AppendEntries appends entries to an existing journal.csv writer (no header).
func AppendEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	if err := writeRows(cw, entries); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeRows(cw *csv.Writer, entries []model.JournalEntry) error {
	for _, e := range entries {
		for i := range e.Lines {
			if err := cw.Write(MarshalLine(e, i)); err != nil {
				return fmt.Errorf("writing %s line %d: %w", e.ID, i+1, err)
			}
		}
	}
	return nil
}

// MarshalLine converts line i of an entry to a CSV row.
func MarshalLine(e model.JournalEntry, i int) []string {
	l := e.Lines[i]
	row := make([]string, numFields)
	row[colEntryID] = e.ID
	row[colLine] = strconv.Itoa(i + 1)
	row[colDate] = e.Date.Format(dateFormat)
	row[colEntryDesc] = e.Description
	row[colCurrency] = e.Currency
	if !e.ExchangeRate.IsZero() {
		row[colRate] = e.ExchangeRate.String()
	}
	row[colAcctID] = l.AccountID
	row[colAcctCode] = l.AccountCode
	row[colAcctName] = l.AccountName
	row[colDesc] = l.Description
	if !l.Debit.IsZero() {
		row[colDebit] = l.Debit.String()
	}
	if !l.Credit.IsZero() {
		row[colCredit] = l.Credit.String()
	}
	return row
}

// UnmarshalLine converts a CSV row to its entry header and line. Stored
// amounts must parse; an invalid amount is a row error.
func UnmarshalLine(record []string) (model.JournalEntry, model.JournalEntryLine, error) {
	if len(record) != numFields {
		return model.JournalEntry{}, model.JournalEntryLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.JournalEntry{}, model.JournalEntryLine{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	var rate decimal.Decimal
	if record[colRate] != "" {
		rate, err = decimal.NewFromString(record[colRate])
		if err != nil {
			return model.JournalEntry{}, model.JournalEntryLine{}, fmt.Errorf("parsing exchange_rate %q: %w", record[colRate], err)
		}
	}

	debit := model.ParseAmount(record[colDebit])
	if debit.Invalid {
		return model.JournalEntry{}, model.JournalEntryLine{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], ErrInvalidAmount)
	}
	credit := model.ParseAmount(record[colCredit])
	if credit.Invalid {
		return model.JournalEntry{}, model.JournalEntryLine{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], ErrInvalidAmount)
	}

	entry := model.JournalEntry{
		ID:           record[colEntryID],
		Date:         date,
		Description:  record[colEntryDesc],
		Currency:     record[colCurrency],
		ExchangeRate: rate,
	}
	line := model.JournalEntryLine{
		AccountID:   record[colAcctID],
		AccountCode: record[colAcctCode],
		AccountName: record[colAcctName],
		Debit:       debit,
		Credit:      credit,
		Description: record[colDesc],
	}
	return entry, line, nil
}
