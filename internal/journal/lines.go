package journal

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// ErrLineIndex is returned when a Draft mutation targets a missing line.
var ErrLineIndex = errors.New("journal: line index out of range")

// minLines is the number of rows a new draft starts with and never drops below.
const minLines = 2

// IsEmpty reports whether a line carries no user data at all. An amount that
// failed to parse counts as data.
func IsEmpty(l model.JournalEntryLine) bool {
	return l.AccountID == "" &&
		strings.TrimSpace(l.Description) == "" &&
		l.Debit.Blank() &&
		l.Credit.Blank()
}

// IsFilled reports whether a line has an account plus a description or amount.
func IsFilled(l model.JournalEntryLine) bool {
	if l.AccountID == "" {
		return false
	}
	return strings.TrimSpace(l.Description) != "" || !l.Debit.Blank() || !l.Credit.Blank()
}

// CleanEmptyLines returns the non-empty lines in their original order.
// The input is not modified.
func CleanEmptyLines(lines []model.JournalEntryLine) []model.JournalEntryLine {
	out := make([]model.JournalEntryLine, 0, len(lines))
	for _, l := range lines {
		if !IsEmpty(l) {
			out = append(out, l)
		}
	}
	return out
}

// Draft is a journal entry being edited line by line. Every mutation keeps
// debit and credit mutually exclusive and keeps a blank row available once
// real entry has started.
type Draft struct {
	lines []model.JournalEntryLine
}

// NewDraft returns a draft with two empty lines.
func NewDraft() *Draft {
	return &Draft{lines: make([]model.JournalEntryLine, minLines)}
}

// DraftFrom starts a draft from existing lines. The slice is copied.
func DraftFrom(lines []model.JournalEntryLine) *Draft {
	d := &Draft{lines: slices.Clone(lines)}
	for len(d.lines) < minLines {
		d.lines = append(d.lines, model.JournalEntryLine{})
	}
	d.autoAppend()
	return d
}

// Lines returns a copy of the current lines.
func (d *Draft) Lines() []model.JournalEntryLine {
	return slices.Clone(d.lines)
}

// Len returns the number of lines including blanks.
func (d *Draft) Len() int {
	return len(d.lines)
}

// Line returns the line at i.
func (d *Draft) Line(i int) (model.JournalEntryLine, error) {
	if err := d.checkIndex(i); err != nil {
		return model.JournalEntryLine{}, err
	}
	return d.lines[i], nil
}

// SetAccount assigns the account on line i.
func (d *Draft) SetAccount(i int, acct model.Account) error {
	return d.mutate(i, func(l *model.JournalEntryLine) {
		l.AccountID = acct.ID
		l.AccountCode = acct.Code
		l.AccountName = acct.Name
	})
}

// ClearAccount removes the account from line i.
func (d *Draft) ClearAccount(i int) error {
	return d.mutate(i, func(l *model.JournalEntryLine) {
		l.AccountID = ""
		l.AccountCode = ""
		l.AccountName = ""
	})
}

// SetDebit sets the debit on line i. A positive debit clears the credit.
func (d *Draft) SetDebit(i int, a model.Amount) error {
	return d.mutate(i, func(l *model.JournalEntryLine) {
		l.Debit = a
		if a.IsPositive() {
			l.Credit = model.Amount{}
		}
	})
}

// SetCredit sets the credit on line i. A positive credit clears the debit.
func (d *Draft) SetCredit(i int, a model.Amount) error {
	return d.mutate(i, func(l *model.JournalEntryLine) {
		l.Credit = a
		if a.IsPositive() {
			l.Debit = model.Amount{}
		}
	})
}

// SetDescription sets the memo on line i.
func (d *Draft) SetDescription(i int, desc string) error {
	return d.mutate(i, func(l *model.JournalEntryLine) {
		l.Description = desc
	})
}

// AddLine appends an empty line.
func (d *Draft) AddLine() {
	d.lines = append(d.lines, model.JournalEntryLine{})
	d.autoAppend()
}

// RemoveLine deletes line i. A draft never drops below two lines.
func (d *Draft) RemoveLine(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if len(d.lines) <= minLines {
		return fmt.Errorf("journal: draft must keep at least %d lines", minLines)
	}
	d.lines = slices.Delete(d.lines, i, i+1)
	d.autoAppend()
	return nil
}

// Summarize totals the draft at the given exchange rate.
func (d *Draft) Summarize(rate decimal.Decimal) Totals {
	return Summarize(d.lines, rate)
}

// Entry builds the payload for posting. Empty lines are pruned.
func (d *Draft) Entry(header model.JournalEntry) model.JournalEntry {
	header.Lines = CleanEmptyLines(d.lines)
	return header
}

func (d *Draft) mutate(i int, fn func(*model.JournalEntryLine)) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	fn(&d.lines[i])
	d.autoAppend()
	return nil
}

func (d *Draft) checkIndex(i int) error {
	if i < 0 || i >= len(d.lines) {
		return fmt.Errorf("%w: %d of %d", ErrLineIndex, i, len(d.lines))
	}
	return nil
}

// autoAppend adds one blank row once the second line is filled and the
// draft has no trailing blank. The appended row is empty, so a second call
// is a no-op.
func (d *Draft) autoAppend() {
	if len(d.lines) < minLines || !IsFilled(d.lines[1]) {
		return
	}
	if IsEmpty(d.lines[len(d.lines)-1]) {
		return
	}
	d.lines = append(d.lines, model.JournalEntryLine{})
}
