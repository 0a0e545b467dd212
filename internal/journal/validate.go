package journal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

var (
	// ErrUnbalanced indicates debits and credits differ by at least Tolerance.
	ErrUnbalanced = errors.New("journal: entry does not balance")
	// ErrInvalidAmount indicates an amount that failed to parse.
	ErrInvalidAmount = errors.New("journal: invalid amount")
	// ErrTooFewLines indicates fewer than two non-empty lines.
	ErrTooFewLines = errors.New("journal: entry needs at least two lines")
	// ErrBothSides indicates a line with both a debit and a credit.
	ErrBothSides = errors.New("journal: line has both debit and credit")
	// ErrNoAmount indicates a line with neither a debit nor a credit.
	ErrNoAmount = errors.New("journal: line has no amount")
	// ErrUnknownAccount indicates a line whose account is missing or unknown.
	ErrUnknownAccount = errors.New("journal: unknown account")
	// ErrPrecision indicates an amount with more than two decimal places.
	ErrPrecision = errors.New("journal: amount has more than 2 decimal places")
	// ErrMissingDate indicates an entry without a date.
	ErrMissingDate = errors.New("journal: entry has no date")
)

// ValidationError describes a single rule violation. Line is the 1-based
// line number, or 0 for entry-level rules.
type ValidationError struct {
	Err         error
	Line        int
	Description string
}

func (e ValidationError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Description)
	}
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Description)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id string) bool
}

// ValidateEntry is the save guard run before an entry is posted. It expects
// empty lines to have been pruned already; any left count against the entry.
func ValidateEntry(entry model.JournalEntry, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	if entry.Date.IsZero() {
		errs = append(errs, ValidationError{Err: ErrMissingDate, Description: "date is required"})
	}

	if n := len(CleanEmptyLines(entry.Lines)); n < 2 {
		errs = append(errs, ValidationError{
			Err:         ErrTooFewLines,
			Description: fmt.Sprintf("%d non-empty lines", n),
		})
	}

	hundred := decimal.NewFromInt(100)
	for i, l := range entry.Lines {
		n := i + 1

		for _, side := range []struct {
			name string
			amt  model.Amount
		}{{"debit", l.Debit}, {"credit", l.Credit}} {
			if side.amt.Invalid {
				errs = append(errs, ValidationError{
					Err:         ErrInvalidAmount,
					Line:        n,
					Description: fmt.Sprintf("%s %q is not a valid amount", side.name, side.amt.Raw),
				})
				continue
			}
			if v := side.amt.Value; !v.IsZero() && !v.Mul(hundred).Equal(v.Mul(hundred).Floor()) {
				errs = append(errs, ValidationError{
					Err:         ErrPrecision,
					Line:        n,
					Description: fmt.Sprintf("%s %s", side.name, v),
				})
			}
		}

		hasDebit := !l.Debit.Blank()
		hasCredit := !l.Credit.Blank()
		switch {
		case hasDebit && hasCredit:
			errs = append(errs, ValidationError{Err: ErrBothSides, Line: n, Description: "set either debit or credit"})
		case !hasDebit && !hasCredit:
			errs = append(errs, ValidationError{Err: ErrNoAmount, Line: n, Description: "set a debit or credit"})
		}

		if l.AccountID == "" || (accounts != nil && !accounts.Exists(l.AccountID)) {
			errs = append(errs, ValidationError{
				Err:         ErrUnknownAccount,
				Line:        n,
				Description: fmt.Sprintf("account %q", l.AccountID),
			})
		}
	}

	t := Summarize(entry.Lines, entry.Rate())
	if !t.IsBalanced {
		errs = append(errs, ValidationError{
			Err:         ErrUnbalanced,
			Description: fmt.Sprintf("debits (%s) != credits (%s)", t.TotalDebit.StringFixed(2), t.TotalCredit.StringFixed(2)),
		})
	}

	return errs
}

// Join combines validation errors into one error that matches every
// sentinel with errors.Is. Returns nil for an empty slice.
func Join(verrs []ValidationError) error {
	if len(verrs) == 0 {
		return nil
	}
	errs := make([]error, len(verrs))
	for i, ve := range verrs {
		errs[i] = ve
	}
	return errors.Join(errs...)
}
