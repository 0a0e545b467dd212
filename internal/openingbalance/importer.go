package openingbalance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

var (
	// ErrMissingColumn indicates the header lacks a required column.
	ErrMissingColumn = errors.New("openingbalance: missing column")
	// ErrBadRow indicates a row whose values could not be used.
	ErrBadRow = errors.New("openingbalance: bad row")
)

// Column names recognized in an import header. Matching ignores case and
// surrounding space.
const (
	colAccountCode = "account_code"
	colBalance     = "balance"
	colType        = "type"
	colDebit       = "debit"
	colCredit      = "credit"
)

// Row is one parsed import row. Type is empty when the file did not say
// which side the balance is on.
type Row struct {
	Line        int
	AccountCode string
	Balance     model.Amount
	Type        model.Nature
}

// RowError describes a row that was rejected.
type RowError struct {
	Line        int
	AccountCode string
	Field       string
	Value       string
	Err         error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// ImportResult reports what an import matched and what it left out.
type ImportResult struct {
	Balances     []model.OpeningBalanceEntry
	TotalRows    int
	Skipped      int      // rows whose account code matched no account
	SkippedCodes []string // distinct unmatched codes in file order
	Errors       []RowError
}

// AccountFinder looks accounts up by code.
type AccountFinder interface {
	ByCode(code string) (model.Account, bool)
}

// ReadRows parses a header-driven CSV with account_code plus either
// balance and type, or debit and credit. Structural problems are returned
// as err; per-row problems are collected in rowErrs.
func ReadRows(r io.Reader) (rows []Row, rowErrs []RowError, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading opening balance CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	if _, ok := cols[colAccountCode]; !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, colAccountCode)
	}
	_, hasBalance := cols[colBalance]
	_, hasDebit := cols[colDebit]
	_, hasCredit := cols[colCredit]
	split := hasDebit && hasCredit
	if !hasBalance && !split {
		return nil, nil, fmt.Errorf("%w: need %s or %s and %s", ErrMissingColumn, colBalance, colDebit, colCredit)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for i, rec := range records[1:] {
		line := i + 2
		code := field(rec, colAccountCode)
		if code == "" && isBlank(rec) {
			continue
		}

		row := Row{Line: line, AccountCode: code}
		var rerr *RowError
		if split {
			row.Balance, row.Type, rerr = splitAmount(field(rec, colDebit), field(rec, colCredit))
		} else {
			row.Balance, row.Type, rerr = typedAmount(field(rec, colBalance), field(rec, colType))
		}
		if rerr == nil && code == "" {
			rerr = &RowError{Field: colAccountCode, Err: fmt.Errorf("%w: account code is required", ErrBadRow)}
		}
		if rerr != nil {
			rerr.Line = line
			rerr.AccountCode = code
			rowErrs = append(rowErrs, *rerr)
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func typedAmount(rawBalance, rawType string) (model.Amount, model.Nature, *RowError) {
	bal := model.ParseAmount(rawBalance)
	if bal.Invalid {
		return model.Amount{}, "", &RowError{Field: colBalance, Value: rawBalance, Err: fmt.Errorf("%w: not a valid amount", ErrBadRow)}
	}
	if rawType == "" {
		return bal, "", nil
	}
	nature, err := model.ParseNature(rawType)
	if err != nil {
		return model.Amount{}, "", &RowError{Field: colType, Value: rawType, Err: fmt.Errorf("%w: %v", ErrBadRow, err)}
	}
	return bal, nature, nil
}

func splitAmount(rawDebit, rawCredit string) (model.Amount, model.Nature, *RowError) {
	debit := model.ParseAmount(rawDebit)
	if debit.Invalid {
		return model.Amount{}, "", &RowError{Field: colDebit, Value: rawDebit, Err: fmt.Errorf("%w: not a valid amount", ErrBadRow)}
	}
	credit := model.ParseAmount(rawCredit)
	if credit.Invalid {
		return model.Amount{}, "", &RowError{Field: colCredit, Value: rawCredit, Err: fmt.Errorf("%w: not a valid amount", ErrBadRow)}
	}
	switch {
	case debit.IsPositive() && credit.IsPositive():
		return model.Amount{}, "", &RowError{Field: colDebit, Value: rawDebit, Err: fmt.Errorf("%w: both debit and credit set", ErrBadRow)}
	case debit.IsPositive():
		return debit, model.NatureDebit, nil
	case credit.IsPositive():
		return credit, model.NatureCredit, nil
	}
	return model.Amount{}, "", nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Match maps rows to accounts by code. Rows with an unknown code are
// dropped from Balances and counted in Skipped. A row without a type takes
// the account's nature. A later row for the same account replaces an
// earlier one.
func Match(rows []Row, accounts AccountFinder) ImportResult {
	res := ImportResult{TotalRows: len(rows)}
	seenSkipped := make(map[string]bool)
	var matched []model.OpeningBalanceEntry

	for _, row := range rows {
		acct, ok := accounts.ByCode(row.AccountCode)
		if !ok {
			res.Skipped++
			if !seenSkipped[row.AccountCode] {
				seenSkipped[row.AccountCode] = true
				res.SkippedCodes = append(res.SkippedCodes, row.AccountCode)
			}
			continue
		}
		typ := row.Type
		if typ == "" {
			typ = acct.Nature
		}
		matched = append(matched, model.OpeningBalanceEntry{
			AccountID: acct.ID,
			Balance:   row.Balance.Decimal(),
			Type:      typ,
		})
	}
	res.Balances = Merge(nil, matched)
	return res
}

// Import reads and matches an opening balance file. Skipped rows are
// logged at warn level with their codes.
func Import(r io.Reader, accounts AccountFinder, log logrus.FieldLogger) (ImportResult, error) {
	rows, rowErrs, err := ReadRows(r)
	if err != nil {
		return ImportResult{}, err
	}

	res := Match(rows, accounts)
	res.TotalRows += len(rowErrs)
	res.Errors = rowErrs

	if res.Skipped > 0 {
		log.WithFields(logrus.Fields{
			"skipped": res.Skipped,
			"codes":   strings.Join(res.SkippedCodes, ","),
		}).Warn("OpeningBalance.Import.Skipped")
	}
	for _, re := range rowErrs {
		log.WithError(re).Warn("OpeningBalance.Import.RowError")
	}
	log.WithFields(logrus.Fields{
		"rows":     res.TotalRows,
		"balances": len(res.Balances),
	}).Info("OpeningBalance.Import.Complete")
	return res, nil
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// importDir is the subdirectory for opening balance CSVs.
const importDir = "import/opening-balances"

// processedDir is the subdirectory for imported CSVs.
const processedDir = "import/opening-balances/processed"

// Scan returns CSV files in <repoRoot>/import/opening-balances/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file into the processed subdirectory.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, importDir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
