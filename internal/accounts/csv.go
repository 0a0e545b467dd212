package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
var Header = []string{"account_id", "code", "name", "name_en", "account_type", "parent_id", "level", "nature", "balance"}

const (
	numFields = 9
	colID     = 0
	colCode   = 1
	colName   = 2
	colNameEn = 3
	colType   = 4
	colParent = 5
	colLevel  = 6
	colNature = 7
	colBal    = 8
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colNameEn] = acct.NameEn
	row[colType] = string(acct.Type)
	row[colParent] = acct.ParentID
	row[colLevel] = strconv.Itoa(levelOf(acct))
	row[colNature] = string(acct.Nature)
	if !acct.Balance.IsZero() {
		row[colBal] = acct.Balance.StringFixed(2)
	}
	return row
}

// UnmarshalAccount converts a CSV row to an Account. Unknown types and
// natures are rejected; a blank nature is derived from the type.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	if record[colID] == "" {
		return model.Account{}, fmt.Errorf("missing account_id")
	}

	typ, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, err
	}

	nature := typ.Nature()
	if record[colNature] != "" {
		nature, err = model.ParseNature(record[colNature])
		if err != nil {
			return model.Account{}, err
		}
	}

	level := 1
	if record[colLevel] != "" {
		level, err = strconv.Atoi(record[colLevel])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing level %q: %w", record[colLevel], err)
		}
	}

	var balance decimal.Decimal
	if record[colBal] != "" {
		balance, err = decimal.NewFromString(record[colBal])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[colBal], err)
		}
	}

	return model.Account{
		ID:       record[colID],
		Code:     record[colCode],
		Name:     record[colName],
		NameEn:   record[colNameEn],
		Type:     typ,
		ParentID: record[colParent],
		Level:    level,
		Nature:   nature,
		Balance:  balance,
	}, nil
}
