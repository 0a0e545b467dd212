package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Nature is the side on which an account's balance normally increases.
type Nature string

const (
	NatureDebit  Nature = "debit"
	NatureCredit Nature = "credit"
)

// AccountTypes lists every valid account type in chart order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// ParseAccountType converts a raw string into an AccountType.
// Unknown values are an error rather than a silent default.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Nature returns the normal-balance side for the type.
// Assets and expenses are debit accounts; everything else is credit.
func (t AccountType) Nature() Nature {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return NatureDebit
	default:
		return NatureCredit
	}
}

// ParseNature converts a raw string into a Nature.
func ParseNature(s string) (Nature, error) {
	n := Nature(strings.ToLower(strings.TrimSpace(s)))
	if !n.Valid() {
		return "", fmt.Errorf("unknown nature %q", s)
	}
	return n, nil
}

// Valid reports whether n is debit or credit.
func (n Nature) Valid() bool {
	return n == NatureDebit || n == NatureCredit
}

// Account is a node in the chart of accounts.
type Account struct {
	ID       string
	Code     string // hierarchical, e.g. "1", "1.1", "1.1.2"
	Name     string
	NameEn   string
	Type     AccountType
	ParentID string // "" = main account
	Level    int    // 1 for main accounts
	Nature   Nature
	Balance  decimal.Decimal
}

// IsRoot reports whether the account has no parent.
func (a Account) IsRoot() bool {
	return a.ParentID == ""
}

// AccountTreeNode wraps an Account with its ordered children.
// Nodes are rebuilt from the flat account list and own their children.
type AccountTreeNode struct {
	Account  Account
	Level    int
	Children []*AccountTreeNode
}
