package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

func TestRoundTrip(t *testing.T) {
	chart := DefaultChart("company")
	chart[2].Balance = decimal.RequireFromString("1250.50")

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, chart))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(chart))

	for i := range chart {
		assert.Equal(t, chart[i].ID, got[i].ID)
		assert.Equal(t, chart[i].Code, got[i].Code)
		assert.Equal(t, chart[i].ParentID, got[i].ParentID)
		assert.Equal(t, chart[i].Level, got[i].Level)
		assert.Equal(t, chart[i].Nature, got[i].Nature)
		assert.True(t, chart[i].Balance.Equal(got[i].Balance), "row %d balance", i)
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadAccounts_HeaderOnly(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(strings.Join(Header, ",") + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalAccount_Defaults(t *testing.T) {
	acct, err := UnmarshalAccount([]string{"a1", "5", "Expenses", "", "Expense", "", "", "", ""})
	require.NoError(t, err)

	assert.Equal(t, model.AccountTypeExpense, acct.Type)
	assert.Equal(t, model.NatureDebit, acct.Nature, "blank nature derived from type")
	assert.Equal(t, 1, acct.Level)
	assert.True(t, acct.Balance.IsZero())
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"short row", []string{"a1", "1"}, "expected 9 fields"},
		{"missing id", []string{"", "1", "Assets", "", "asset", "", "1", "debit", ""}, "missing account_id"},
		{"unknown type", []string{"a1", "1", "Assets", "", "bogus", "", "1", "debit", ""}, "unknown account type"},
		{"unknown nature", []string{"a1", "1", "Assets", "", "asset", "", "1", "sideways", ""}, "unknown nature"},
		{"bad level", []string{"a1", "1", "Assets", "", "asset", "", "one", "debit", ""}, "parsing level"},
		{"bad balance", []string{"a1", "1", "Assets", "", "asset", "", "1", "debit", "lots"}, "parsing balance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAccount(tt.row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadAccounts_RowNumberInError(t *testing.T) {
	input := strings.Join(Header, ",") + "\n" +
		"a1,1,Assets,,asset,,1,debit,\n" +
		"a2,2,Liabilities,,nonsense,,1,credit,\n"

	_, err := ReadAccounts(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestMarshalAccount_ZeroBalanceBlank(t *testing.T) {
	row := MarshalAccount(model.Account{ID: "a1", Code: "1", Type: model.AccountTypeAsset, Nature: model.NatureDebit})
	assert.Equal(t, "", row[colBal])
	assert.Equal(t, "1", row[colLevel], "level falls back to 1")
}
