package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountTypeNature(t *testing.T) {
	tests := []struct {
		typ  AccountType
		want Nature
	}{
		{AccountTypeAsset, NatureDebit},
		{AccountTypeExpense, NatureDebit},
		{AccountTypeLiability, NatureCredit},
		{AccountTypeEquity, NatureCredit},
		{AccountTypeRevenue, NatureCredit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.Nature(), "nature of %s", tt.typ)
	}
}

func TestParseAccountType(t *testing.T) {
	for _, at := range AccountTypes {
		got, err := ParseAccountType(string(at))
		require.NoError(t, err)
		assert.Equal(t, at, got)
	}

	got, err := ParseAccountType("  Revenue ")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeRevenue, got)

	_, err = ParseAccountType("drawings")
	assert.Error(t, err)
	_, err = ParseAccountType("")
	assert.Error(t, err)
}

func TestParseNature(t *testing.T) {
	n, err := ParseNature("DEBIT")
	require.NoError(t, err)
	assert.Equal(t, NatureDebit, n)

	n, err = ParseNature("credit")
	require.NoError(t, err)
	assert.Equal(t, NatureCredit, n)

	_, err = ParseNature("both")
	assert.Error(t, err)
}
