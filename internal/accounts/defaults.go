package accounts

import (
	"github.com/google/uuid"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// chartNamespace seeds deterministic ids for default chart accounts so the same
// code always maps to the same id across books.
var chartNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("ledgerdesk.chart"))

type seed struct {
	code   string
	parent string // parent code
	name   string
	typ    model.AccountType
}

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "company":
		return expand(append(baseChart(), companyExtras()...))
	default:
		return expand(baseChart())
	}
}

// ChartID returns the deterministic id of a default chart account.
func ChartID(code string) string {
	return uuid.NewSHA1(chartNamespace, []byte(code)).String()
}

func baseChart() []seed {
	return []seed{
		{"1", "", "Assets", model.AccountTypeAsset},
		{"1.1", "1", "Current Assets", model.AccountTypeAsset},
		{"1.1.1", "1.1", "Cash on Hand", model.AccountTypeAsset},
		{"1.1.2", "1.1", "Bank Accounts", model.AccountTypeAsset},
		{"1.1.3", "1.1", "Accounts Receivable", model.AccountTypeAsset},
		{"1.2", "1", "Fixed Assets", model.AccountTypeAsset},
		{"1.2.1", "1.2", "Equipment", model.AccountTypeAsset},
		{"1.2.2", "1.2", "Vehicles", model.AccountTypeAsset},
		{"2", "", "Liabilities", model.AccountTypeLiability},
		{"2.1", "2", "Accounts Payable", model.AccountTypeLiability},
		{"2.2", "2", "Salaries Payable", model.AccountTypeLiability},
		{"3", "", "Equity", model.AccountTypeEquity},
		{"3.1", "3", "Owner's Capital", model.AccountTypeEquity},
		{"3.2", "3", "Retained Earnings", model.AccountTypeEquity},
		{"4", "", "Revenue", model.AccountTypeRevenue},
		{"4.1", "4", "Service Revenue", model.AccountTypeRevenue},
		{"4.2", "4", "Sales Revenue", model.AccountTypeRevenue},
		{"5", "", "Expenses", model.AccountTypeExpense},
		{"5.1", "5", "Salaries Expense", model.AccountTypeExpense},
		{"5.2", "5", "Rent Expense", model.AccountTypeExpense},
		{"5.3", "5", "Depreciation Expense", model.AccountTypeExpense},
	}
}

func companyExtras() []seed {
	return []seed{
		{"1.2.3", "1.2", "Accumulated Depreciation", model.AccountTypeAsset},
		{"2.3", "2", "Taxes Payable", model.AccountTypeLiability},
		{"3.3", "3", "Share Capital", model.AccountTypeEquity},
	}
}

// expand resolves parent codes into ids and derives level and nature.
// Seeds must list parents before children.
func expand(seeds []seed) []model.Account {
	levels := make(map[string]int, len(seeds))
	chart := make([]model.Account, 0, len(seeds))
	for _, s := range seeds {
		acct := model.Account{
			ID:     ChartID(s.code),
			Code:   s.code,
			Name:   s.name,
			NameEn: s.name,
			Type:   s.typ,
			Level:  1,
			Nature: s.typ.Nature(),
		}
		if s.parent != "" {
			acct.ParentID = ChartID(s.parent)
			acct.Level = levels[s.parent] + 1
		}
		levels[s.code] = acct.Level
		chart = append(chart, acct)
	}
	return chart
}
