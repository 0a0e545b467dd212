package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

func acct(id, code, parentID string) model.Account {
	return model.Account{ID: id, Code: code, ParentID: parentID, Type: model.AccountTypeEquity, Level: 1}
}

func TestNextCode_FirstChild(t *testing.T) {
	parent := acct("p", "3", "")
	all := []model.Account{parent, acct("x", "4", "")}

	assert.Equal(t, "3.1", NextCode(&parent, all))
}

func TestNextCode_NthChildSkipsGaps(t *testing.T) {
	parent := acct("p", "3", "")
	all := []model.Account{
		parent,
		acct("c1", "3.1", "p"),
		acct("c2", "3.2", "p"),
		acct("c4", "3.4", "p"),
	}

	assert.Equal(t, "3.5", NextCode(&parent, all), "max+1, not fill-the-gap")
}

func TestNextCode_OnlyDirectChildrenCount(t *testing.T) {
	parent := acct("p", "1", "")
	child := acct("c1", "1.1", "p")
	all := []model.Account{
		parent,
		child,
		acct("g1", "1.1.9", "c1"), // grandchild must not raise the max
	}

	assert.Equal(t, "1.2", NextCode(&parent, all))
	assert.Equal(t, "1.1.10", NextCode(&child, all))
}

func TestNextCode_MalformedChildCodes(t *testing.T) {
	parent := acct("p", "2", "")
	all := []model.Account{
		parent,
		acct("a", "2.x", "p"),
		acct("b", "legacy", "p"),
		acct("c", "", "p"),
	}

	assert.Equal(t, "2.1", NextCode(&parent, all))

	all = append(all, acct("d", "2.3", "p"))
	assert.Equal(t, "2.4", NextCode(&parent, all))
}

func TestNextCode_Root(t *testing.T) {
	all := []model.Account{
		acct("1", "1", ""),
		acct("2", "2", ""),
		acct("3", "3", ""),
		acct("4", "4", ""),
		acct("4a", "4.1", "4"),
	}

	assert.Equal(t, "5", NextCode(nil, all))
}

func TestNextCode_RootEmptyAndMalformed(t *testing.T) {
	assert.Equal(t, "1", NextCode(nil, nil))
	assert.Equal(t, "1", NextCode(nil, []model.Account{acct("z", "misc", "")}))
	assert.Equal(t, "13", NextCode(nil, []model.Account{acct("z", "12", ""), acct("y", "misc", "")}))
}

func TestNewDraft_Child(t *testing.T) {
	parent := model.Account{ID: "p", Code: "1.1", Type: model.AccountTypeAsset, Level: 2, ParentID: "root"}
	all := []model.Account{parent, {ID: "c", Code: "1.1.1", ParentID: "p"}}

	draft := NewDraft(&parent, all, DraftParams{Name: "Petty Cash", Type: model.AccountTypeRevenue})

	assert.Equal(t, "1.1.2", draft.Code)
	assert.Equal(t, "p", draft.ParentID)
	assert.Equal(t, model.AccountTypeAsset, draft.Type, "child inherits the parent type")
	assert.Equal(t, model.NatureDebit, draft.Nature)
	assert.Equal(t, 3, draft.Level)
	assert.Empty(t, draft.ID)
}

func TestNewDraft_Main(t *testing.T) {
	all := []model.Account{acct("1", "1", ""), acct("2", "2", "")}

	draft := NewDraft(nil, all, DraftParams{Name: "Revenue", NameEn: "Revenue", Type: model.AccountTypeRevenue})

	assert.Equal(t, "3", draft.Code)
	assert.Empty(t, draft.ParentID)
	assert.Equal(t, 1, draft.Level)
	assert.Equal(t, model.NatureCredit, draft.Nature)
}
