package accounts

import (
	"strconv"

	"github.com/cleared-dev/ledgerdesk/internal/id"
	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// NextCode returns the next unused hierarchical code under parent, or the next
// main-account code when parent is nil. The maximum existing number is
// incremented; gaps are never reused. Codes whose number does not parse count as 0.
func NextCode(parent *model.Account, all []model.Account) string {
	if parent != nil {
		maxSeq := 0
		for _, a := range all {
			if a.ParentID != parent.ID {
				continue
			}
			if n := id.SegmentNumber(id.LastSegment(a.Code)); n > maxSeq {
				maxSeq = n
			}
		}
		return id.ChildCode(parent.Code, maxSeq+1)
	}

	maxSeq := 0
	for _, a := range all {
		if !a.IsRoot() {
			continue
		}
		if n := id.SegmentNumber(a.Code); n > maxSeq {
			maxSeq = n
		}
	}
	return strconv.Itoa(maxSeq + 1)
}

// DraftParams holds the user-supplied fields of a new account.
type DraftParams struct {
	Name   string
	NameEn string
	Type   model.AccountType // used only for main accounts; children inherit
}

// NewDraft builds a new account under parent (nil for a main account) with
// a generated code. Children inherit type and nature and sit one level
// below the parent. The draft has no ID until it is created.
func NewDraft(parent *model.Account, all []model.Account, params DraftParams) model.Account {
	draft := model.Account{
		Code:   NextCode(parent, all),
		Name:   params.Name,
		NameEn: params.NameEn,
		Type:   params.Type,
		Level:  1,
	}
	if parent != nil {
		draft.ParentID = parent.ID
		draft.Type = parent.Type
		draft.Level = levelOf(*parent) + 1
	}
	draft.Nature = draft.Type.Nature()
	return draft
}

func levelOf(a model.Account) int {
	if a.Level < 1 {
		return 1
	}
	return a.Level
}
