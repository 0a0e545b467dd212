package accounts

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cleared-dev/ledgerdesk/internal/model"
)

// TreeBuilder assembles a flat account list into a sorted forest.
// It is not safe for concurrent use because the collator keeps scratch buffers.
type TreeBuilder struct {
	collator *collate.Collator
}

// NewTreeBuilder returns a TreeBuilder that orders siblings by code using the
// collation rules for tag.
func NewTreeBuilder(tag language.Tag, opts ...collate.Option) *TreeBuilder {
	return &TreeBuilder{collator: collate.New(tag, opts...)}
}

// Build links accounts to their parents and returns the root nodes.
// Accounts whose parent is missing are promoted to roots. The input is not modified.
func (b *TreeBuilder) Build(accounts []model.Account) []*model.AccountTreeNode {
	// Pass 1: one node per account id.
	nodes := make(map[string]*model.AccountTreeNode, len(accounts))
	order := make([]*model.AccountTreeNode, 0, len(accounts))
	for _, a := range accounts {
		if _, dup := nodes[a.ID]; dup {
			continue
		}
		n := &model.AccountTreeNode{Account: a, Level: levelOf(a)}
		nodes[a.ID] = n
		order = append(order, n)
	}

	// Pass 2: link children to parents.
	parents := make(map[*model.AccountTreeNode]*model.AccountTreeNode, len(order))
	var roots []*model.AccountTreeNode
	for _, n := range order {
		p, ok := nodes[n.Account.ParentID]
		if n.Account.IsRoot() || !ok || p == n {
			roots = append(roots, n)
			continue
		}
		p.Children = append(p.Children, n)
		parents[n] = p
	}

	roots = b.breakCycles(order, roots, parents)
	b.sortNodes(roots)
	return roots
}

// breakCycles promotes nodes caught in parent cycles, which are unreachable
// from any root. The first node of each cycle in code order becomes a root.
func (b *TreeBuilder) breakCycles(order, roots []*model.AccountTreeNode, parents map[*model.AccountTreeNode]*model.AccountTreeNode) []*model.AccountTreeNode {
	for {
		reached := make(map[*model.AccountTreeNode]bool, len(order))
		Walk(roots, func(n *model.AccountTreeNode, _ int) {
			reached[n] = true
		})
		if len(reached) == len(order) {
			return roots
		}

		var lost []*model.AccountTreeNode
		for _, n := range order {
			if !reached[n] {
				lost = append(lost, n)
			}
		}
		promote := slices.MinFunc(lost, b.compare)
		p := parents[promote]
		p.Children = slices.DeleteFunc(p.Children, func(c *model.AccountTreeNode) bool { return c == promote })
		delete(parents, promote)
		roots = append(roots, promote)
	}
}

func (b *TreeBuilder) sortNodes(nodes []*model.AccountTreeNode) {
	slices.SortFunc(nodes, b.compare)
	for _, n := range nodes {
		b.sortNodes(n.Children)
	}
}

func (b *TreeBuilder) compare(x, y *model.AccountTreeNode) int {
	if c := b.collator.CompareString(x.Account.Code, y.Account.Code); c != 0 {
		return c
	}
	return strings.Compare(x.Account.ID, y.Account.ID)
}

// Walk visits every node depth-first in display order.
func Walk(roots []*model.AccountTreeNode, fn func(n *model.AccountTreeNode, depth int)) {
	var visit func(nodes []*model.AccountTreeNode, depth int)
	visit = func(nodes []*model.AccountTreeNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(roots, 0)
}

// Find returns the node for an account id, or nil.
func Find(roots []*model.AccountTreeNode, accountID string) *model.AccountTreeNode {
	var found *model.AccountTreeNode
	Walk(roots, func(n *model.AccountTreeNode, _ int) {
		if found == nil && n.Account.ID == accountID {
			found = n
		}
	})
	return found
}

// Visible returns the rows a tree view shows given caller-owned expansion
// state: roots always, children only beneath expanded nodes.
func Visible(roots []*model.AccountTreeNode, expanded func(accountID string) bool) []*model.AccountTreeNode {
	var rows []*model.AccountTreeNode
	var visit func(nodes []*model.AccountTreeNode)
	visit = func(nodes []*model.AccountTreeNode) {
		for _, n := range nodes {
			rows = append(rows, n)
			if len(n.Children) > 0 && expanded(n.Account.ID) {
				visit(n.Children)
			}
		}
	}
	visit(roots)
	return rows
}
