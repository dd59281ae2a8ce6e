package tree

import (
	"fmt"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
)

// Node is one row of a hierarchical source.
type Node struct {
	Values   map[string]any `json:"values"`
	Children []*Node        `json:"children,omitempty"`

	expanded bool
}

// ExpandFunc loads the children of a node on demand.
type ExpandFunc func(*Node) []*Node

// Tree is a hierarchical export.Holder. Items are *Node values.
type Tree struct {
	columns []table.Column
	index   map[string]int
	roots   []*Node
	expand  ExpandFunc
}

var _ export.Holder = (*Tree)(nil)

// Option configures a Tree.
type Option func(*Tree)

// WithExpand resolves children lazily for nodes that have none attached.
// The result is cached on the node.
func WithExpand(fn ExpandFunc) Option {
	return func(t *Tree) {
		t.expand = fn
	}
}

// New creates a tree over roots with the given columns.
func New(columns []table.Column, roots []*Node, opts ...Option) (*Tree, error) {
	t := &Tree{index: make(map[string]int, len(columns)), roots: roots}
	for _, col := range columns {
		if col.ID == "" {
			return nil, export.NewError(export.KindValidation, "column id is required", nil)
		}
		if _, dup := t.index[col.ID]; dup {
			return nil, export.NewError(export.KindValidation, fmt.Sprintf("duplicate column id %q", col.ID), nil)
		}
		if col.Type == "" {
			col.Type = export.TypeText
		}
		t.index[col.ID] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t, nil
}

func (t *Tree) column(id string) table.Column {
	i, ok := t.index[id]
	if !ok {
		export.UnknownColumn(id)
	}
	return t.columns[i]
}

func (t *Tree) ColumnIDs() []string {
	ids := make([]string, len(t.columns))
	for i, col := range t.columns {
		ids[i] = col.ID
	}
	return ids
}

func (t *Tree) Header(col string) string {
	c := t.column(col)
	if c.Header == "" {
		return c.ID
	}
	return c.Header
}

func (t *Tree) Alignment(col string) export.Alignment { return t.column(col).Align }
func (t *Tree) ValueType(col string) export.ValueType { return t.column(col).Type }
func (t *Tree) Collapsed(col string) bool             { return t.column(col).Collapsed }

func (t *Tree) Value(item export.Item, col string) any {
	t.column(col)
	node := asNode(item)
	if node.Values == nil {
		return nil
	}
	return node.Values[col]
}

func (t *Tree) Roots() []export.Item {
	return items(t.roots)
}

func (t *Tree) Children(item export.Item) []export.Item {
	node := asNode(item)
	if len(node.Children) == 0 && t.expand != nil && !node.expanded {
		node.Children = t.expand(node)
	}
	node.expanded = true
	return items(node.Children)
}

func (t *Tree) Hierarchical() bool { return true }

// Size counts the nodes already attached. Lazily expanded children are
// only counted once they have been loaded.
func (t *Tree) Size() int {
	total := 0
	stack := append([]*Node(nil), t.roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		total++
		stack = append(stack, n.Children...)
	}
	return total
}

func asNode(item export.Item) *Node {
	node, ok := item.(*Node)
	if !ok || node == nil {
		panic(export.NewError(export.KindInternal, fmt.Sprintf("invalid tree item %v", item), nil))
	}
	return node
}

func items(nodes []*Node) []export.Item {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]export.Item, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
