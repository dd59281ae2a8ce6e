package export

type stubColumn struct {
	id        string
	header    string
	typ       ValueType
	align     Alignment
	collapsed bool
}

type stubNode struct {
	values   map[string]any
	children []*stubNode
}

// stubHolder serves both flat rows and trees of stubNode.
type stubHolder struct {
	columns      []stubColumn
	roots        []*stubNode
	hierarchical bool
	childCalls   int
}

func newFlatStub(columns []stubColumn, rows ...map[string]any) *stubHolder {
	h := &stubHolder{columns: columns}
	for _, row := range rows {
		h.roots = append(h.roots, &stubNode{values: row})
	}
	return h
}

func (h *stubHolder) column(id string) stubColumn {
	for _, col := range h.columns {
		if col.id == id {
			return col
		}
	}
	UnknownColumn(id)
	return stubColumn{}
}

func (h *stubHolder) ColumnIDs() []string {
	ids := make([]string, len(h.columns))
	for i, col := range h.columns {
		ids[i] = col.id
	}
	return ids
}

func (h *stubHolder) Header(col string) string {
	c := h.column(col)
	if c.header == "" {
		return c.id
	}
	return c.header
}

func (h *stubHolder) Alignment(col string) Alignment { return h.column(col).align }
func (h *stubHolder) ValueType(col string) ValueType { return h.column(col).typ }
func (h *stubHolder) Collapsed(col string) bool      { return h.column(col).collapsed }

func (h *stubHolder) Value(item Item, col string) any {
	h.column(col)
	return item.(*stubNode).values[col]
}

func (h *stubHolder) Roots() []Item {
	items := make([]Item, len(h.roots))
	for i, root := range h.roots {
		items[i] = root
	}
	return items
}

func (h *stubHolder) Children(item Item) []Item {
	h.childCalls++
	node := item.(*stubNode)
	items := make([]Item, len(node.children))
	for i, child := range node.children {
		items[i] = child
	}
	return items
}

func (h *stubHolder) Hierarchical() bool { return h.hierarchical }

func (h *stubHolder) Size() int {
	count := 0
	stack := append([]*stubNode(nil), h.roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, node.children...)
	}
	return count
}

// badHolder reports a column id its lookups do not know.
type badHolder struct {
	stubHolder
}

func (h *badHolder) ColumnIDs() []string {
	return append(h.stubHolder.ColumnIDs(), "ghost")
}
