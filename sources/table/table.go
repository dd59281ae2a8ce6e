package table

import (
	"fmt"

	"github.com/goliatone/go-tableexport/export"
)

// Column describes one column of a Table.
type Column struct {
	ID        string
	Header    string
	Type      export.ValueType
	Align     export.Alignment
	Collapsed bool
}

// Table is a flat, in-memory export.Holder. Items are row indexes.
type Table struct {
	columns []Column
	index   map[string]int
	rows    [][]any
}

var _ export.Holder = (*Table)(nil)

// New creates an empty table with the given columns.
func New(columns ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
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
	return t, nil
}

// AddRow appends a row given in column order.
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.columns) {
		return export.NewError(export.KindValidation, fmt.Sprintf("row has %d values, table has %d columns", len(values), len(t.columns)), nil)
	}
	t.rows = append(t.rows, append([]any(nil), values...))
	return nil
}

// AddRecord appends a row keyed by column id. Missing keys stay blank.
func (t *Table) AddRecord(record map[string]any) error {
	row := make([]any, len(t.columns))
	for key, value := range record {
		i, ok := t.index[key]
		if !ok {
			return export.NewError(export.KindValidation, fmt.Sprintf("unknown column %q", key), nil)
		}
		row[i] = value
	}
	t.rows = append(t.rows, row)
	return nil
}

// Columns returns the column definitions.
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

func (t *Table) column(id string) Column {
	i, ok := t.index[id]
	if !ok {
		export.UnknownColumn(id)
	}
	return t.columns[i]
}

func (t *Table) ColumnIDs() []string {
	ids := make([]string, len(t.columns))
	for i, col := range t.columns {
		ids[i] = col.ID
	}
	return ids
}

func (t *Table) Header(col string) string {
	c := t.column(col)
	if c.Header == "" {
		return c.ID
	}
	return c.Header
}

func (t *Table) Alignment(col string) export.Alignment { return t.column(col).Align }
func (t *Table) ValueType(col string) export.ValueType { return t.column(col).Type }
func (t *Table) Collapsed(col string) bool             { return t.column(col).Collapsed }

func (t *Table) Value(item export.Item, col string) any {
	i, ok := t.index[col]
	if !ok {
		export.UnknownColumn(col)
	}
	row, ok := item.(int)
	if !ok || row < 0 || row >= len(t.rows) {
		panic(export.NewError(export.KindInternal, fmt.Sprintf("invalid table item %v", item), nil))
	}
	return t.rows[row][i]
}

func (t *Table) Roots() []export.Item {
	items := make([]export.Item, len(t.rows))
	for i := range t.rows {
		items[i] = i
	}
	return items
}

func (t *Table) Children(export.Item) []export.Item { return nil }
func (t *Table) Hierarchical() bool                 { return false }
func (t *Table) Size() int                          { return len(t.rows) }
