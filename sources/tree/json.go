package tree

import (
	"encoding/json"
	"io"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
)

// Document is the JSON shape accepted by FromJSON.
type Document struct {
	Columns []ColumnSpec `json:"columns"`
	Roots   []*Node      `json:"roots"`
}

// ColumnSpec is the JSON form of a column definition.
type ColumnSpec struct {
	ID        string `json:"id"`
	Header    string `json:"header"`
	Type      string `json:"type"`
	Align     string `json:"align"`
	Collapsed bool   `json:"collapsed"`
}

// FromJSON decodes a document of the form
//
//	{"columns":[{"id":"name"}],"roots":[{"values":{"name":"a"},"children":[...]}]}
//
// Numbers are decoded as json.Number.
// Column definitions passed in columns take precedence over the document's.
func FromJSON(r io.Reader, columns ...table.Column) (*Tree, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, export.NewError(export.KindValidation, "decode tree document", err)
	}
	if len(columns) == 0 {
		for _, spec := range doc.Columns {
			columns = append(columns, table.Column{
				ID:        spec.ID,
				Header:    spec.Header,
				Type:      export.ParseValueType(spec.Type),
				Align:     export.Alignment(spec.Align),
				Collapsed: spec.Collapsed,
			})
		}
	}
	if len(columns) == 0 {
		return nil, export.NewError(export.KindValidation, "tree document has no columns", nil)
	}
	return New(columns, doc.Roots)
}
