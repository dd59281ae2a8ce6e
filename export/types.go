package export

import (
	"path/filepath"
	"strings"
)

// Format is the export output format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// Default MIME types per export kind.
const (
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLS  = "application/vnd.ms-excel"
	MimeCSV  = "text/csv"
)

// Alignment is the horizontal alignment a holder reports for a column.
type Alignment string

const (
	AlignGeneral Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
)

// ValueType selects how a column's values are written and styled.
type ValueType string

const (
	TypeText    ValueType = "text"
	TypeNumeric ValueType = "numeric"
	TypeInteger ValueType = "integer"
	TypeDate    ValueType = "date"
	TypeBool    ValueType = "bool"
)

// Numeric reports whether values of this type are summed in the totals row.
func (t ValueType) Numeric() bool {
	return t == TypeNumeric || t == TypeInteger
}

// Item is an opaque handle to one row of the underlying data.
type Item any

// Holder adapts a flat or hierarchical data source to the exporter.
// Implementations panic with an *ExportError when asked about a column
// id they do not know.
type Holder interface {
	ColumnIDs() []string
	Header(col string) string
	Alignment(col string) Alignment
	ValueType(col string) ValueType
	Collapsed(col string) bool
	Value(item Item, col string) any
	// Roots returns the top level items, or every item for flat sources.
	Roots() []Item
	Children(item Item) []Item
	Hierarchical() bool
	Size() int
}

// ParseValueType normalizes common database and schema type names.
func ParseValueType(raw string) ValueType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "int", "integer", "int64", "int32", "int16", "int8", "bigint", "smallint", "tinyint", "mediumint":
		return TypeInteger
	case "float", "float64", "float32", "decimal", "number", "numeric", "double", "real", "money":
		return TypeNumeric
	case "date", "datetime", "timestamp", "timestamptz", "time":
		return TypeDate
	case "bool", "boolean":
		return TypeBool
	default:
		return TypeText
	}
}

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatXLS:
		return FormatXLS, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", NewError(KindValidation, "unsupported format "+raw, nil)
	}
}

// ContentTypeForFormat returns the default MIME type for format.
func ContentTypeForFormat(format Format) string {
	switch format {
	case FormatXLSX:
		return MimeXLSX
	case FormatXLS:
		return MimeXLS
	case FormatCSV:
		return MimeCSV
	default:
		return "application/octet-stream"
	}
}

// FormatFromPath guesses the format from a file name extension.
func FormatFromPath(name string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "xlsx":
		return FormatXLSX
	case "xls":
		return FormatXLS
	case "csv":
		return FormatCSV
	default:
		return ""
	}
}
