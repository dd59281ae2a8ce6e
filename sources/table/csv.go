package table

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-tableexport/export"
	"golang.org/x/text/encoding/htmlindex"
)

const sniffBytes = 4096

// CSVOptions controls how delimited input becomes a Table.
type CSVOptions struct {
	// Charset names the input encoding, e.g. "windows-1252". Empty means UTF-8.
	Charset string
	// Delimiter is sniffed from the first line when zero.
	Delimiter rune
	// Types overrides inferred column types.
	Types map[string]export.ValueType
}

// FromCSV reads a header line and data records into a Table. Column types
// not given in opts are inferred from the data.
func FromCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	if charset := strings.ToLower(strings.TrimSpace(opts.Charset)); charset != "" && charset != "utf-8" && charset != "utf8" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, export.NewError(export.KindValidation, "unknown charset "+opts.Charset, err)
		}
		r = enc.NewDecoder().Reader(r)
	}

	br := bufio.NewReaderSize(r, sniffBytes)
	sep := opts.Delimiter
	if sep == 0 {
		head, _ := br.Peek(sniffBytes)
		sep = sniffDelimiter(string(head))
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	records, err := cr.ReadAll()
	if err != nil {
		return nil, export.NewError(export.KindValidation, "read csv", err)
	}
	if len(records) == 0 {
		return nil, export.NewError(export.KindValidation, "csv input has no header", nil)
	}

	header := records[0]
	data := records[1:]
	columns := make([]Column, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		typ, ok := opts.Types[name]
		if !ok {
			typ = inferType(data, i)
		}
		columns[i] = Column{ID: name, Header: name, Type: typ}
	}

	t, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for _, record := range data {
		row := make([]any, len(columns))
		for i := range row {
			if i < len(record) && record[i] != "" {
				row[i] = record[i]
			}
		}
		if err := t.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func sniffDelimiter(head string) rune {
	line := head
	if i := strings.IndexAny(head, "\r\n"); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func inferType(records [][]string, col int) export.ValueType {
	seen := false
	integer := true
	for _, record := range records {
		if col >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[col])
		if value == "" {
			continue
		}
		seen = true
		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			continue
		}
		integer = false
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return export.TypeText
		}
	}
	switch {
	case !seen:
		return export.TypeText
	case integer:
		return export.TypeInteger
	default:
		return export.TypeNumeric
	}
}
