package exportsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
)

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Load runs the named query and buffers the result set into a flat table.
func Load(ctx context.Context, db Queryer, reg *Registry, name string, args ...any) (*table.Table, error) {
	if reg == nil {
		return nil, export.NewError(export.KindValidation, "query registry is required", nil)
	}
	if db == nil {
		return nil, export.NewError(export.KindValidation, "database is required", nil)
	}
	def, ok := reg.Resolve(name)
	if !ok {
		return nil, export.NewError(export.KindNotFound, fmt.Sprintf("query %q not registered", name), nil)
	}

	rows, err := db.QueryContext(ctx, def.Query, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, export.NewError(export.KindInternal, fmt.Sprintf("query %q", name), err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, export.NewError(export.KindInternal, "column types", err)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, export.NewError(export.KindInternal, "scan row", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, export.NewError(export.KindInternal, "iterate rows", err)
	}

	overrides := make(map[string]table.Column, len(def.Columns))
	for _, col := range def.Columns {
		overrides[col.ID] = col
	}
	columns := make([]table.Column, len(types))
	for i, ct := range types {
		col := table.Column{ID: ct.Name(), Header: ct.Name(), Type: columnType(ct.DatabaseTypeName(), data, i)}
		if o, ok := overrides[col.ID]; ok {
			if o.Header != "" {
				col.Header = o.Header
			}
			if o.Type != "" {
				col.Type = o.Type
			}
			col.Align = o.Align
			col.Collapsed = o.Collapsed
		}
		columns[i] = col
	}

	t, err := table.New(columns...)
	if err != nil {
		return nil, err
	}
	for _, row := range data {
		if err := t.AddRow(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Source adapts a named query to an export.SourceFunc. Request parameters
// listed in the definition are bound as positional arguments.
func Source(db Queryer, reg *Registry, name string) export.SourceFunc {
	return func(ctx context.Context, params export.Params) (export.Holder, error) {
		if reg == nil {
			return nil, export.NewError(export.KindValidation, "query registry is required", nil)
		}
		def, ok := reg.Resolve(name)
		if !ok {
			return nil, export.NewError(export.KindNotFound, fmt.Sprintf("query %q not registered", name), nil)
		}
		if def.Validate != nil {
			if err := def.Validate(params); err != nil {
				return nil, err
			}
		}
		args := make([]any, 0, len(def.Params))
		for _, key := range def.Params {
			value, ok := params[key]
			if !ok {
				return nil, export.NewError(export.KindValidation, fmt.Sprintf("query %q requires parameter %q", name, key), nil)
			}
			args = append(args, value)
		}
		return Load(ctx, db, reg, name, args...)
	}
}

// columnType maps the declared type, falling back to the scanned values for
// expressions the driver reports without a type.
func columnType(declared string, data [][]any, col int) export.ValueType {
	if i := strings.IndexByte(declared, '('); i >= 0 {
		declared = declared[:i]
	}
	if declared = strings.TrimSpace(declared); declared != "" {
		return export.ParseValueType(declared)
	}
	for _, row := range data {
		switch row[col].(type) {
		case nil:
			continue
		case int64, int32, int:
			return export.TypeInteger
		case float64, float32:
			return export.TypeNumeric
		case time.Time:
			return export.TypeDate
		case bool:
			return export.TypeBool
		default:
			return export.TypeText
		}
	}
	return export.TypeText
}
