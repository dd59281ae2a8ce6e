package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const displayDateLayout = "01/02/2006"

// writeValue writes value into cell according to the column type and
// returns the text used to measure the column width.
func (w *sheetWriter) writeValue(sheet, cell string, col column, value any, warn bool) (string, error) {
	value = unwrapNull(value)
	if value == nil {
		return "", nil
	}
	f := w.file

	switch col.Type {
	case TypeNumeric, TypeInteger:
		number, ok := coerceFloat(value)
		if !ok {
			text := stringify(value)
			if warn {
				w.logger.Warnf("column %q cell %s: %q is not a number, writing text", col.ID, cell, text)
			}
			return text, f.SetCellStr(sheet, cell, text)
		}
		return strconv.FormatFloat(number, 'f', -1, 64), f.SetCellFloat(sheet, cell, number, -1, 64)
	case TypeDate:
		if t, ok := value.(time.Time); ok {
			return t.Format(displayDateLayout), f.SetCellValue(sheet, cell, t)
		}
		if t, ok := value.(*time.Time); ok && t != nil {
			return t.Format(displayDateLayout), f.SetCellValue(sheet, cell, *t)
		}
		if raw, ok := value.(string); ok {
			if t, ok := parseTimeString(raw); ok {
				return t.Format(displayDateLayout), f.SetCellValue(sheet, cell, t)
			}
		}
	case TypeBool:
		if b, ok := coerceBool(value); ok {
			return strings.ToUpper(strconv.FormatBool(b)), f.SetCellBool(sheet, cell, b)
		}
	}

	text := stringify(value)
	return text, f.SetCellStr(sheet, cell, text)
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(NewError(KindInternal, "invalid cell coordinates", err))
	}
	return name
}

func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		panic(NewError(KindInternal, "invalid column number", err))
	}
	return name
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(value)
	}
}

func unwrapNull(value any) any {
	switch v := value.(type) {
	case sql.NullString:
		if !v.Valid {
			return nil
		}
		return v.String
	case sql.NullInt64:
		if !v.Valid {
			return nil
		}
		return v.Int64
	case sql.NullInt32:
		if !v.Valid {
			return nil
		}
		return int64(v.Int32)
	case sql.NullFloat64:
		if !v.Valid {
			return nil
		}
		return v.Float64
	case sql.NullBool:
		if !v.Valid {
			return nil
		}
		return v.Bool
	case sql.NullTime:
		if !v.Valid {
			return nil
		}
		return v.Time
	default:
		return value
	}
}

func coerceFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int8:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case []byte:
		return coerceFloat(string(v))
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case *bool:
		if v == nil {
			return false, false
		}
		return *v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return parsed, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	default:
		return false, false
	}
}

func parseTimeString(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
