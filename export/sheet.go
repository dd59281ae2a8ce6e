package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	titleRowHeight  = 45
	headerRowHeight = 40
	totalsRowHeight = 30
)

type column struct {
	ID     string
	Header string
	Type   ValueType
	Align  Alignment
	Format string
}

// totalFormula is a totals cell and the formula written into it.
type totalFormula struct {
	cell    string
	formula string
}

// sheetWriter runs the conversion stages for one holder.
type sheetWriter struct {
	exporter *Exporter
	file     *excelize.File
	logger   Logger
	holder   Holder
	name     string
	title    string

	columns  []column
	widths   *widthTracker
	row      int
	formulas []totalFormula
	report   SheetReport
}

func (w *sheetWriter) write(index int) (SheetReport, error) {
	w.report.Name = w.name
	steps := []func(int) error{
		w.setup,
		w.writeTitle,
		w.writeHeader,
		w.writeData,
		w.writeTotals,
		w.finish,
	}
	for _, step := range steps {
		if err := step(index); err != nil {
			return w.report, err
		}
	}
	return w.report, nil
}

func (w *sheetWriter) setup(index int) error {
	cfg := w.exporter.cfg
	excluded := cfg.excluded()
	seen := make(map[string]struct{})
	for _, id := range w.holder.ColumnIDs() {
		if _, dup := seen[id]; dup {
			return NewError(KindValidation, fmt.Sprintf("duplicate column id %q", id), nil)
		}
		seen[id] = struct{}{}
		if _, skip := excluded[id]; skip {
			continue
		}
		if cfg.ExcludeCollapsedColumns && w.holder.Collapsed(id) {
			continue
		}
		w.columns = append(w.columns, column{
			ID:     id,
			Header: w.holder.Header(id),
			Type:   w.holder.ValueType(id),
			Align:  w.holder.Alignment(id),
			Format: cfg.ColumnFormats[id],
		})
		w.report.Columns = append(w.report.Columns, id)
		w.report.ColumnTypes = append(w.report.ColumnTypes, w.holder.ValueType(id))
	}
	if len(w.columns) == 0 {
		return NewError(KindValidation, fmt.Sprintf("sheet %q has no columns to export", w.name), nil)
	}
	w.widths = newWidthTracker(len(w.columns))

	if index == 0 {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), w.name); err != nil {
			return NewError(KindValidation, fmt.Sprintf("rename sheet to %q", w.name), err)
		}
	} else if _, err := w.file.NewSheet(w.name); err != nil {
		return NewError(KindInternal, "create sheet", err)
	}

	if cfg.Landscape {
		orientation := "landscape"
		if err := w.file.SetPageLayout(w.name, &excelize.PageLayoutOptions{Orientation: &orientation}); err != nil {
			return NewError(KindInternal, "page layout", err)
		}
	}
	centered := true
	if err := w.file.SetPageMargins(w.name, &excelize.PageLayoutMarginsOptions{Horizontally: &centered}); err != nil {
		return NewError(KindInternal, "page margins", err)
	}
	fit := cfg.FitToPage
	summaryBelow := false
	if err := w.file.SetSheetProps(w.name, &excelize.SheetPropsOptions{
		FitToPage:           &fit,
		OutlineSummaryBelow: &summaryBelow,
	}); err != nil {
		return NewError(KindInternal, "sheet properties", err)
	}

	if w.holder.Hierarchical() && cfg.DisplayTotals {
		if _, err := w.file.NewSheet(scratchSheet); err != nil {
			return NewError(KindInternal, "create scratch sheet", err)
		}
	}
	w.row = 1
	return nil
}

func (w *sheetWriter) writeTitle(int) error {
	if w.title == "" {
		return nil
	}
	first := 1
	if w.exporter.cfg.RowHeaders && len(w.columns) > 1 {
		first = 2
	}
	from := cellName(first, w.row)
	to := cellName(len(w.columns), w.row)
	if err := w.file.SetCellStr(w.name, from, w.title); err != nil {
		return NewError(KindInternal, "write title", err)
	}
	if from != to {
		if err := w.file.MergeCell(w.name, from, to); err != nil {
			return NewError(KindInternal, "merge title", err)
		}
	}
	if err := w.file.SetRowHeight(w.name, w.row, titleRowHeight); err != nil {
		return NewError(KindInternal, "title height", err)
	}
	w.exporter.assign(w.name, from, to, w.exporter.styles.Title(), AlignGeneral)
	w.report.TitleRow = w.row
	w.row++
	return nil
}

func (w *sheetWriter) writeHeader(int) error {
	styles := w.exporter.styles
	rowHeaders := w.exporter.cfg.RowHeaders
	for i, col := range w.columns {
		cell := cellName(i+1, w.row)
		if err := w.file.SetCellStr(w.name, cell, col.Header); err != nil {
			return NewError(KindInternal, "write header", err)
		}
		style := styles.Header()
		if rowHeaders && i == 0 {
			style = styles.RowHeader()
		}
		w.exporter.assign(w.name, cell, cell, style, headerAlignment(col))
		w.widths.observe(i, col.Header)
	}
	if err := w.file.SetRowHeight(w.name, w.row, headerRowHeight); err != nil {
		return NewError(KindInternal, "header height", err)
	}
	w.report.HeaderRow = w.row
	w.row++
	return nil
}

func headerAlignment(col column) Alignment {
	if col.Align != AlignGeneral {
		return col.Align
	}
	if col.Type.Numeric() {
		return AlignRight
	}
	return AlignLeft
}

func (w *sheetWriter) writeData(int) error {
	first := w.row
	if w.holder.Hierarchical() {
		if err := w.writeHierarchical(); err != nil {
			return err
		}
	} else {
		for _, item := range w.holder.Roots() {
			if err := w.writeRow(w.name, item, w.row, true); err != nil {
				return err
			}
			w.row++
		}
	}
	if w.row > first {
		w.report.FirstDataRow = first
		w.report.LastDataRow = w.row - 1
	}
	return nil
}

func (w *sheetWriter) writeRow(sheet string, item Item, row int, styled bool) error {
	styles := w.exporter.styles
	rowHeaders := w.exporter.cfg.RowHeaders
	for i, col := range w.columns {
		if !styled && !col.Type.Numeric() {
			continue
		}
		cell := cellName(i+1, row)
		text, err := w.writeValue(sheet, cell, col, w.holder.Value(item, col.ID), styled)
		if err != nil {
			return NewError(KindInternal, fmt.Sprintf("write cell %s", cell), err)
		}
		if !styled {
			continue
		}
		w.exporter.assign(sheet, cell, cell, styles.resolve(rowData, i, col, rowHeaders), col.Align)
		w.widths.observe(i, text)
	}
	return nil
}

func (w *sheetWriter) writeTotals(int) error {
	cfg := w.exporter.cfg
	if !cfg.DisplayTotals || w.report.FirstDataRow == 0 {
		return nil
	}
	styles := w.exporter.styles
	first, last := w.report.FirstDataRow, w.report.LastDataRow
	hierarchical := w.holder.Hierarchical()
	labeled := false

	for i, col := range w.columns {
		cell := cellName(i+1, w.row)
		switch {
		case col.Type.Numeric():
			name := columnName(i + 1)
			formula := fmt.Sprintf("SUM(%s%d:%s%d)", name, first, name, last)
			if hierarchical {
				formula = fmt.Sprintf("SUM(%s!$%s$%d:$%s$%d)", scratchSheet, name, first, name, last)
			}
			if err := w.file.SetCellFormula(w.name, cell, formula); err != nil {
				return NewError(KindInternal, "write totals formula", err)
			}
			w.formulas = append(w.formulas, totalFormula{cell: cell, formula: formula})
		case !labeled:
			label := orDefault(cfg.TotalsLabel, DefaultTotalsLabel)
			if w.exporter.totalsLabel != nil {
				label = w.exporter.totalsLabel(w.name)
			}
			if err := w.file.SetCellStr(w.name, cell, label); err != nil {
				return NewError(KindInternal, "write totals label", err)
			}
			w.widths.observe(i, label)
			labeled = true
		}
		w.exporter.assign(w.name, cell, cell, styles.resolve(rowTotals, i, col, cfg.RowHeaders), col.Align)
	}
	if err := w.file.SetRowHeight(w.name, w.row, totalsRowHeight); err != nil {
		return NewError(KindInternal, "totals height", err)
	}
	w.report.TotalsRow = w.row
	w.row++
	return nil
}

func (w *sheetWriter) finish(int) error {
	opts := excelize.Options{RawCellValue: true}
	scratch := w.holder.Hierarchical() && w.exporter.cfg.DisplayTotals

	for _, total := range w.formulas {
		cell := total.cell
		value, err := w.file.CalcCellValue(w.name, cell, opts)
		if err != nil {
			return NewError(KindInternal, fmt.Sprintf("evaluate %s", cell), err)
		}
		col, _, err := excelize.CellNameToCoordinates(cell)
		if err != nil {
			return NewError(KindInternal, "totals cell", err)
		}
		w.widths.observe(col-1, value)
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			number = 0
		}
		// SetCellFloat drops the formula, so it is restored after the
		// evaluated result is stored.
		if err := w.file.SetCellFloat(w.name, cell, number, -1, 64); err != nil {
			return NewError(KindInternal, "write total", err)
		}
		if scratch {
			continue
		}
		if err := w.file.SetCellFormula(w.name, cell, total.formula); err != nil {
			return NewError(KindInternal, "restore formula", err)
		}
	}
	if scratch {
		w.file.DeleteSheet(scratchSheet)
	}

	for i := range w.columns {
		name := columnName(i + 1)
		if err := w.file.SetColWidth(w.name, name, name, w.widths.width(i)); err != nil {
			return NewError(KindInternal, "column width", err)
		}
	}
	return nil
}
