package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CSVExporter renders the first sheet produced by the workbook exporter
// as delimited text.
type CSVExporter struct {
	xlsx *Exporter
}

// NewCSV creates a CSV exporter for holder.
func NewCSV(holder Holder, cfg Config, opts ...Option) *CSVExporter {
	cfg.Format = FormatCSV
	if cfg.FileName == "" || cfg.FileName == DefaultFileName {
		cfg.FileName = EnsureExtension(DefaultFileName, FormatCSV)
	}
	return &CSVExporter{xlsx: New(holder, cfg, opts...)}
}

// Exporter returns the underlying workbook exporter.
func (c *CSVExporter) Exporter() *Exporter { return c.xlsx }

// Convert runs the workbook conversion.
func (c *CSVExporter) Convert() error { return c.xlsx.Convert() }

// WriteTo converts if needed and writes the first sheet as CSV.
func (c *CSVExporter) WriteTo(w io.Writer) (int64, error) {
	if err := c.xlsx.ensureConverted(); err != nil {
		return 0, err
	}
	cfg := c.xlsx.cfg

	cw := &countingWriter{w: w}
	var out io.Writer = cw
	var encoder io.WriteCloser
	if charset := strings.TrimSpace(cfg.CSV.Charset); charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return 0, NewError(KindValidation, "unknown charset "+charset, err)
		}
		encoder = transform.NewWriter(cw, enc.NewEncoder())
		out = encoder
	}

	writer := csv.NewWriter(out)
	writer.Comma = cfg.delimiter()

	records, err := c.records()
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return cw.count, NewError(KindInternal, "write csv", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return cw.count, NewError(KindInternal, "write csv", err)
	}
	if encoder != nil {
		if err := encoder.Close(); err != nil {
			return cw.count, NewError(KindInternal, "encode csv", err)
		}
	}
	return cw.count, nil
}

func (c *CSVExporter) records() ([][]string, error) {
	reports := c.xlsx.reports
	if len(reports) == 0 {
		return nil, nil
	}
	report := reports[0]
	file := c.xlsx.file

	start := report.HeaderRow
	if c.xlsx.cfg.CSV.IncludeTitle && report.TitleRow > 0 {
		start = report.TitleRow
	}
	end := report.HeaderRow
	switch {
	case report.TotalsRow > 0:
		end = report.TotalsRow
	case report.LastDataRow > 0:
		end = report.LastDataRow
	}

	records := make([][]string, 0, end-start+1)
	for row := start; row <= end; row++ {
		record := make([]string, len(report.Columns))
		for i := range report.Columns {
			cell := cellName(i+1, row)
			value, err := cellText(file, report.Name, cell, report.ColumnTypes[i].Numeric())
			if err != nil {
				return nil, NewError(KindInternal, "read cell "+cell, err)
			}
			record[i] = value
		}
		records = append(records, record)
	}
	return records, nil
}

// cellText reads numeric cells raw so totals and data keep full precision.
func cellText(file *excelize.File, sheet, cell string, raw bool) (string, error) {
	opts := excelize.Options{RawCellValue: raw}
	formula, err := file.GetCellFormula(sheet, cell)
	if err != nil {
		return "", err
	}
	if formula != "" {
		return file.CalcCellValue(sheet, cell, opts)
	}
	return file.GetCellValue(sheet, cell, opts)
}

// WriteToTempFile writes the CSV to a new temp file and returns its path.
func (c *CSVExporter) WriteToTempFile() (string, error) {
	return writeTempFile(c, FormatCSV, c.xlsx.logger)
}

// Download writes the CSV to a temp file and wraps it in a self-deleting
// download resource. See Exporter.Download for onClose.
func (c *CSVExporter) Download(onClose ...func(path string)) (*DownloadResource, error) {
	return newDownload(c, c.xlsx.cfg, c.xlsx.logger, onClose)
}

// Close releases the underlying workbook.
func (c *CSVExporter) Close() error { return c.xlsx.Close() }

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
