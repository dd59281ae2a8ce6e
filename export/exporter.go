package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// scratchSheet holds per-root values while hierarchical totals are computed.
const scratchSheet = "tempHts"

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter logger.
func WithLogger(logger Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRowGroupCollapse decides per root whether its outline group starts
// collapsed. It overrides Config.RowGroupsCollapsed.
func WithRowGroupCollapse(fn func(root Item) bool) Option {
	return func(e *Exporter) {
		e.collapseRowGroup = fn
	}
}

// WithTotalsLabel computes the totals label per sheet. It overrides
// Config.TotalsLabel.
func WithTotalsLabel(fn func(sheet string) string) Option {
	return func(e *Exporter) {
		e.totalsLabel = fn
	}
}

// WithStyles replaces the default style families.
func WithStyles(styles *Styles) Option {
	return func(e *Exporter) {
		if styles != nil {
			e.styles = styles
		}
	}
}

// SheetOptions names an additional sheet and its title.
type SheetOptions struct {
	Name  string
	Title string
}

type sheetJob struct {
	holder Holder
	name   string
	title  string
}

// SheetReport describes where the exporter placed rows on one sheet.
// Row numbers are 1-based; zero means the row was not written.
type SheetReport struct {
	Name         string
	Columns      []string
	ColumnTypes  []ValueType
	TitleRow     int
	HeaderRow    int
	FirstDataRow int
	LastDataRow  int
	TotalsRow    int
	Groups       []RowGroup
}

// RowGroup is the outline band written for one hierarchical root.
type RowGroup struct {
	RootRow   int
	FirstRow  int
	LastRow   int
	Collapsed bool
}

// Exporter converts one or more holders into a styled workbook. An
// Exporter converts once and is not safe for concurrent use.
type Exporter struct {
	cfg              Config
	logger           Logger
	styles           *Styles
	sheets           []sheetJob
	collapseRowGroup func(root Item) bool
	totalsLabel      func(sheet string) string

	file       *excelize.File
	converted  bool
	convertErr error
	styled     []styledRange
	reports    []SheetReport
}

type styledRange struct {
	sheet string
	from  string
	to    string
	style *Style
	align Alignment
}

// New creates an exporter for holder using cfg.
func New(holder Holder, cfg Config, opts ...Option) *Exporter {
	cfg.ExcludedColumns = append([]string(nil), cfg.ExcludedColumns...)
	formats := make(map[string]string, len(cfg.ColumnFormats))
	for col, format := range cfg.ColumnFormats {
		formats[col] = format
	}
	cfg.ColumnFormats = formats

	e := &Exporter{
		cfg:    cfg,
		logger: NopLogger{},
		styles: NewStyles(cfg),
	}
	if holder != nil {
		e.sheets = append(e.sheets, sheetJob{holder: holder, name: cfg.SheetName, title: cfg.Title})
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// AddSheet appends another holder, written to its own sheet with the
// same styles and options.
func (e *Exporter) AddSheet(holder Holder, opts SheetOptions) {
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("%s %d", orDefault(e.cfg.SheetName, DefaultSheetName), len(e.sheets)+1)
	}
	e.sheets = append(e.sheets, sheetJob{holder: holder, name: name, title: opts.Title})
}

// Config returns the effective configuration.
func (e *Exporter) Config() Config { return e.cfg }

// Styles returns the style families. Handles may be mutated before
// Convert or before Restyle.
func (e *Exporter) Styles() *Styles { return e.styles }

// File returns the workbook, nil before Convert.
func (e *Exporter) File() *excelize.File { return e.file }

// Reports returns the layout of every converted sheet.
func (e *Exporter) Reports() []SheetReport { return e.reports }

// SetExcludedColumns replaces the excluded column ids.
func (e *Exporter) SetExcludedColumns(cols ...string) {
	e.cfg.ExcludedColumns = append([]string(nil), cols...)
}

// SetColumnFormat overrides the number format of one column.
func (e *Exporter) SetColumnFormat(col, format string) {
	if format == "" {
		delete(e.cfg.ColumnFormats, col)
		return
	}
	e.cfg.ColumnFormats[col] = format
}

func (e *Exporter) SetDoubleFormat(format string) {
	e.cfg.DoubleFormat = format
	e.styles.SetDoubleFormat(format)
}

func (e *Exporter) SetIntegerFormat(format string) {
	e.cfg.IntegerFormat = format
	e.styles.SetIntegerFormat(format)
}

func (e *Exporter) SetDateFormat(format string) {
	e.cfg.DateFormat = format
	e.styles.SetDateFormat(format)
}

// Convert writes every registered holder into a new workbook. It runs
// once; later calls return the validation error of a reused exporter.
func (e *Exporter) Convert() error {
	if e.converted {
		if e.convertErr != nil {
			return e.convertErr
		}
		return NewError(KindValidation, "export already converted", nil)
	}
	e.converted = true
	e.convertErr = e.convert()
	if e.convertErr != nil {
		e.logger.Errorf("table export failed: %v", e.convertErr)
	}
	return e.convertErr
}

func (e *Exporter) convert() (err error) {
	defer recoverExportError(&err)

	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if len(e.sheets) == 0 {
		return NewError(KindValidation, "no holder to export", nil)
	}
	seen := make(map[string]struct{}, len(e.sheets))
	for _, job := range e.sheets {
		if job.holder == nil {
			return NewError(KindValidation, fmt.Sprintf("sheet %q has no holder", job.name), nil)
		}
		if err := validateSheetName(job.name); err != nil {
			return err
		}
		key := strings.ToLower(job.name)
		if key == strings.ToLower(scratchSheet) {
			return NewError(KindValidation, fmt.Sprintf("sheet name %q is reserved", job.name), nil)
		}
		if _, dup := seen[key]; dup {
			return NewError(KindValidation, fmt.Sprintf("duplicate sheet name %q", job.name), nil)
		}
		seen[key] = struct{}{}
	}

	e.file = excelize.NewFile()
	for i, job := range e.sheets {
		w := &sheetWriter{
			exporter: e,
			file:     e.file,
			logger:   e.logger,
			holder:   job.holder,
			name:     job.name,
			title:    job.title,
		}
		report, err := w.write(i)
		if err != nil {
			return err
		}
		e.reports = append(e.reports, report)
		e.logger.Debugf("sheet %q: %d columns, data rows %d-%d", report.Name, len(report.Columns), report.FirstDataRow, report.LastDataRow)
	}
	e.file.SetActiveSheet(0)
	return e.applyStyles()
}

// Restyle rematerializes every styled cell from the current style handles.
func (e *Exporter) Restyle() error {
	if e.file == nil {
		return NewError(KindValidation, "export not converted", nil)
	}
	return e.applyStyles()
}

func (e *Exporter) applyStyles() error {
	cache := newStyleCache(e.file)
	for _, r := range e.styled {
		id, err := cache.id(r.style, r.align)
		if err != nil {
			return NewError(KindInternal, "create style", err)
		}
		if err := e.file.SetCellStyle(r.sheet, r.from, r.to, id); err != nil {
			return NewError(KindInternal, "apply style", err)
		}
	}
	return nil
}

func (e *Exporter) assign(sheet, from, to string, style *Style, align Alignment) {
	e.styled = append(e.styled, styledRange{sheet: sheet, from: from, to: to, style: style, align: align})
}

func (e *Exporter) ensureConverted() error {
	if !e.converted {
		return e.Convert()
	}
	return e.convertErr
}

// WriteTo converts if needed and serializes the workbook as XLSX.
func (e *Exporter) WriteTo(w io.Writer) (int64, error) {
	if e.cfg.Format == FormatXLS {
		return 0, NewError(KindNotImpl, "legacy xls output is not supported", nil)
	}
	if err := e.ensureConverted(); err != nil {
		return 0, err
	}
	n, err := e.file.WriteTo(w)
	if err != nil {
		return n, NewError(KindInternal, "write workbook", err)
	}
	return n, nil
}

// WriteToTempFile writes the workbook to a new temp file and returns its path.
func (e *Exporter) WriteToTempFile() (string, error) {
	return writeTempFile(e, FormatXLSX, e.logger)
}

// Download writes the workbook to a temp file and wraps it in a
// self-deleting download resource. The onClose callbacks run with the file
// path when the stream closes, before the file is deleted.
func (e *Exporter) Download(onClose ...func(path string)) (*DownloadResource, error) {
	cfg := e.cfg
	if cfg.Format == "" || cfg.Format == FormatCSV {
		cfg.Format = FormatXLSX
	}
	return newDownload(e, cfg, e.logger, onClose)
}

// Close releases the workbook.
func (e *Exporter) Close() error {
	if e.file == nil {
		return nil
	}
	return e.file.Close()
}
