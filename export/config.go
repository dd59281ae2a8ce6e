package export

import (
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v2"
)

const (
	DefaultSheetName     = "Table Export"
	DefaultFileName      = "Table-Export.xlsx"
	DefaultDoubleFormat  = "0.00"
	DefaultIntegerFormat = "0"
	DefaultDateFormat    = "mm/dd/yyyy"
	DefaultTotalsLabel   = "Total"

	maxSheetNameLength = 31
)

// Config holds the recognized export options.
type Config struct {
	SheetName               string            `yaml:"sheet_name"`
	Title                   string            `yaml:"title"`
	FileName                string            `yaml:"file_name"`
	Format                  Format            `yaml:"format"`
	DisplayTotals           bool              `yaml:"display_totals"`
	RowHeaders              bool              `yaml:"row_headers"`
	ExcludeCollapsedColumns bool              `yaml:"exclude_collapsed_columns"`
	ExcludedColumns         []string          `yaml:"excluded_columns"`
	ColumnFormats           map[string]string `yaml:"column_formats"`
	DoubleFormat            string            `yaml:"double_format"`
	IntegerFormat           string            `yaml:"integer_format"`
	DateFormat              string            `yaml:"date_format"`
	RowGroupsCollapsed      bool              `yaml:"row_groups_collapsed"`
	TotalsLabel             string            `yaml:"totals_label"`
	Landscape               bool              `yaml:"landscape"`
	FitToPage               bool              `yaml:"fit_to_page"`
	MimeTypes               map[Format]string `yaml:"mime_types"`
	CSV                     CSVConfig         `yaml:"csv"`
}

// CSVConfig configures delimited text output.
type CSVConfig struct {
	Delimiter    string `yaml:"delimiter"`
	Charset      string `yaml:"charset"`
	IncludeTitle bool   `yaml:"include_title"`
}

// DefaultConfig returns the default export configuration.
func DefaultConfig() Config {
	return Config{
		SheetName:          DefaultSheetName,
		FileName:           DefaultFileName,
		Format:             FormatXLSX,
		DisplayTotals:      true,
		DoubleFormat:       DefaultDoubleFormat,
		IntegerFormat:      DefaultIntegerFormat,
		DateFormat:         DefaultDateFormat,
		RowGroupsCollapsed: true,
		TotalsLabel:        DefaultTotalsLabel,
		Landscape:          true,
		FitToPage:          true,
		CSV:                CSVConfig{Delimiter: ","},
	}
}

// LoadConfig reads a YAML export profile layered over DefaultConfig.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if r == nil {
		return cfg, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, NewError(KindInternal, "read config", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, NewError(KindValidation, "invalid config", err)
	}
	return cfg, cfg.Validate()
}

// LoadConfigFile reads a YAML export profile from path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultConfig(), NewError(KindNotFound, "open config "+path, err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks option values that would otherwise fail deep inside
// the workbook encoder.
func (c Config) Validate() error {
	if err := validateSheetName(c.SheetName); err != nil {
		return err
	}
	if c.CSV.Delimiter != "" && utf8.RuneCountInString(c.CSV.Delimiter) != 1 {
		return NewError(KindValidation, "csv delimiter must be a single character", nil)
	}
	if c.Format != "" {
		if _, err := ParseFormat(string(c.Format)); err != nil {
			return err
		}
	}
	return nil
}

// validateSheetName applies the workbook's sheet naming rules.
func validateSheetName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return NewError(KindValidation, "sheet name is required", nil)
	case utf8.RuneCountInString(name) > maxSheetNameLength:
		return NewError(KindValidation, fmt.Sprintf("sheet name %q exceeds 31 characters", name), nil)
	case strings.ContainsAny(name, `[]:*?/\`):
		return NewError(KindValidation, fmt.Sprintf("sheet name %q contains invalid characters", name), nil)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return NewError(KindValidation, fmt.Sprintf("sheet name %q starts or ends with a quote", name), nil)
	}
	return nil
}

// ContentType returns the MIME type for the configured format, honoring
// MimeTypes overrides.
func (c Config) ContentType() string {
	format := c.Format
	if format == "" {
		format = FormatXLSX
	}
	if mime, ok := c.MimeTypes[format]; ok && mime != "" {
		return mime
	}
	return ContentTypeForFormat(format)
}

func (c Config) delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.CSV.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

func (c Config) excluded() map[string]struct{} {
	out := make(map[string]struct{}, len(c.ExcludedColumns))
	for _, col := range c.ExcludedColumns {
		out[col] = struct{}{}
	}
	return out
}
