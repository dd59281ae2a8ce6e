package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SheetName != "Table Export" || cfg.Title != "" || cfg.FileName != "Table-Export.xlsx" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.DisplayTotals || cfg.RowHeaders || !cfg.RowGroupsCollapsed {
		t.Fatalf("unexpected default flags %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadConfig_LayersOverDefaults(t *testing.T) {
	profile := `
title: Quarterly
display_totals: false
excluded_columns: [internal_id]
column_formats:
  margin: "0.0%"
csv:
  delimiter: ";"
  charset: windows-1252
mime_types:
  csv: text/plain
`
	cfg, err := LoadConfig(strings.NewReader(profile))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Title != "Quarterly" || cfg.DisplayTotals {
		t.Fatalf("expected overrides, got %+v", cfg)
	}
	if cfg.SheetName != DefaultSheetName || cfg.DoubleFormat != DefaultDoubleFormat {
		t.Fatalf("expected defaults kept, got %+v", cfg)
	}
	if len(cfg.ExcludedColumns) != 1 || cfg.ColumnFormats["margin"] != "0.0%" {
		t.Fatalf("unexpected column options %+v", cfg)
	}
	if cfg.delimiter() != ';' || cfg.CSV.Charset != "windows-1252" {
		t.Fatalf("unexpected csv options %+v", cfg.CSV)
	}
	cfg.Format = FormatCSV
	if cfg.ContentType() != "text/plain" {
		t.Fatalf("expected mime override, got %q", cfg.ContentType())
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"yaml":      "title: [unclosed",
		"sheet":     "sheet_name: \"a:b\"",
		"long":      "sheet_name: " + strings.Repeat("x", 32),
		"delimiter": "csv:\n  delimiter: \"::\"",
		"format":    "format: pdf",
	}
	for name, profile := range cases {
		if _, err := LoadConfig(strings.NewReader(profile)); KindFromError(err) != KindValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("sheet_name: Stock\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SheetName != "Stock" {
		t.Fatalf("expected sheet name Stock, got %q", cfg.SheetName)
	}
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); KindFromError(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
