package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gcmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
	"github.com/xuri/excelize/v2"
)

func newTestService(t *testing.T) export.Service {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
	tbl, err := table.New(
		table.Column{ID: "name"},
		table.Column{ID: "amount", Type: export.TypeNumeric},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	_ = tbl.AddRow("Widget", 10)

	sources := export.NewSourceRegistry()
	if err := sources.RegisterHolder("widgets", tbl); err != nil {
		t.Fatalf("register: %v", err)
	}
	return export.NewService(export.ServiceConfig{Sources: sources})
}

func TestExportTable_Validate(t *testing.T) {
	err := ExportTable{}.Validate()
	var ge *goerrors.Error
	if !errors.As(err, &ge) || ge.Category != goerrors.CategoryValidation || ge.TextCode != "SOURCE_REQUIRED" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := (WriteExport{Request: export.Request{Source: "a"}}).Validate(); err == nil {
		t.Fatalf("expected path to be required")
	}
}

func TestExportTableHandler_StoresResults(t *testing.T) {
	handler := NewExportTableHandler(newTestService(t))
	var got *export.DownloadResource
	result := gcmd.NewResult[*export.DownloadResource]()
	ctx := gcmd.ContextWithResult(context.Background(), result)

	err := handler.Execute(ctx, ExportTable{
		Request: export.Request{Source: "widgets", Format: export.FormatCSV},
		Result:  &got,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got == nil || got.FileName != "Table-Export.csv" {
		t.Fatalf("expected csv download, got %+v", got)
	}
	defer func() { _ = got.Source.Discard() }()

	stored, ok := result.Load()
	if !ok {
		t.Fatalf("expected context result")
	}
	if stored != got {
		t.Fatalf("expected the same resource in the context result")
	}
}

func TestExportTableHandler_PropagatesServiceErrors(t *testing.T) {
	handler := NewExportTableHandler(newTestService(t))
	err := handler.Execute(context.Background(), ExportTable{Request: export.Request{Source: "ghost"}})
	if export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	var nilHandler *ExportTableHandler
	if err := nilHandler.Execute(context.Background(), ExportTable{}); err == nil {
		t.Fatalf("expected missing service error")
	}
}

func TestWriteExportHandler_WritesFile(t *testing.T) {
	handler := NewWriteExportHandler(newTestService(t))
	dir := t.TempDir()
	var res WriteResult

	err := handler.Execute(context.Background(), WriteExport{
		Request: export.Request{Source: "widgets", FileName: "stock"},
		Path:    dir,
		Result:  &res,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Path != filepath.Join(dir, "stock.xlsx") || res.Bytes == 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	file, err := excelize.OpenFile(res.Path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	if v, _ := file.GetCellValue(file.GetSheetName(0), "A2"); v != "Widget" {
		t.Fatalf("expected data row, got %q", v)
	}

	tmp, err := os.ReadDir(os.Getenv("TMPDIR"))
	if err != nil {
		t.Fatalf("read tmp: %v", err)
	}
	if len(tmp) != 0 {
		t.Fatalf("expected temp file removed, found %d entries", len(tmp))
	}
}
