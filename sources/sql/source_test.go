package exportsql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE stock (sku TEXT, qty INTEGER, price REAL, note BLOB)`,
		`INSERT INTO stock VALUES ('A1', 3, 1.5, 'first'), ('B2', 4, 2.25, NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(Definition{Name: "a", Query: "SELECT 1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(Definition{Name: "a", Query: "SELECT 1"}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := reg.Register(Definition{Name: "b"}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected missing query error, got %v", err)
	}
	if _, ok := reg.Resolve("a"); !ok {
		t.Fatalf("expected resolve")
	}
	if names := reg.Names(); len(names) != 1 || names[0] != "a" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestLoad_InfersTypes(t *testing.T) {
	db := openDB(t)
	reg := NewRegistry()
	_ = reg.Register(Definition{
		Name:    "stock",
		Query:   `SELECT sku, qty, price, note, qty * price AS value FROM stock ORDER BY sku`,
		Columns: []table.Column{{ID: "sku", Header: "SKU"}},
	})

	tbl, err := Load(context.Background(), db, reg, "stock")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tbl.Size() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.Size())
	}
	want := map[string]export.ValueType{
		"sku":   export.TypeText,
		"qty":   export.TypeInteger,
		"price": export.TypeNumeric,
		"value": export.TypeNumeric,
	}
	for col, typ := range want {
		if got := tbl.ValueType(col); got != typ {
			t.Fatalf("%s: expected %s, got %s", col, typ, got)
		}
	}
	if tbl.Header("sku") != "SKU" {
		t.Fatalf("expected header override")
	}
	if v := tbl.Value(0, "note"); v != "first" {
		t.Fatalf("expected blob converted to string, got %#v", v)
	}
	if v := tbl.Value(1, "note"); v != nil {
		t.Fatalf("expected NULL to stay nil, got %#v", v)
	}
}

func TestLoad_Errors(t *testing.T) {
	db := openDB(t)
	reg := NewRegistry()
	_ = reg.Register(Definition{Name: "broken", Query: "SELECT * FROM missing"})

	if _, err := Load(context.Background(), db, reg, "nope"); export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := Load(context.Background(), db, reg, "broken"); export.KindFromError(err) != export.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, db, reg, "broken"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestSource_BindsParams(t *testing.T) {
	db := openDB(t)
	reg := NewRegistry()
	_ = reg.Register(Definition{
		Name:   "by_sku",
		Query:  `SELECT sku, qty FROM stock WHERE sku = ?`,
		Params: []string{"sku"},
	})
	source := Source(db, reg, "by_sku")

	holder, err := source(context.Background(), export.Params{"sku": "B2"})
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if holder.Size() != 1 || holder.Value(0, "qty") != int64(4) {
		t.Fatalf("unexpected result size %d", holder.Size())
	}
	if _, err := source(context.Background(), export.Params{}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected missing param error, got %v", err)
	}
}

func TestSource_ExportsThroughService(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	db := openDB(t)
	reg := NewRegistry()
	_ = reg.Register(Definition{Name: "stock", Query: `SELECT sku, qty FROM stock`})
	sources := export.NewSourceRegistry()
	if err := sources.Register("stock", Source(db, reg, "stock")); err != nil {
		t.Fatalf("register source: %v", err)
	}
	svc := export.NewService(export.ServiceConfig{Sources: sources})

	res, err := svc.Export(context.Background(), export.Request{Source: "stock", Format: export.FormatCSV})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer func() { _ = res.Source.Discard() }()
	if res.ContentType != export.MimeCSV {
		t.Fatalf("unexpected content type %q", res.ContentType)
	}
}
