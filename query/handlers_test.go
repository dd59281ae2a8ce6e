package query

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
)

func newTestService(t *testing.T) export.Service {
	t.Helper()
	holder, err := table.New(
		table.Column{ID: "sku", Header: "SKU"},
		table.Column{ID: "qty", Type: export.TypeInteger, Align: export.AlignRight},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	for _, row := range [][]any{{"a", 1}, {"b", 2}} {
		if err := holder.AddRow(row...); err != nil {
			t.Fatalf("add row: %v", err)
		}
	}
	reg := export.NewSourceRegistry()
	if err := reg.RegisterHolder("stock", holder); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterHolder("archive", holder); err != nil {
		t.Fatalf("register: %v", err)
	}
	return export.NewService(export.ServiceConfig{Sources: reg})
}

func TestListSourcesHandler(t *testing.T) {
	names, err := NewListSourcesHandler(newTestService(t)).Query(context.Background(), ListSources{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got := strings.Join(names, ","); got != "archive,stock" {
		t.Fatalf("unexpected names %s", got)
	}
}

func TestDescribeSourceHandler(t *testing.T) {
	handler := NewDescribeSourceHandler(newTestService(t))
	info, err := handler.Query(context.Background(), DescribeSource{Source: "stock"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if info.Size != 2 || len(info.Columns) != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Columns[0].Header != "SKU" || info.Columns[1].Type != export.TypeInteger || info.Columns[1].Align != export.AlignRight {
		t.Fatalf("unexpected columns %+v", info.Columns)
	}

	if _, err := handler.Query(context.Background(), DescribeSource{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := handler.Query(context.Background(), DescribeSource{Source: "missing"}); export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHandlers_RequireService(t *testing.T) {
	if _, err := (&ListSourcesHandler{}).Query(context.Background(), ListSources{}); err == nil {
		t.Fatalf("expected service error")
	}
	var handler *DescribeSourceHandler
	if _, err := handler.Query(context.Background(), DescribeSource{Source: "x"}); err == nil {
		t.Fatalf("expected service error")
	}
}
