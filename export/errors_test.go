package export

import (
	"context"
	"errors"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestAsGoErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		category errorslib.Category
		code     string
	}{
		{NewError(KindValidation, "bad input", nil), errorslib.CategoryValidation, "validation"},
		{NewError(KindNotFound, "missing", nil), errorslib.CategoryNotFound, "not_found"},
		{NewError(KindNotImpl, "xls", nil), errorslib.CategoryOperation, "not_implemented"},
		{context.DeadlineExceeded, errorslib.CategoryOperation, "timeout"},
		{context.Canceled, errorslib.CategoryOperation, "canceled"},
		{NewError(KindInternal, "boom", nil), errorslib.CategoryInternal, "internal"},
		{errors.New("plain"), errorslib.CategoryInternal, "internal"},
	}

	for _, tc := range cases {
		mapped := AsGoError(tc.err)
		if mapped == nil {
			t.Fatalf("expected mapping for %v", tc.err)
		}
		if mapped.Category != tc.category {
			t.Fatalf("expected category %s, got %s", tc.category, mapped.Category)
		}
		if mapped.TextCode != tc.code {
			t.Fatalf("expected text code %s, got %s", tc.code, mapped.TextCode)
		}
	}
}

func TestRecoverExportError(t *testing.T) {
	run := func() (err error) {
		defer recoverExportError(&err)
		UnknownColumn("nope")
		return nil
	}
	err := run()
	if KindFromError(err) != KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}

	defer func() {
		if r := recover(); r != "other" {
			t.Fatalf("expected foreign panic to propagate, got %v", r)
		}
	}()
	func() {
		var err error
		defer recoverExportError(&err)
		panic("other")
	}()
}
