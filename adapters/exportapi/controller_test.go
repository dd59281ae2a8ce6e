package exportapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
	"github.com/xuri/excelize/v2"
)

type stubRequest struct {
	method string
	parsed *url.URL
	body   string
	ctx    context.Context
}

func newStubRequest(t *testing.T, method, raw, body string) stubRequest {
	t.Helper()
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return stubRequest{method: method, parsed: parsed, body: body}
}

func (s stubRequest) Context() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}
func (s stubRequest) Method() string          { return s.method }
func (s stubRequest) Path() string            { return s.parsed.Path }
func (s stubRequest) URL() *url.URL           { return s.parsed }
func (s stubRequest) Query(key string) string { return s.parsed.Query().Get(key) }
func (s stubRequest) Body() io.ReadCloser {
	if s.body == "" {
		return nil
	}
	return io.NopCloser(strings.NewReader(s.body))
}

// queryOnlyRequest has no URL accessor, so decoding falls back to Query lookups.
type queryOnlyRequest struct {
	inner stubRequest
}

func (q queryOnlyRequest) Context() context.Context { return q.inner.Context() }
func (q queryOnlyRequest) Method() string           { return q.inner.Method() }
func (q queryOnlyRequest) Path() string             { return q.inner.Path() }
func (q queryOnlyRequest) Query(name string) string { return q.inner.Query(name) }
func (q queryOnlyRequest) Body() io.ReadCloser      { return q.inner.Body() }

type stubResponse struct {
	headers  http.Header
	status   int
	body     bytes.Buffer
	stream   bool
	jsonBody any
}

func newStubResponse(stream bool) *stubResponse {
	return &stubResponse{headers: http.Header{}, stream: stream}
}

func (r *stubResponse) SetHeader(name, value string) { r.headers.Set(name, value) }
func (r *stubResponse) DelHeader(name string)        { r.headers.Del(name) }
func (r *stubResponse) WriteHeader(status int)       { r.status = status }
func (r *stubResponse) Write(data []byte) (int, error) {
	return r.body.Write(data)
}
func (r *stubResponse) WriteJSON(status int, payload any) error {
	r.status = status
	r.jsonBody = payload
	return json.NewEncoder(&r.body).Encode(payload)
}
func (r *stubResponse) Writer() (io.Writer, bool) {
	if !r.stream {
		return nil, false
	}
	return &r.body, true
}

func newController(t *testing.T) *Controller {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
	tbl, err := table.New(
		table.Column{ID: "sku"},
		table.Column{ID: "qty", Type: export.TypeInteger},
		table.Column{ID: "note"},
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	_ = tbl.AddRow("A1", 3, "first")
	_ = tbl.AddRow("B2", 4, "second")

	sources := export.NewSourceRegistry()
	if err := sources.RegisterHolder("stock", tbl); err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = sources.Register("params", func(_ context.Context, params export.Params) (export.Holder, error) {
		if params["region"] != "emea" {
			return nil, export.NewError(export.KindValidation, "region is required", nil)
		}
		return tbl, nil
	})
	return NewController(Config{Service: export.NewService(export.ServiceConfig{Sources: sources})})
}

func TestController_DownloadStreamsXLSX(t *testing.T) {
	ctrl := newController(t)
	res := newStubResponse(true)
	ctrl.Serve(newStubRequest(t, http.MethodGet, "/exports/stock?title=Stock&exclude=note&filename=stock-{{.Date}}", ""), res)

	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.status, res.body.String())
	}
	if got := res.headers.Get("Content-Type"); got != export.MimeXLSX {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := res.headers.Get("Content-Disposition"); !strings.HasPrefix(got, `attachment; filename="stock-`) || !strings.HasSuffix(got, `.xlsx"`) {
		t.Fatalf("unexpected disposition %q", got)
	}
	if res.headers.Get("X-Export-Id") == "" {
		t.Fatalf("expected export id header")
	}

	file, err := excelize.OpenReader(bytes.NewReader(res.body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()
	sheet := file.GetSheetName(0)
	if title, _ := file.GetCellValue(sheet, "A1"); title != "Stock" {
		t.Fatalf("expected title, got %q", title)
	}
	if header, _ := file.GetCellValue(sheet, "C2"); header != "" {
		t.Fatalf("expected excluded column to be dropped, got %q", header)
	}
}

func TestController_BufferedCSV(t *testing.T) {
	ctrl := newController(t)
	res := newStubResponse(false)
	ctrl.Serve(newStubRequest(t, http.MethodGet, "/exports/stock?format=csv&totals=false", ""), res)

	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	want := "sku,qty,note\nA1,3,first\nB2,4,second\n"
	if res.body.String() != want {
		t.Fatalf("unexpected body %q", res.body.String())
	}
}

func TestController_SubmitJSON(t *testing.T) {
	ctrl := newController(t)
	res := newStubResponse(true)
	body := `{"format":"csv","totals":false,"params":{"region":"emea"}}`
	ctrl.Serve(newStubRequest(t, http.MethodPost, "/exports/params", body), res)
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.status, res.body.String())
	}
	if !strings.HasPrefix(res.body.String(), "sku,qty,note") {
		t.Fatalf("unexpected body %q", res.body.String())
	}
}

func TestController_ForwardsQueryParams(t *testing.T) {
	ctrl := newController(t)
	res := newStubResponse(true)
	ctrl.Serve(newStubRequest(t, http.MethodGet, "/exports/params?format=csv&region=emea", ""), res)
	if res.status != http.StatusOK {
		t.Fatalf("expected params to reach the source, got %d: %s", res.status, res.body.String())
	}
}

func TestController_Errors(t *testing.T) {
	ctrl := newController(t)
	cases := []struct {
		name   string
		method string
		raw    string
		body   string
		status int
		code   string
	}{
		{"unknown source", http.MethodGet, "/exports/missing", "", http.StatusNotFound, "not_found"},
		{"bad format", http.MethodGet, "/exports/stock?format=pdf", "", http.StatusBadRequest, "validation"},
		{"xls", http.MethodGet, "/exports/stock?format=xls", "", http.StatusNotImplemented, "not_implemented"},
		{"bad flag", http.MethodGet, "/exports/stock?totals=maybe", "", http.StatusBadRequest, "validation"},
		{"bad body", http.MethodPost, "/exports/stock", `{"nope":1}`, http.StatusBadRequest, "validation"},
		{"source validation", http.MethodGet, "/exports/params", "", http.StatusBadRequest, "validation"},
	}
	for _, tc := range cases {
		res := newStubResponse(true)
		ctrl.Serve(newStubRequest(t, tc.method, tc.raw, tc.body), res)
		if res.status != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, res.status)
		}
		payload, ok := res.jsonBody.(ErrorResponse)
		if !ok || payload.Error.Code != tc.code {
			t.Fatalf("%s: unexpected error body %#v", tc.name, res.jsonBody)
		}
	}
}

func TestController_Routing(t *testing.T) {
	ctrl := newController(t)

	res := newStubResponse(true)
	ctrl.Serve(newStubRequest(t, http.MethodGet, "/exports", ""), res)
	list, ok := res.jsonBody.(SourcesResponse)
	if !ok || strings.Join(list.Sources, ",") != "params,stock" {
		t.Fatalf("unexpected source list %#v", res.jsonBody)
	}

	res = newStubResponse(true)
	ctrl.Serve(newStubRequest(t, http.MethodDelete, "/exports/stock", ""), res)
	if res.status != http.StatusMethodNotAllowed || res.headers.Get("Allow") != "GET,POST" {
		t.Fatalf("expected 405, got %d", res.status)
	}

	res = newStubResponse(true)
	ctrl.Serve(newStubRequest(t, http.MethodGet, "/other/stock", ""), res)
	if res.status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.status)
	}
}

func TestController_CanceledRequest(t *testing.T) {
	ctrl := newController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := newStubRequest(t, http.MethodGet, "/exports/stock", "")
	req.ctx = ctx
	res := newStubResponse(true)
	ctrl.Serve(req, res)
	if res.status != http.StatusConflict {
		t.Fatalf("expected 409 for canceled request, got %d", res.status)
	}
}

func TestQueryRequestDecoder_WithoutURL(t *testing.T) {
	req := queryOnlyRequest{newStubRequest(t, http.MethodGet, "/exports/stock?format=Excel&exclude=a,b&row_headers=1&region=x", "")}
	decoded, err := QueryRequestDecoder{}.Decode(req, "stock")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Format != export.FormatXLSX {
		t.Fatalf("expected excel alias to map to xlsx, got %q", decoded.Format)
	}
	if strings.Join(decoded.Exclude, "|") != "a|b" {
		t.Fatalf("unexpected exclude %v", decoded.Exclude)
	}
	if decoded.RowHeaders == nil || !*decoded.RowHeaders {
		t.Fatalf("expected row headers flag")
	}
	if decoded.Params != nil {
		t.Fatalf("expected no forwarded params without URL access, got %v", decoded.Params)
	}
}
