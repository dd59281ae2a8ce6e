package exportapi

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-tableexport/export"
)

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Query(name string) string
	Body() io.ReadCloser
}

// URLRequest is implemented by transports that expose the full request URL.
// Query parameters not consumed by the decoder are forwarded to the source.
type URLRequest interface {
	URL() *url.URL
}

// RequestDecoder turns a transport request into a service request for source.
type RequestDecoder interface {
	Decode(req Request, source string) (export.Request, error)
}

// QueryRequestDecoder reads export options from the query string:
// format, title, sheet, filename, totals, row_headers and exclude.
type QueryRequestDecoder struct{}

// Decode parses query params into an export request.
func (QueryRequestDecoder) Decode(req Request, source string) (export.Request, error) {
	if req == nil {
		return export.Request{}, export.NewError(export.KindInternal, "request is nil", nil)
	}

	values := url.Values{}
	if withURL, ok := req.(URLRequest); ok {
		if parsed := withURL.URL(); parsed != nil {
			values = parsed.Query()
		}
	} else {
		for _, key := range reservedKeys {
			if v := req.Query(key); v != "" {
				values.Set(key, v)
			}
		}
	}

	out := export.Request{
		Source:    strings.TrimSpace(source),
		Format:    normalizeFormat(values.Get("format")),
		Title:     values.Get("title"),
		SheetName: values.Get("sheet"),
		FileName:  values.Get("filename"),
		Exclude:   splitCSVValues(values["exclude"]),
	}
	var err error
	if out.Totals, err = parseOptionalBool(values.Get("totals"), "totals"); err != nil {
		return export.Request{}, err
	}
	if out.RowHeaders, err = parseOptionalBool(values.Get("row_headers"), "row_headers"); err != nil {
		return export.Request{}, err
	}

	for key, vals := range values {
		if isReservedKey(key) || len(vals) == 0 {
			continue
		}
		if out.Params == nil {
			out.Params = export.Params{}
		}
		out.Params[key] = vals[0]
	}
	return out, nil
}

// JSONRequestDecoder decodes a JSON body into an export request.
type JSONRequestDecoder struct{}

type requestPayload struct {
	Format     string            `json:"format,omitempty"`
	Title      string            `json:"title,omitempty"`
	Sheet      string            `json:"sheet,omitempty"`
	FileName   string            `json:"filename,omitempty"`
	Totals     *bool             `json:"totals,omitempty"`
	RowHeaders *bool             `json:"row_headers,omitempty"`
	Exclude    []string          `json:"exclude,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// Decode decodes a JSON request body into an export request.
func (JSONRequestDecoder) Decode(req Request, source string) (export.Request, error) {
	if req == nil {
		return export.Request{}, export.NewError(export.KindInternal, "request is nil", nil)
	}
	body := req.Body()
	if body == nil {
		return export.Request{}, export.NewError(export.KindValidation, "request body is required", nil)
	}
	defer body.Close()

	var payload requestPayload
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return export.Request{}, export.NewError(export.KindValidation, "invalid request payload", err)
	}
	return export.Request{
		Source:     strings.TrimSpace(source),
		Format:     normalizeFormat(payload.Format),
		Title:      payload.Title,
		SheetName:  payload.Sheet,
		FileName:   payload.FileName,
		Totals:     payload.Totals,
		RowHeaders: payload.RowHeaders,
		Exclude:    payload.Exclude,
		Params:     export.Params(payload.Params),
	}, nil
}

var reservedKeys = []string{"format", "title", "sheet", "filename", "totals", "row_headers", "exclude"}

func isReservedKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, reserved := range reservedKeys {
		if key == reserved {
			return true
		}
	}
	return false
}

func normalizeFormat(raw string) export.Format {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "excel" {
		return export.FormatXLSX
	}
	return export.Format(normalized)
}

func parseOptionalBool(raw, name string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, export.NewError(export.KindValidation, "invalid "+name+" flag", err)
	}
	return &v, nil
}

func splitCSVValues(values []string) []string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return parts
}
