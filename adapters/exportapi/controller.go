package exportapi

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableexport/export"
)

// DefaultMaxBufferBytes is the fallback buffer limit when streaming is unavailable.
const DefaultMaxBufferBytes int64 = 8 * 1024 * 1024

// DefaultBasePath is used when Config.BasePath is empty.
const DefaultBasePath = "/exports"

// Config configures the shared export API controller.
type Config struct {
	Service        export.Service
	BasePath       string
	Logger         export.Logger
	QueryDecoder   RequestDecoder
	BodyDecoder    RequestDecoder
	MaxBufferBytes int64
}

// Controller exposes export API handlers for multiple transports.
type Controller struct {
	service        export.Service
	basePath       string
	logger         export.Logger
	queryDecoder   RequestDecoder
	bodyDecoder    RequestDecoder
	maxBufferBytes int64
}

// NewController creates a shared export API controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	queryDecoder := cfg.QueryDecoder
	if queryDecoder == nil {
		queryDecoder = QueryRequestDecoder{}
	}
	bodyDecoder := cfg.BodyDecoder
	if bodyDecoder == nil {
		bodyDecoder = JSONRequestDecoder{}
	}
	maxBuffer := cfg.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	return &Controller{
		service:        cfg.Service,
		basePath:       basePath,
		logger:         logger,
		queryDecoder:   queryDecoder,
		bodyDecoder:    bodyDecoder,
		maxBufferBytes: maxBuffer,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes export endpoints using the shared controller:
//
//	GET  <base>          list sources
//	GET  <base>/:source  download, options in the query string
//	POST <base>/:source  download, options in a JSON body
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, export.NewError(export.KindInternal, "request is nil", nil))
		return
	}
	if !strings.HasPrefix(req.Path(), c.basePath) {
		writeNotFound(res)
		return
	}

	pathSuffix := strings.Trim(strings.TrimPrefix(req.Path(), c.basePath), "/")
	parts := []string{}
	if pathSuffix != "" {
		parts = strings.Split(pathSuffix, "/")
	}

	switch req.Method() {
	case http.MethodGet:
		switch len(parts) {
		case 0:
			c.HandleList(req, res)
		case 1:
			c.HandleDownload(req, res, parts[0])
		default:
			writeNotFound(res)
		}
	case http.MethodPost:
		if len(parts) != 1 {
			writeNotFound(res)
			return
		}
		c.HandleSubmit(req, res, parts[0])
	default:
		res.SetHeader("Allow", "GET,POST")
		res.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// HandleList writes the registered source names.
func (c *Controller) HandleList(req Request, res Response) {
	if c.service == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "export service not configured", nil))
		return
	}
	writeJSON(res, http.StatusOK, SourcesResponse{Sources: c.service.Sources()})
}

// HandleDownload exports source with options taken from the query string.
func (c *Controller) HandleDownload(req Request, res Response, source string) {
	c.export(req, res, c.queryDecoder, source)
}

// HandleSubmit exports source with options taken from a JSON body.
func (c *Controller) HandleSubmit(req Request, res Response, source string) {
	c.export(req, res, c.bodyDecoder, source)
}

func (c *Controller) export(req Request, res Response, decoder RequestDecoder, source string) {
	if c.service == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "export service not configured", nil))
		return
	}
	decoded, err := decoder.Decode(req, source)
	if err != nil {
		WriteError(res, err)
		return
	}

	download, err := c.service.Export(req.Context(), decoded)
	if err != nil {
		c.logger.Warnf("export %q failed: %v", source, err)
		WriteError(res, err)
		return
	}
	c.stream(res, download)
}

func (c *Controller) stream(res Response, download *export.DownloadResource) {
	reader, err := download.Source.Open()
	if err != nil {
		_ = download.Source.Discard()
		WriteError(res, err)
		return
	}
	defer reader.Close()

	for name, values := range download.Headers() {
		if len(values) > 0 {
			res.SetHeader(name, values[0])
		}
	}

	if writer, ok := res.Writer(); ok {
		res.WriteHeader(http.StatusOK)
		if _, err := io.Copy(writer, reader); err != nil {
			c.logger.Errorf("download %s copy failed: %v", download.ExportID, err)
		}
		return
	}

	buffer := newLimitedBuffer(c.maxBufferBytes)
	if _, err := io.Copy(buffer, reader); err != nil {
		clearDownloadHeaders(res)
		WriteError(res, err)
		return
	}
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(buffer.Bytes()); err != nil {
		c.logger.Errorf("download %s buffer write failed: %v", download.ExportID, err)
	}
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

// WriteError writes err as a JSON error body with a matching status.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := export.AsGoError(err)
	payload := ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	}
	writeJSON(res, statusForError(ge), payload)
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func clearDownloadHeaders(res Response) {
	for _, name := range []string{"Content-Disposition", "Content-Type", "X-Export-Id", "Cache-Control", "Pragma", "Expires"} {
		res.DelHeader(name)
	}
}

type limitedBuffer struct {
	buf     bytes.Buffer
	maxSize int64
}

func newLimitedBuffer(maxSize int64) *limitedBuffer {
	if maxSize <= 0 {
		maxSize = DefaultMaxBufferBytes
	}
	return &limitedBuffer{maxSize: maxSize}
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len()+len(p)) > b.maxSize {
		return 0, export.NewError(export.KindInternal, "buffer limit exceeded", nil)
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
