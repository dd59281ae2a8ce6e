package command

import (
	"context"
	"os"
	"path/filepath"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableexport/export"
)

// ExportTableHandler runs exports and hands back the download resource.
// The caller owns the resource and must stream or discard it.
type ExportTableHandler struct {
	Service export.Service
}

func NewExportTableHandler(svc export.Service) *ExportTableHandler {
	return &ExportTableHandler{Service: svc}
}

func (h *ExportTableHandler) Execute(ctx context.Context, msg ExportTable) error {
	if h == nil || h.Service == nil {
		return errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	download, err := h.Service.Export(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = download
	}
	if res := gcmd.ResultFromContext[*export.DownloadResource](ctx); res != nil {
		res.Store(download)
	}
	return nil
}

// WriteExportHandler runs exports straight into a file.
type WriteExportHandler struct {
	Service export.Service
}

func NewWriteExportHandler(svc export.Service) *WriteExportHandler {
	return &WriteExportHandler{Service: svc}
}

func (h *WriteExportHandler) Execute(ctx context.Context, msg WriteExport) error {
	if h == nil || h.Service == nil {
		return errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	download, err := h.Service.Export(ctx, msg.Request)
	if err != nil {
		return err
	}

	path := msg.Path
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, download.FileName)
	}
	out, err := os.Create(path)
	if err != nil {
		_ = download.Source.Discard()
		return errors.Wrap(err, errors.CategoryExternal, "create output file failed").
			WithTextCode("OUTPUT_CREATE")
	}
	n, err := download.WriteTo(out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return errors.Wrap(err, errors.CategoryExternal, "write output file failed").
			WithTextCode("OUTPUT_WRITE")
	}

	result := WriteResult{
		Path:        path,
		FileName:    download.FileName,
		ContentType: download.ContentType,
		ExportID:    download.ExportID,
		Bytes:       n,
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[WriteResult](ctx); res != nil {
		res.Store(result)
	}
	return nil
}
