package command

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableexport/export"
)

// ExportTable exports a registered source into a download resource.
type ExportTable struct {
	Request export.Request
	Result  **export.DownloadResource
}

func (ExportTable) Type() string { return "tableexport:export" }

func (msg ExportTable) Validate() error {
	if msg.Request.Source == "" {
		return errors.New("source is required", errors.CategoryValidation).
			WithTextCode("SOURCE_REQUIRED")
	}
	return nil
}

// WriteExport exports a registered source into a file on disk.
type WriteExport struct {
	Request export.Request
	Path    string
	Result  *WriteResult
}

func (WriteExport) Type() string { return "tableexport:write" }

func (msg WriteExport) Validate() error {
	if msg.Request.Source == "" {
		return errors.New("source is required", errors.CategoryValidation).
			WithTextCode("SOURCE_REQUIRED")
	}
	if msg.Path == "" {
		return errors.New("output path is required", errors.CategoryValidation).
			WithTextCode("PATH_REQUIRED")
	}
	return nil
}

// WriteResult describes a file written by WriteExportHandler.
type WriteResult struct {
	Path        string
	FileName    string
	ContentType string
	ExportID    string
	Bytes       int64
}
