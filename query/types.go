package query

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableexport/export"
)

// ListSources requests the registered source names.
type ListSources struct{}

func (ListSources) Type() string { return "tableexport:sources" }

func (ListSources) Validate() error { return nil }

// DescribeSource requests the column layout of one source.
type DescribeSource struct {
	Source string
	Params export.Params
}

func (DescribeSource) Type() string { return "tableexport:describe" }

func (msg DescribeSource) Validate() error {
	if strings.TrimSpace(msg.Source) == "" {
		return errors.New("source is required", errors.CategoryValidation).
			WithTextCode("SOURCE_REQUIRED")
	}
	return nil
}
