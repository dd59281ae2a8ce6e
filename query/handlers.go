package query

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-tableexport/export"
)

// ListSourcesHandler returns the names a service can export.
type ListSourcesHandler struct {
	Service export.Service
}

func NewListSourcesHandler(svc export.Service) *ListSourcesHandler {
	return &ListSourcesHandler{Service: svc}
}

func (h *ListSourcesHandler) Query(ctx context.Context, msg ListSources) ([]string, error) {
	if h == nil || h.Service == nil {
		return nil, serviceRequired()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.Service.Sources(), nil
}

// DescribeSourceHandler resolves a source and reports its columns.
type DescribeSourceHandler struct {
	Service export.Service
}

func NewDescribeSourceHandler(svc export.Service) *DescribeSourceHandler {
	return &DescribeSourceHandler{Service: svc}
}

func (h *DescribeSourceHandler) Query(ctx context.Context, msg DescribeSource) (export.SourceInfo, error) {
	if h == nil || h.Service == nil {
		return export.SourceInfo{}, serviceRequired()
	}
	if err := msg.Validate(); err != nil {
		return export.SourceInfo{}, err
	}
	return h.Service.Describe(ctx, msg.Source, msg.Params)
}

func serviceRequired() error {
	return errors.New("export service is required", errors.CategoryInternal).
		WithTextCode("SERVICE_REQUIRED")
}
