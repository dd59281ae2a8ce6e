package export

import (
	"context"
	"strings"
	"time"
)

// Request describes one export requested through the service.
type Request struct {
	Source    string `json:"source"`
	Format    Format `json:"format,omitempty"`
	Title     string `json:"title,omitempty"`
	SheetName string `json:"sheet,omitempty"`
	// FileName is a text/template pattern, see RenderFileName.
	FileName   string   `json:"filename,omitempty"`
	Totals     *bool    `json:"totals,omitempty"`
	RowHeaders *bool    `json:"row_headers,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
	Params     Params   `json:"params,omitempty"`
}

// Service resolves named sources and produces download resources.
type Service interface {
	Export(ctx context.Context, req Request) (*DownloadResource, error)
	Describe(ctx context.Context, source string, params Params) (SourceInfo, error)
	Sources() []string
}

// SourceInfo describes the columns a source would export.
type SourceInfo struct {
	Name         string       `json:"name"`
	Hierarchical bool         `json:"hierarchical"`
	Size         int          `json:"size"`
	Columns      []ColumnInfo `json:"columns"`
}

// ColumnInfo is the holder metadata for one column.
type ColumnInfo struct {
	ID        string    `json:"id"`
	Header    string    `json:"header"`
	Type      ValueType `json:"type"`
	Align     Alignment `json:"align,omitempty"`
	Collapsed bool      `json:"collapsed,omitempty"`
}

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	Sources *SourceRegistry
	Config  Config
	Logger  Logger
	Now     func() time.Time
}

type service struct {
	sources *SourceRegistry
	config  Config
	logger  Logger
	now     func() time.Time
}

// NewService creates a Service with the provided configuration. A zero
// Config falls back to DefaultConfig.
func NewService(cfg ServiceConfig) Service {
	sources := cfg.Sources
	if sources == nil {
		sources = NewSourceRegistry()
	}
	base := cfg.Config
	if base.SheetName == "" {
		base = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{sources: sources, config: base, logger: logger, now: now}
}

func (s *service) Sources() []string {
	return s.sources.Names()
}

func (s *service) Describe(ctx context.Context, source string, params Params) (SourceInfo, error) {
	holder, err := s.holder(ctx, source, params)
	if err != nil {
		return SourceInfo{}, err
	}
	info := SourceInfo{Name: source, Hierarchical: holder.Hierarchical(), Size: holder.Size()}
	for _, id := range holder.ColumnIDs() {
		info.Columns = append(info.Columns, ColumnInfo{
			ID:        id,
			Header:    holder.Header(id),
			Type:      holder.ValueType(id),
			Align:     holder.Alignment(id),
			Collapsed: holder.Collapsed(id),
		})
	}
	return info, nil
}

func (s *service) holder(ctx context.Context, source string, params Params) (Holder, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, NewError(KindValidation, "source is required", nil)
	}
	factory, err := s.sources.Resolve(source)
	if err != nil {
		return nil, err
	}
	holder, err := factory(ctx, params)
	if err != nil {
		return nil, err
	}
	if holder == nil {
		return nil, NewError(KindInternal, "source returned no holder", nil)
	}
	return holder, nil
}

func (s *service) Export(ctx context.Context, req Request) (*DownloadResource, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Source) == "" {
		return nil, NewError(KindValidation, "source is required", nil)
	}
	format := req.Format
	if format == "" {
		format = s.config.Format
	}
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	if format == FormatXLS {
		return nil, NewError(KindNotImpl, "legacy xls output is not supported", nil)
	}

	holder, err := s.holder(ctx, req.Source, req.Params)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configFor(req, format)
	if err != nil {
		return nil, err
	}

	s.logger.Infof("exporting source %q as %s (%d items)", req.Source, format, holder.Size())
	if format == FormatCSV {
		exp := NewCSV(holder, cfg, WithLogger(s.logger))
		defer exp.Close()
		return exp.Download()
	}
	exp := New(holder, cfg, WithLogger(s.logger))
	defer exp.Close()
	return exp.Download()
}

func (s *service) configFor(req Request, format Format) (Config, error) {
	cfg := s.config
	cfg.Format = format
	if req.Title != "" {
		cfg.Title = req.Title
	}
	if req.SheetName != "" {
		cfg.SheetName = req.SheetName
	}
	if req.Totals != nil {
		cfg.DisplayTotals = *req.Totals
	}
	if req.RowHeaders != nil {
		cfg.RowHeaders = *req.RowHeaders
	}
	if len(req.Exclude) > 0 {
		cfg.ExcludedColumns = append(append([]string(nil), cfg.ExcludedColumns...), req.Exclude...)
	}

	pattern := req.FileName
	if pattern == "" {
		pattern = cfg.FileName
	}
	name, err := RenderFileName(pattern, format, NewFileNameData(req.Source, format, cfg.Title, s.now()))
	if err != nil {
		return cfg, err
	}
	cfg.FileName = name
	return cfg, nil
}
