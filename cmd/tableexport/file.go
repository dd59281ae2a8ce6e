package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/goliatone/go-tableexport/command"
	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
	"github.com/goliatone/go-tableexport/sources/tree"
)

// optionalBool is a bool flag that remembers whether it was set.
type optionalBool struct {
	value *bool
}

func (o *optionalBool) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.FormatBool(*o.value)
}

func (o *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	o.value = &v
	return nil
}

func (o *optionalBool) IsBoolFlag() bool { return true }

type fileOptions struct {
	in         string
	out        string
	title      string
	sheet      string
	fileName   string
	exclude    string
	charset    string
	delimiter  string
	totals     optionalBool
	rowHeaders optionalBool
}

func newFileCommand(g *globals, format export.Format, stdout io.Writer) *ffcli.Command {
	opts := &fileOptions{}
	fs := flag.NewFlagSet(string(format), flag.ContinueOnError)
	fs.StringVar(&opts.in, "in", "", "input file: delimited text, or a .json tree document")
	fs.StringVar(&opts.out, "out", "", "output file, - for stdout (default: input with the new extension)")
	fs.StringVar(&opts.title, "title", "", "title row text")
	fs.StringVar(&opts.sheet, "sheet", "", "sheet name")
	fs.StringVar(&opts.fileName, "filename", "", "download file name template")
	fs.StringVar(&opts.exclude, "exclude", "", "comma separated column ids to leave out")
	fs.StringVar(&opts.charset, "charset", "", "input charset (default UTF-8)")
	fs.StringVar(&opts.delimiter, "delimiter", "", "input delimiter (default: sniffed)")
	fs.Var(&opts.totals, "totals", "write the totals row")
	fs.Var(&opts.rowHeaders, "row-headers", "style the first column as row headers")

	return &ffcli.Command{
		Name:       string(format),
		ShortUsage: fmt.Sprintf("tableexport %s -in data.csv|tree.json [flags]", format),
		ShortHelp:  fmt.Sprintf("export a file as %s", strings.ToUpper(string(format))),
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, args []string) error {
			if opts.in == "" && len(args) > 0 {
				opts.in = args[0]
			}
			return runFileExport(ctx, g, format, opts, stdout)
		},
	}
}

func runFileExport(ctx context.Context, g *globals, format export.Format, opts *fileOptions, stdout io.Writer) error {
	if opts.in == "" {
		return errors.New("-in is required")
	}
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	holder, err := loadHolder(opts.in, opts.charset, opts.delimiter)
	if err != nil {
		return fmt.Errorf("%q: %w", opts.in, err)
	}

	source := strings.TrimSuffix(filepath.Base(opts.in), filepath.Ext(opts.in))
	sources := export.NewSourceRegistry()
	if err := sources.RegisterHolder(source, holder); err != nil {
		return err
	}
	svc := export.NewService(export.ServiceConfig{Sources: sources, Config: cfg, Logger: g.logger})
	req := export.Request{
		Source:     source,
		Format:     format,
		Title:      opts.title,
		SheetName:  opts.sheet,
		FileName:   opts.fileName,
		Totals:     opts.totals.value,
		RowHeaders: opts.rowHeaders.value,
		Exclude:    splitList(opts.exclude),
	}

	if opts.out == "-" {
		var download *export.DownloadResource
		if err := command.NewExportTableHandler(svc).Execute(ctx, command.ExportTable{Request: req, Result: &download}); err != nil {
			return err
		}
		_, err := download.WriteTo(stdout)
		return err
	}

	out := opts.out
	if out == "" {
		out = strings.TrimSuffix(opts.in, filepath.Ext(opts.in)) + "." + string(format)
		if out == opts.in {
			out = strings.TrimSuffix(opts.in, filepath.Ext(opts.in)) + "-export." + string(format)
		}
	}
	var res command.WriteResult
	if err := command.NewWriteExportHandler(svc).Execute(ctx, command.WriteExport{Request: req, Path: out, Result: &res}); err != nil {
		return err
	}
	g.logger.Infof("wrote %s (%d bytes, export %s)", res.Path, res.Bytes, res.ExportID)
	return nil
}

// loadHolder picks the hierarchical source for .json input and the flat
// delimited source otherwise.
func loadHolder(path, charset, delimiter string) (export.Holder, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return tree.FromJSON(fh)
	}
	opts := table.CSVOptions{Charset: charset}
	if delimiter != "" {
		if delimiter == `\t` {
			delimiter = "\t"
		}
		r, size := utf8.DecodeRuneInString(delimiter)
		if size != len(delimiter) {
			return nil, fmt.Errorf("delimiter %q must be a single character", delimiter)
		}
		opts.Delimiter = r
	}
	return table.FromCSV(fh, opts)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
