package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/query"
)

func newDescribeCommand(g *globals, stdout io.Writer) *ffcli.Command {
	var sources sourceOptions
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	sources.register(fs)

	return &ffcli.Command{
		Name:       "describe",
		ShortUsage: "tableexport describe [-in file]... [-db file -query name=SQL]... [source...]",
		ShortHelp:  "print the column layout of sources as JSON",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, args []string) error {
			registry, closeSources, err := sources.build(ctx)
			if err != nil {
				return err
			}
			defer closeSources()
			svc := export.NewService(export.ServiceConfig{Sources: registry, Logger: g.logger})

			names := args
			if len(names) == 0 {
				if names, err = query.NewListSourcesHandler(svc).Query(ctx, query.ListSources{}); err != nil {
					return err
				}
			}
			describe := query.NewDescribeSourceHandler(svc)
			infos := make([]export.SourceInfo, 0, len(names))
			for _, name := range names {
				info, err := describe.Query(ctx, query.DescribeSource{Source: name})
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(infos)
		},
	}
}
