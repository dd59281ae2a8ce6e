package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/goliatone/go-tableexport/command"
	"github.com/goliatone/go-tableexport/export"
)

func newBatchCommand(g *globals, stdout io.Writer) *ffcli.Command {
	var (
		from    string
		outDir  string
		limit   int
		sources sourceOptions
	)
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.StringVar(&from, "from", "", "JSON file with batch export requests")
	fs.StringVar(&outDir, "out-dir", ".", "directory for requests without an output")
	fs.IntVar(&limit, "max", 0, "stop after this many exports (0 means all)")
	sources.register(fs)

	return &ffcli.Command{
		Name:       "batch",
		ShortUsage: "tableexport batch -from requests.json [-in file]... [-db file -query name=SQL]...",
		ShortHelp:  "write a batch of exports to disk",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, _ []string) error {
			if from == "" {
				return errors.New("-from is required")
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			registry, closeSources, err := sources.build(ctx)
			if err != nil {
				return err
			}
			defer closeSources()

			svc := export.NewService(export.ServiceConfig{Sources: registry, Config: cfg, Logger: g.logger})
			batch := command.NewBatchCommand(
				command.NewWriteExportHandler(svc),
				nil,
				command.WithBatchOutputDir(outDir),
				command.WithBatchLimits(command.BatchLimits{MaxRequests: limit}),
			)
			count, err := batch.Run(ctx, from)
			fmt.Fprintf(stdout, "%d exports written\n", count)
			return err
		},
	}
}
