package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/goliatone/go-tableexport/adapters/logging"
	"github.com/goliatone/go-tableexport/export"
)

const envPrefix = "TABLEEXPORT"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := Main(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

// globals are the flags shared by every subcommand.
type globals struct {
	logLevel string
	config   string
	logger   export.Logger
}

func (g *globals) register(fs *flag.FlagSet) {
	fs.StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&g.config, "config", "", "YAML export profile")
}

func (g *globals) loadConfig() (export.Config, error) {
	if g.config == "" {
		return export.DefaultConfig(), nil
	}
	cfg, err := export.LoadConfigFile(g.config)
	if err != nil {
		return export.Config{}, fmt.Errorf("%q: %w", g.config, err)
	}
	return cfg, nil
}

// Main parses args and runs the selected subcommand.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	g := &globals{}
	rootFS := flag.NewFlagSet("tableexport", flag.ContinueOnError)
	rootFS.SetOutput(stderr)
	g.register(rootFS)

	root := &ffcli.Command{
		Name:       "tableexport",
		ShortUsage: "tableexport [flags] <subcommand> [flags]",
		FlagSet:    rootFS,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Subcommands: []*ffcli.Command{
			newFileCommand(g, export.FormatXLSX, stdout),
			newFileCommand(g, export.FormatCSV, stdout),
			newServeCommand(g),
			newBatchCommand(g, stdout),
			newDescribeCommand(g, stdout),
		},
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.Parse(args); err != nil {
		return err
	}
	g.logger = logging.New(stderr, g.logLevel)
	return root.Run(ctx)
}
