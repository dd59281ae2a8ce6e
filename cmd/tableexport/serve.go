package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	exportrouter "github.com/goliatone/go-tableexport/adapters/router"
	"github.com/goliatone/go-tableexport/export"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(g *globals) *ffcli.Command {
	var (
		addr     string
		basePath string
		sources  sourceOptions
	)
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&addr, "addr", ":8080", "listen address")
	fs.StringVar(&basePath, "base", "/exports", "route prefix for the export API")
	sources.register(fs)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "tableexport serve -db file.sqlite -query name=SQL [flags]",
		ShortHelp:  "serve exports over HTTP",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec: func(ctx context.Context, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			registry, closeSources, err := sources.build(ctx)
			if err != nil {
				return err
			}
			defer closeSources()
			if len(registry.Names()) == 0 {
				return errors.New("no sources configured, use -query or -in")
			}

			svc := export.NewService(export.ServiceConfig{Sources: registry, Config: cfg, Logger: g.logger})
			srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
				return fiber.New(fiber.Config{
					AppName:               "tableexport",
					DisableStartupMessage: true,
				})
			})
			handler := exportrouter.NewHandler(exportrouter.Config{
				Service:  svc,
				BasePath: basePath,
				Logger:   g.logger,
			})
			handler.RegisterRoutes(srv.Router())

			errc := make(chan error, 1)
			go func() {
				g.logger.Infof("serving %v on %s%s", registry.Names(), addr, basePath)
				errc <- srv.Serve(addr)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			g.logger.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
