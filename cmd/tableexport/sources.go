package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-tableexport/export"
	exportsql "github.com/goliatone/go-tableexport/sources/sql"
)

// listFlag collects repeated string flags.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(s string) error {
	*l = append(*l, s)
	return nil
}

// sourceOptions describe the named sources served or batched by the CLI.
type sourceOptions struct {
	db      string
	queries listFlag
	files   listFlag
	charset string
}

func (o *sourceOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.db, "db", "", "SQLite database file for -query sources")
	fs.Var(&o.queries, "query", "named query source as name=SQL (repeatable)")
	fs.Var(&o.files, "in", "file source, named after the file (repeatable)")
	fs.StringVar(&o.charset, "charset", "", "charset of delimited file sources")
}

func noClose() error { return nil }

// build registers every configured source. The returned close func
// releases the database handle.
func (o *sourceOptions) build(ctx context.Context) (*export.SourceRegistry, func() error, error) {
	sources := export.NewSourceRegistry()
	for _, path := range o.files {
		holder, err := loadHolder(path, o.charset, "")
		if err != nil {
			return nil, noClose, fmt.Errorf("%q: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := sources.RegisterHolder(name, holder); err != nil {
			return nil, noClose, err
		}
	}
	if len(o.queries) == 0 {
		return sources, noClose, nil
	}
	if o.db == "" {
		return nil, noClose, errors.New("-query needs -db")
	}

	db, err := sql.Open("sqlite", o.db)
	if err != nil {
		return nil, noClose, fmt.Errorf("open %q: %w", o.db, err)
	}
	if err := o.registerQueries(ctx, db, sources); err != nil {
		_ = db.Close()
		return nil, noClose, err
	}
	return sources, db.Close, nil
}

func (o *sourceOptions) registerQueries(ctx context.Context, db *sql.DB, sources *export.SourceRegistry) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %q: %w", o.db, err)
	}
	queries := exportsql.NewRegistry()
	for _, spec := range o.queries {
		name, query, ok := strings.Cut(spec, "=")
		name, query = strings.TrimSpace(name), strings.TrimSpace(query)
		if !ok || name == "" || query == "" {
			return fmt.Errorf("-query %q: want name=SQL", spec)
		}
		if err := queries.Register(exportsql.Definition{Name: name, Query: query}); err != nil {
			return err
		}
		if err := sources.Register(name, exportsql.Source(db, queries, name)); err != nil {
			return err
		}
	}
	return nil
}
