package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdxkit/clausewitz/extract"
	"github.com/pdxkit/clausewitz/internal/mapgraph"
	"github.com/pdxkit/clausewitz/internal/store"
	"github.com/pdxkit/clausewitz/script"
)

func (c *cli) ingestCmd() *cobra.Command {
	var dbURL string
	var graph bool
	cmd := &cobra.Command{
		Use:   "ingest PATH...",
		Short: "Store extracted records in PostgreSQL and Neo4j",
		Long: `Extracts records from every file of a known kind and upserts them
into PostgreSQL (--db or DATABASE_URL), and writes states, strategic
regions, provinces and country ownership to Neo4j (--graph, using
NEO4J_URI, NEO4J_USER and NEO4J_PASSWORD).`,
		Example: `  clausewitz ingest --db postgres://localhost/hoi4 game/
  clausewitz ingest --graph game/history/states game/map/strategicregions`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbURL == "" {
				dbURL = c.cfg.DatabaseURL
			}
			if dbURL == "" && !graph {
				return errors.New("nothing to do: set --db (or DATABASE_URL) or --graph")
			}
			ctx := cmd.Context()

			batch, err := c.load(ctx, args, script.DefaultConfig())
			if err != nil {
				return err
			}
			syntax := c.reportFailed(batch)
			results, failed := c.extractBatch(ctx, batch, "", nil)

			if dbURL != "" {
				if err := c.ingestRecords(ctx, dbURL, results); err != nil {
					return err
				}
			}
			if graph {
				if err := c.ingestGraph(ctx, results); err != nil {
					return err
				}
			}

			if syntax {
				return exitStatus(exitSyntax)
			}
			if failed > 0 || len(batch.Failed()) > 0 {
				return exitStatus(exitError)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbURL, "db", "", "PostgreSQL connection URL")
	cmd.Flags().BoolVar(&graph, "graph", false, "export the province graph to Neo4j")
	return cmd
}

func (c *cli) ingestRecords(ctx context.Context, dbURL string, results []extracted) error {
	var records []store.Record
	for _, e := range results {
		recs, err := store.Records(e.Result, e.Path, e.Hash)
		if err != nil {
			return err
		}
		records = append(records, recs...)
	}

	s, err := store.Connect(ctx, dbURL, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	n, err := s.Upsert(ctx, records)
	if err != nil {
		return err
	}
	fmt.Printf("stored %d records from %d files\n", n, len(results))
	return nil
}

func (c *cli) ingestGraph(ctx context.Context, results []extracted) error {
	var stmts []mapgraph.Statement
	for _, e := range results {
		switch v := e.Result.Value.(type) {
		case *extract.StateRecord:
			stmts = append(stmts, mapgraph.StateStatements(v, e.Path)...)
		case *extract.StrategicRegionRecord:
			stmts = append(stmts, mapgraph.RegionStatements(v, e.Path)...)
		}
	}
	if len(stmts) == 0 {
		fmt.Println("no states or strategic regions to export")
		return nil
	}

	b, err := mapgraph.Connect(ctx, c.cfg.Neo4jURI, c.cfg.Neo4jUser, c.cfg.Neo4jPassword, c.logger)
	if err != nil {
		return err
	}
	defer b.Close(ctx)
	if err := b.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := b.Apply(ctx, stmts); err != nil {
		return err
	}
	fmt.Printf("applied %d graph statements\n", len(stmts))
	return nil
}
