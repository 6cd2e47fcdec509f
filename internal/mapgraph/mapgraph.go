// Package mapgraph exports states, strategic regions and their provinces
// to a Neo4j graph.
package mapgraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/pdxkit/clausewitz/extract"
	"github.com/pdxkit/clausewitz/internal/types"
)

var constraints = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (s:State) REQUIRE s.id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (p:Province) REQUIRE p.id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Country) REQUIRE c.tag IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (r:StrategicRegion) REQUIRE r.id IS UNIQUE",
}

const (
	mergeState = `
MERGE (s:State {id: $id})
SET s.name = $name, s.manpower = $manpower, s.category = $category, s.file = $file
WITH s
UNWIND $provinces AS pid
MERGE (p:Province {id: pid})
MERGE (s)-[:CONTAINS]->(p)
`
	mergeOwner = `
MATCH (s:State {id: $id})
MERGE (c:Country {tag: $tag})
MERGE (c)-[:OWNS]->(s)
`
	mergeCores = `
MATCH (s:State {id: $id})
UNWIND $tags AS tag
MERGE (c:Country {tag: tag})
MERGE (c)-[:CORE_OF]->(s)
`
	mergeRegion = `
MERGE (r:StrategicRegion {id: $id})
SET r.name = $name, r.naval_terrain = $naval_terrain, r.file = $file
WITH r
UNWIND $provinces AS pid
MERGE (p:Province {id: pid})
MERGE (r)-[:CONTAINS]->(p)
`
)

// Statement is one parameterized Cypher query.
type Statement struct {
	Cypher string
	Params map[string]any
}

// StateStatements returns the statements that merge a state, its
// provinces, owner and cores.
func StateStatements(s *extract.StateRecord, file string) []Statement {
	out := []Statement{{
		Cypher: mergeState,
		Params: map[string]any{
			"id":        s.ID,
			"name":      s.Name,
			"manpower":  s.Manpower,
			"category":  s.Category,
			"file":      file,
			"provinces": s.Provinces,
		},
	}}
	if s.Owner != "" {
		out = append(out, Statement{
			Cypher: mergeOwner,
			Params: map[string]any{"id": s.ID, "tag": s.Owner},
		})
	}
	if len(s.Cores) > 0 {
		out = append(out, Statement{
			Cypher: mergeCores,
			Params: map[string]any{"id": s.ID, "tags": s.Cores},
		})
	}
	return out
}

// RegionStatements returns the statements that merge a strategic region
// and its provinces.
func RegionStatements(r *extract.StrategicRegionRecord, file string) []Statement {
	return []Statement{{
		Cypher: mergeRegion,
		Params: map[string]any{
			"id":            r.ID,
			"name":          r.Name,
			"naval_terrain": r.NavalTerrain,
			"file":          file,
			"provinces":     r.Provinces,
		},
	}}
}

// Builder writes statements through a Neo4j driver.
type Builder struct {
	driver neo4j.DriverWithContext
	types.Logger
}

// Connect opens a driver with basic auth and verifies connectivity.
func Connect(ctx context.Context, uri, user, password string, logger *slog.Logger) (*Builder, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return NewBuilder(driver, logger), nil
}

// NewBuilder wraps an existing driver.
func NewBuilder(driver neo4j.DriverWithContext, logger *slog.Logger) *Builder {
	return &Builder{driver: driver, Logger: types.Logger{L: types.Component(logger, "mapgraph")}}
}

// Close closes the driver.
func (b *Builder) Close(ctx context.Context) error {
	return b.driver.Close(ctx)
}

// EnsureSchema creates uniqueness constraints for every node label.
func (b *Builder) EnsureSchema(ctx context.Context) error {
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}
	b.Log(slog.LevelDebug, "graph schema ensured")
	return nil
}

// Apply runs statements in order inside one write transaction.
func (b *Builder) Apply(ctx context.Context, stmts []Statement) error {
	if len(stmts) == 0 {
		return nil
	}
	session := b.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range stmts {
			if _, err := tx.Run(ctx, st.Cypher, st.Params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("apply graph statements: %w", err)
	}
	b.Log(slog.LevelInfo, "graph statements applied", slog.Int("statements", len(stmts)))
	return nil
}
