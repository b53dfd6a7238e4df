package neo4jdb

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var schemaStatements = []string{
	"CREATE CONSTRAINT memory_id_unique IF NOT EXISTS FOR (m:Memory) REQUIRE m.id IS UNIQUE",
	"CREATE CONSTRAINT entity_id_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE",
	"CREATE INDEX memory_scope_idx IF NOT EXISTS FOR (m:Memory) ON (m.scope_type, m.scope_id)",
	"CREATE INDEX memory_created_at_idx IF NOT EXISTS FOR (m:Memory) ON (m.created_at)",
	"CREATE INDEX entity_scope_idx IF NOT EXISTS FOR (e:Entity) ON (e.scope_id)",
	"CREATE INDEX entity_name_idx IF NOT EXISTS FOR (e:Entity) ON (e.name)",
}

// EnsureSchema creates constraints and indexes if missing. Failures are
// logged and skipped so startup does not depend on schema privileges.
func (c *Client) EnsureSchema(ctx context.Context) {
	if c == nil || c.Driver == nil {
		return
	}
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.Database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	for _, stmt := range schemaStatements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			c.log.Warn("schema statement failed", "statement", stmt, "error", err)
		}
	}
}
