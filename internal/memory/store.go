package memory

import "context"

// EntityHit is a graph-channel match: the entity plus the most recent memory
// it was extracted from, if any.
type EntityHit struct {
	Entity Entity
	Record *MemoryRecord
}

// GraphSnapshot is a bounded view of a scope's knowledge graph, used by the
// inspection endpoints.
type GraphSnapshot struct {
	Entities      []Entity
	Relationships []Relationship
}

type ScopeStats struct {
	Memories      int64
	Entities      int64
	Relationships int64
}

// Store is the knowledge store contract the core depends on. Implementations
// wrap transport failures in errors.ErrStoreUnavailable.
type Store interface {
	// WriteInteraction persists the record plus derived entities and
	// relationships in one transaction. Any upsert failure rolls back the
	// whole write; an orphaned record with missing derived knowledge must
	// never be left behind.
	WriteInteraction(ctx context.Context, record *MemoryRecord, entities []Entity, relationships []Relationship) error

	// RecentWithEmbedding returns the newest records in scope that carry an
	// embedding, newest first.
	RecentWithEmbedding(ctx context.Context, scope Scope, limit int) ([]MemoryRecord, error)

	// SearchText matches the query as a case-insensitive substring of
	// question, answer, or summary, newest first.
	SearchText(ctx context.Context, scope Scope, query string, limit int) ([]MemoryRecord, error)

	// SearchEntities matches a term against entity name, description, or
	// type within the scope and joins back to source records.
	SearchEntities(ctx context.Context, scope Scope, term string, limit int) ([]EntityHit, error)

	// ClearScope deletes the scope's memory records and reports how many
	// were removed. Entities and relationships are intentionally left in
	// place; callers needing full forgetting must know the clear is partial.
	ClearScope(ctx context.Context, scope Scope) (int64, error)

	EntityGraph(ctx context.Context, scope Scope, limit int) (*GraphSnapshot, error)

	Stats(ctx context.Context, scope Scope) (*ScopeStats, error)
}
