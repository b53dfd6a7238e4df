package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/theshibabasement/neuroflow/internal/memory"
	apperr "github.com/theshibabasement/neuroflow/internal/pkg/errors"
	"github.com/theshibabasement/neuroflow/internal/platform/logger"
	"github.com/theshibabasement/neuroflow/internal/platform/neo4jdb"
)

// Neo4jStore implements memory.Store on top of the graph database. All
// timestamps are stored as RFC3339Nano strings and embeddings as float lists.
type Neo4jStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) (*Neo4jStore, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("knowledge: neo4j client required")
	}
	if log == nil {
		return nil, fmt.Errorf("knowledge: logger required")
	}
	return &Neo4jStore{client: client, log: log.With("store", "Neo4jKnowledge")}, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.client.Database,
	})
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrStoreUnavailable, op, err)
}

func (s *Neo4jStore) WriteInteraction(ctx context.Context, record *memory.MemoryRecord, entities []memory.Entity, relationships []memory.Relationship) error {
	if record == nil {
		return fmt.Errorf("%w: nil record", apperr.ErrInvalidArgument)
	}

	recordProps := map[string]any{
		"id":         record.ID,
		"scope_type": string(record.ScopeType),
		"scope_id":   record.ScopeID,
		"question":   record.Question,
		"answer":     record.Answer,
		"summary":    record.Summary,
		"created_at": record.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if len(record.Embedding) > 0 {
		emb := make([]any, len(record.Embedding))
		for i, v := range record.Embedding {
			emb[i] = float64(v)
		}
		recordProps["embedding"] = emb
	}

	nodes := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		if e.ID == "" || e.Name == "" {
			continue
		}
		attrsJSON := ""
		if len(e.Attributes) > 0 {
			if raw, err := json.Marshal(e.Attributes); err == nil {
				attrsJSON = string(raw)
			}
		}
		nodes = append(nodes, map[string]any{
			"id":              e.ID,
			"scope_id":        e.ScopeID,
			"name":            e.Name,
			"type":            e.Type,
			"description":     e.Description,
			"attributes_json": attrsJSON,
			"created_at":      e.CreatedAt.UTC().Format(time.RFC3339Nano),
			"updated_at":      e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	rels := make([]map[string]any, 0, len(relationships))
	for _, r := range relationships {
		if r.SourceEntityID == "" || r.TargetEntityID == "" || r.Type == "" {
			continue
		}
		rels = append(rels, map[string]any{
			"source_id":   r.SourceEntityID,
			"target_id":   r.TargetEntityID,
			"type":        r.Type,
			"description": r.Description,
			"strength":    r.Strength,
			"created_at":  r.CreatedAt.UTC().Format(time.RFC3339Nano),
			"updated_at":  r.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
CREATE (m:Memory)
SET m = $props
`, map[string]any{"props": recordProps})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(nodes) > 0 {
			res, err := tx.Run(ctx, `
UNWIND $nodes AS n
MERGE (e:Entity {id: n.id})
ON CREATE SET e.scope_id = n.scope_id, e.created_at = n.created_at
SET e.name = n.name,
    e.type = n.type,
    e.description = n.description,
    e.attributes_json = n.attributes_json,
    e.updated_at = n.updated_at
WITH e
MATCH (m:Memory {id: $memory_id})
MERGE (e)-[:EXTRACTED_FROM]->(m)
`, map[string]any{"nodes": nodes, "memory_id": record.ID})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}

		if len(rels) > 0 {
			// Strength smoothing on every observation: the stored value is
			// averaged with the newly observed one, never replaced. Fresh
			// edges seed from the 0.5 baseline before the first average.
			res, err := tx.Run(ctx, `
UNWIND $rels AS r
MATCH (a:Entity {id: r.source_id})
MATCH (b:Entity {id: r.target_id})
MERGE (a)-[rel:RELATED {type: r.type}]->(b)
ON CREATE SET rel.strength = $default_strength, rel.created_at = r.created_at
SET rel.strength = (rel.strength + r.strength) / 2.0,
    rel.description = r.description,
    rel.updated_at = r.updated_at
`, map[string]any{"rels": rels, "default_strength": memory.DefaultStrength})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return storeErr("write interaction", err)
	}
	return nil
}

func (s *Neo4jStore) RecentWithEmbedding(ctx context.Context, scope memory.Scope, limit int) ([]memory.MemoryRecord, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (m:Memory {scope_type: $scope_type, scope_id: $scope_id})
WHERE m.embedding IS NOT NULL
RETURN m
ORDER BY m.created_at DESC
LIMIT $limit
`, map[string]any{
			"scope_type": string(scope.Type),
			"scope_id":   scope.ID,
			"limit":      int64(limit),
		})
		if err != nil {
			return nil, err
		}
		return collectRecords(ctx, res)
	})
	if err != nil {
		return nil, storeErr("recent with embedding", err)
	}
	return out.([]memory.MemoryRecord), nil
}

func (s *Neo4jStore) SearchText(ctx context.Context, scope memory.Scope, query string, limit int) ([]memory.MemoryRecord, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (m:Memory {scope_type: $scope_type, scope_id: $scope_id})
WHERE toLower(m.question) CONTAINS $needle
   OR toLower(m.answer) CONTAINS $needle
   OR toLower(coalesce(m.summary, '')) CONTAINS $needle
RETURN m
ORDER BY m.created_at DESC
LIMIT $limit
`, map[string]any{
			"scope_type": string(scope.Type),
			"scope_id":   scope.ID,
			"needle":     strings.ToLower(strings.TrimSpace(query)),
			"limit":      int64(limit),
		})
		if err != nil {
			return nil, err
		}
		return collectRecords(ctx, res)
	})
	if err != nil {
		return nil, storeErr("search text", err)
	}
	return out.([]memory.MemoryRecord), nil
}

func (s *Neo4jStore) SearchEntities(ctx context.Context, scope memory.Scope, term string, limit int) ([]memory.EntityHit, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (e:Entity {scope_id: $scope_id})
WHERE toLower(e.name) CONTAINS $needle
   OR toLower(coalesce(e.description, '')) CONTAINS $needle
   OR toLower(e.type) CONTAINS $needle
OPTIONAL MATCH (e)-[:EXTRACTED_FROM]->(m:Memory)
WITH e, m
ORDER BY m.created_at DESC
RETURN e, m
LIMIT $limit
`, map[string]any{
			"scope_id": scope.Key(),
			"needle":   strings.ToLower(strings.TrimSpace(term)),
			"limit":    int64(limit),
		})
		if err != nil {
			return nil, err
		}
		hits := make([]memory.EntityHit, 0, limit)
		for res.Next(ctx) {
			rec := res.Record()
			entNode, ok := rec.Get("e")
			if !ok {
				continue
			}
			node, ok := entNode.(neo4j.Node)
			if !ok {
				continue
			}
			hit := memory.EntityHit{Entity: entityFromNode(node)}
			if memVal, ok := rec.Get("m"); ok && memVal != nil {
				if memNode, ok := memVal.(neo4j.Node); ok {
					r := recordFromNode(memNode)
					hit.Record = &r
				}
			}
			hits = append(hits, hit)
		}
		return hits, res.Err()
	})
	if err != nil {
		return nil, storeErr("search entities", err)
	}
	return out.([]memory.EntityHit), nil
}

func (s *Neo4jStore) ClearScope(ctx context.Context, scope memory.Scope) (int64, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (m:Memory {scope_type: $scope_type, scope_id: $scope_id})
DETACH DELETE m
RETURN count(m) AS deleted
`, map[string]any{
			"scope_type": string(scope.Type),
			"scope_id":   scope.ID,
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		deleted, _ := rec.Get("deleted")
		n, _ := deleted.(int64)
		return n, nil
	})
	if err != nil {
		return 0, storeErr("clear scope", err)
	}
	return out.(int64), nil
}

func (s *Neo4jStore) EntityGraph(ctx context.Context, scope memory.Scope, limit int) (*memory.GraphSnapshot, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		snapshot := &memory.GraphSnapshot{}

		res, err := tx.Run(ctx, `
MATCH (e:Entity {scope_id: $scope_id})
RETURN e
ORDER BY e.updated_at DESC
LIMIT $limit
`, map[string]any{"scope_id": scope.Key(), "limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			if val, ok := res.Record().Get("e"); ok {
				if node, ok := val.(neo4j.Node); ok {
					snapshot.Entities = append(snapshot.Entities, entityFromNode(node))
				}
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, `
MATCH (a:Entity {scope_id: $scope_id})-[r:RELATED]->(b:Entity)
RETURN a.id AS source_id, b.id AS target_id, r
ORDER BY r.updated_at DESC
LIMIT $limit
`, map[string]any{"scope_id": scope.Key(), "limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			relVal, ok := rec.Get("r")
			if !ok {
				continue
			}
			edge, ok := relVal.(neo4j.Relationship)
			if !ok {
				continue
			}
			rel := memory.Relationship{
				Type:        propString(edge.Props, "type"),
				Description: propString(edge.Props, "description"),
				Strength:    propFloat(edge.Props, "strength"),
				CreatedAt:   propTime(edge.Props, "created_at"),
				UpdatedAt:   propTime(edge.Props, "updated_at"),
			}
			if v, ok := rec.Get("source_id"); ok {
				rel.SourceEntityID, _ = v.(string)
			}
			if v, ok := rec.Get("target_id"); ok {
				rel.TargetEntityID, _ = v.(string)
			}
			snapshot.Relationships = append(snapshot.Relationships, rel)
		}
		return snapshot, res.Err()
	})
	if err != nil {
		return nil, storeErr("entity graph", err)
	}
	return out.(*memory.GraphSnapshot), nil
}

func (s *Neo4jStore) Stats(ctx context.Context, scope memory.Scope) (*memory.ScopeStats, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
OPTIONAL MATCH (m:Memory {scope_type: $scope_type, scope_id: $scope_id})
WITH count(m) AS memories
OPTIONAL MATCH (e:Entity {scope_id: $entity_scope})
WITH memories, count(e) AS entities
OPTIONAL MATCH (:Entity {scope_id: $entity_scope})-[r:RELATED]->(:Entity)
RETURN memories, entities, count(r) AS relationships
`, map[string]any{
			"scope_type":   string(scope.Type),
			"scope_id":     scope.ID,
			"entity_scope": scope.Key(),
		})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		stats := &memory.ScopeStats{}
		if v, ok := rec.Get("memories"); ok {
			stats.Memories, _ = v.(int64)
		}
		if v, ok := rec.Get("entities"); ok {
			stats.Entities, _ = v.(int64)
		}
		if v, ok := rec.Get("relationships"); ok {
			stats.Relationships, _ = v.(int64)
		}
		return stats, nil
	})
	if err != nil {
		return nil, storeErr("scope stats", err)
	}
	return out.(*memory.ScopeStats), nil
}

func collectRecords(ctx context.Context, res neo4j.ResultWithContext) ([]memory.MemoryRecord, error) {
	records := make([]memory.MemoryRecord, 0, 16)
	for res.Next(ctx) {
		if val, ok := res.Record().Get("m"); ok {
			if node, ok := val.(neo4j.Node); ok {
				records = append(records, recordFromNode(node))
			}
		}
	}
	return records, res.Err()
}

func recordFromNode(node neo4j.Node) memory.MemoryRecord {
	rec := memory.MemoryRecord{
		ID:        propString(node.Props, "id"),
		ScopeType: memory.ScopeType(propString(node.Props, "scope_type")),
		ScopeID:   propString(node.Props, "scope_id"),
		Question:  propString(node.Props, "question"),
		Answer:    propString(node.Props, "answer"),
		Summary:   propString(node.Props, "summary"),
		CreatedAt: propTime(node.Props, "created_at"),
	}
	if raw, ok := node.Props["embedding"].([]any); ok && len(raw) > 0 {
		emb := make([]float32, 0, len(raw))
		for _, v := range raw {
			if f, ok := v.(float64); ok {
				emb = append(emb, float32(f))
			}
		}
		rec.Embedding = emb
	}
	return rec
}

func entityFromNode(node neo4j.Node) memory.Entity {
	ent := memory.Entity{
		ID:          propString(node.Props, "id"),
		ScopeID:     propString(node.Props, "scope_id"),
		Name:        propString(node.Props, "name"),
		Type:        propString(node.Props, "type"),
		Description: propString(node.Props, "description"),
		CreatedAt:   propTime(node.Props, "created_at"),
		UpdatedAt:   propTime(node.Props, "updated_at"),
	}
	if raw := propString(node.Props, "attributes_json"); raw != "" {
		attrs := map[string]string{}
		if err := json.Unmarshal([]byte(raw), &attrs); err == nil && len(attrs) > 0 {
			ent.Attributes = attrs
		}
	}
	return ent
}

func propString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func propTime(props map[string]any, key string) time.Time {
	raw := propString(props, key)
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}
