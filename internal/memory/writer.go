package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

// Writer persists one interaction plus the knowledge extracted from it.
// Provider failures degrade to a bare record write; only a failed record
// persist fails the call.
type Writer struct {
	store   Store
	embed   Embedder
	extract Extractor
	log     *logger.Logger
}

func NewWriter(store Store, embed Embedder, extract Extractor, log *logger.Logger) (*Writer, error) {
	if store == nil {
		return nil, fmt.Errorf("memory writer: store required")
	}
	if log == nil {
		return nil, fmt.Errorf("memory writer: logger required")
	}
	return &Writer{
		store:   store,
		embed:   embed,
		extract: extract,
		log:     log.With("component", "MemoryWriter"),
	}, nil
}

// Add persists the interaction. A nil return means the record is stored,
// possibly without derived knowledge if a provider was down.
func (w *Writer) Add(ctx context.Context, scope Scope, question, answer, conversationContext string) error {
	now := time.Now().UTC()
	record := &MemoryRecord{
		ID:        uuid.NewString(),
		ScopeType: scope.Type,
		ScopeID:   scope.ID,
		Question:  question,
		Answer:    answer,
		CreatedAt: now,
	}

	if w.embed != nil {
		embedding, err := w.embed.Embed(ctx, question+"\n"+answer)
		if err != nil {
			w.log.Warn("embedding unavailable, storing record without vector",
				"scope_id", scope.ID, "error", err)
		} else {
			record.Embedding = embedding
		}
	}

	var extraction *KnowledgeExtraction
	if w.extract != nil {
		var err error
		extraction, err = w.extract.Extract(ctx, question, answer, scope, conversationContext)
		if err != nil {
			w.log.Warn("knowledge extraction unavailable, storing bare record",
				"scope_id", scope.ID, "error", err)
			extraction = nil
		}
	}

	var entities []Entity
	var relationships []Relationship
	if extraction != nil {
		record.Summary = strings.TrimSpace(extraction.Summary)
		entities, relationships = materialize(scope, extraction, now)
	}

	if err := w.store.WriteInteraction(ctx, record, entities, relationships); err != nil {
		return fmt.Errorf("persist interaction: %w", err)
	}
	return nil
}

// materialize assigns deterministic ids to extracted entities and resolves
// relationship endpoints against the same batch. Relationships naming an
// entity the extractor did not report are dropped rather than persisted as
// dangling edges.
func materialize(scope Scope, extraction *KnowledgeExtraction, now time.Time) ([]Entity, []Relationship) {
	scopeKey := scope.Key()

	entities := make([]Entity, 0, len(extraction.Entities))
	idByName := make(map[string]string, len(extraction.Entities))
	for _, e := range extraction.Entities {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		id := EntityKey(scopeKey, name, e.Type)
		if _, seen := idByName[NormalizeName(name)]; seen {
			continue
		}
		idByName[NormalizeName(name)] = id
		entities = append(entities, Entity{
			ID:          id,
			ScopeID:     scopeKey,
			Name:        name,
			Type:        strings.ToUpper(strings.TrimSpace(e.Type)),
			Description: strings.TrimSpace(e.Description),
			Attributes:  e.Attributes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	relationships := make([]Relationship, 0, len(extraction.Relationships))
	for _, r := range extraction.Relationships {
		sourceID, okSource := idByName[NormalizeName(r.Source)]
		targetID, okTarget := idByName[NormalizeName(r.Target)]
		if !okSource || !okTarget || strings.TrimSpace(r.Type) == "" {
			continue
		}
		relationships = append(relationships, Relationship{
			SourceEntityID: sourceID,
			TargetEntityID: targetID,
			Type:           strings.ToUpper(strings.TrimSpace(r.Type)),
			Description:    strings.TrimSpace(r.Description),
			Strength:       clampStrength(r.Strength),
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return entities, relationships
}
