package memory

import (
	"context"
	"testing"
)

func newTestWriter(t *testing.T, store Store, embed Embedder, extract Extractor) *Writer {
	t.Helper()
	w, err := NewWriter(store, embed, extract, testLogger(t))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	return w
}

func TestAddSucceedsWhenExtractorFails(t *testing.T) {
	store := newFakeStore()
	w := newTestWriter(t, store, &fakeEmbedder{}, &fakeExtractor{fail: true})

	scope := Scope{Type: ScopeUser, ID: "1"}
	if err := w.Add(context.Background(), scope, "q", "a", ""); err != nil {
		t.Fatalf("Add: want success with bare record, got error: %v", err)
	}
	if store.writes != 1 {
		t.Fatalf("writes: want=1 got=%d", store.writes)
	}
	if len(store.records) != 1 {
		t.Fatalf("records: want=1 got=%d", len(store.records))
	}
	if len(store.entities) != 0 {
		t.Fatalf("entities: want=0 got=%d", len(store.entities))
	}
}

func TestAddSucceedsWhenEmbedderFails(t *testing.T) {
	store := newFakeStore()
	w := newTestWriter(t, store, &fakeEmbedder{fail: true}, &fakeExtractor{})

	scope := Scope{Type: ScopeUser, ID: "1"}
	if err := w.Add(context.Background(), scope, "q", "a", ""); err != nil {
		t.Fatalf("Add: want success without embedding, got error: %v", err)
	}
	if len(store.records[0].Embedding) != 0 {
		t.Fatalf("embedding: want empty got %v", store.records[0].Embedding)
	}
}

func TestAddFailsOnlyWhenRecordPersistFails(t *testing.T) {
	store := newFakeStore()
	store.failWrites = true
	w := newTestWriter(t, store, &fakeEmbedder{}, &fakeExtractor{})

	scope := Scope{Type: ScopeUser, ID: "1"}
	if err := w.Add(context.Background(), scope, "q", "a", ""); err == nil {
		t.Fatalf("Add: want error when record cannot persist")
	}
}

func TestAddUpsertsEntitiesIdempotently(t *testing.T) {
	store := newFakeStore()
	extract := &fakeExtractor{result: &KnowledgeExtraction{
		Entities: []ExtractedEntity{
			{Name: "Acme Corp", Type: "organization", Description: "first sighting"},
		},
		Summary: "works at acme",
	}}
	w := newTestWriter(t, store, &fakeEmbedder{}, extract)

	scope := Scope{Type: ScopeUser, ID: "7"}
	if err := w.Add(context.Background(), scope, "q1", "a1", ""); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	// Same entity under different casing and spacing, new description.
	extract.result.Entities[0] = ExtractedEntity{Name: "acme  corp", Type: "ORGANIZATION", Description: "second sighting"}
	if err := w.Add(context.Background(), scope, "q2", "a2", ""); err != nil {
		t.Fatalf("second Add: %v", err)
	}

	if len(store.entities) != 1 {
		t.Fatalf("entities: want=1 got=%d", len(store.entities))
	}
	for _, e := range store.entities {
		if e.Description != "second sighting" {
			t.Fatalf("description: want=%q got=%q", "second sighting", e.Description)
		}
	}
}

func TestAddAveragesRelationshipStrength(t *testing.T) {
	store := newFakeStore()
	extract := &fakeExtractor{result: &KnowledgeExtraction{
		Entities: []ExtractedEntity{
			{Name: "alice", Type: "PERSON"},
			{Name: "Acme", Type: "ORGANIZATION"},
		},
		Relationships: []ExtractedRelationship{
			{Source: "alice", Target: "Acme", Type: "WORKS_AT", Strength: 0.6},
		},
	}}
	w := newTestWriter(t, store, &fakeEmbedder{}, extract)

	scope := Scope{Type: ScopeUser, ID: "7"}
	if err := w.Add(context.Background(), scope, "q1", "a1", ""); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	extract.result.Relationships[0].Strength = 0.8
	if err := w.Add(context.Background(), scope, "q2", "a2", ""); err != nil {
		t.Fatalf("second Add: %v", err)
	}

	if len(store.relationships) != 1 {
		t.Fatalf("relationships: want=1 got=%d", len(store.relationships))
	}
	for _, r := range store.relationships {
		// Seeded at 0.5, then (0.5+0.6)/2 = 0.55, then (0.55+0.8)/2 = 0.675.
		// Order-dependent averaging, not a simple mean of the inputs.
		if r.Strength < 0.674 || r.Strength > 0.676 {
			t.Fatalf("strength: want=0.675 got=%v", r.Strength)
		}
	}
}

func TestAddDropsRelationshipsWithUnknownEndpoints(t *testing.T) {
	store := newFakeStore()
	extract := &fakeExtractor{result: &KnowledgeExtraction{
		Entities: []ExtractedEntity{{Name: "alice", Type: "PERSON"}},
		Relationships: []ExtractedRelationship{
			{Source: "alice", Target: "ghost", Type: "KNOWS", Strength: 0.5},
		},
	}}
	w := newTestWriter(t, store, &fakeEmbedder{}, extract)

	if err := w.Add(context.Background(), Scope{Type: ScopeUser, ID: "7"}, "q", "a", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(store.relationships) != 0 {
		t.Fatalf("dangling relationships persisted: want=0 got=%d", len(store.relationships))
	}
}

func TestAddClampsObservedStrength(t *testing.T) {
	store := newFakeStore()
	extract := &fakeExtractor{result: &KnowledgeExtraction{
		Entities: []ExtractedEntity{
			{Name: "alice", Type: "PERSON"},
			{Name: "bob", Type: "PERSON"},
		},
		Relationships: []ExtractedRelationship{
			{Source: "alice", Target: "bob", Type: "KNOWS", Strength: 1.7},
		},
	}}
	w := newTestWriter(t, store, &fakeEmbedder{}, extract)

	if err := w.Add(context.Background(), Scope{Type: ScopeUser, ID: "7"}, "q", "a", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, r := range store.relationships {
		// 1.7 clamps to 1 before the merge, so (0.5+1)/2.
		if r.Strength != 0.75 {
			t.Fatalf("strength: want=0.75 got=%v", r.Strength)
		}
	}
}
