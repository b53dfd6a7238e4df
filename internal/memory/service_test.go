package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/theshibabasement/neuroflow/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func newTestService(t *testing.T, store Store, embed Embedder, extract Extractor, expand TermExpander, summarize Summarizer) *Service {
	t.Helper()
	svc, err := NewService(store, embed, extract, expand, summarize, testLogger(t), Options{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGetContextEmptyScope(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeEmbedder{}, nil, &fakeExpander{}, nil)

	scope := Scope{Type: ScopeSession, ID: "s1"}
	out, err := svc.GetContext(context.Background(), scope, "anything", 5)
	if err != nil {
		t.Fatalf("GetContext: unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("context: want empty got %q", out)
	}
}

func TestGetContextVectorMatch(t *testing.T) {
	store := newFakeStore()
	scope := Scope{Type: ScopeUser, ID: "42"}
	store.records = append(store.records, MemoryRecord{
		ID:        "m1",
		ScopeType: scope.Type,
		ScopeID:   scope.ID,
		Question:  "I work at Acme",
		Answer:    "Noted",
		Embedding: []float32{1, 0, 0},
		CreatedAt: time.Now().UTC(),
	})
	embed := &fakeEmbedder{vectors: map[string][]float32{
		// Cosine similarity to the stored vector is well above 0.7.
		"where do I work": {0.9, 0.1, 0},
	}}

	svc := newTestService(t, store, embed, nil, &fakeExpander{fail: true}, nil)
	out, err := svc.GetContext(context.Background(), scope, "where do I work", 5)
	if err != nil {
		t.Fatalf("GetContext: unexpected error: %v", err)
	}
	if !strings.Contains(out, "Acme") {
		t.Fatalf("context: want substring %q got %q", "Acme", out)
	}
}

func TestGetContextTextChannelAlone(t *testing.T) {
	store := newFakeStore()
	scope := Scope{Type: ScopeUser, ID: "9"}
	// No embedding on the record, no entities stored: only the text channel
	// can surface it.
	store.records = append(store.records, MemoryRecord{
		ID:        "m1",
		ScopeType: scope.Type,
		ScopeID:   scope.ID,
		Question:  "favorite color",
		Answer:    "teal",
		CreatedAt: time.Now().UTC(),
	})

	svc := newTestService(t, store, &fakeEmbedder{fail: true}, nil, &fakeExpander{fail: true}, nil)
	out, err := svc.GetContext(context.Background(), scope, "favorite color", 5)
	if err != nil {
		t.Fatalf("GetContext: unexpected error: %v", err)
	}
	if !strings.Contains(out, "teal") {
		t.Fatalf("context: want substring %q got %q", "teal", out)
	}
}

func TestGetContextAllChannelsFailed(t *testing.T) {
	store := newFakeStore()
	store.failReads = true
	store.failSearches = true

	svc := newTestService(t, store, &fakeEmbedder{}, nil, &fakeExpander{terms: []string{"x"}}, nil)
	_, err := svc.GetContext(context.Background(), Scope{Type: ScopeUser, ID: "1"}, "query", 5)
	if err == nil {
		t.Fatalf("GetContext: want error when every channel fails")
	}
}

func TestGetContextDegradedChannelsStillAnswer(t *testing.T) {
	store := newFakeStore()
	scope := Scope{Type: ScopeUser, ID: "7"}
	store.records = append(store.records, MemoryRecord{
		ID:        "m1",
		ScopeType: scope.Type,
		ScopeID:   scope.ID,
		Question:  "project deadline",
		Answer:    "next friday",
		CreatedAt: time.Now().UTC(),
	})
	store.failSearches = true // graph channel errors, others keep working

	svc := newTestService(t, store, &fakeEmbedder{fail: true}, nil, &fakeExpander{terms: []string{"deadline"}}, nil)
	out, err := svc.GetContext(context.Background(), scope, "project deadline", 5)
	if err != nil {
		t.Fatalf("GetContext: unexpected error: %v", err)
	}
	if !strings.Contains(out, "next friday") {
		t.Fatalf("context: want substring %q got %q", "next friday", out)
	}
}

func TestGetContextDeduplicatesAcrossChannels(t *testing.T) {
	store := newFakeStore()
	scope := Scope{Type: ScopeUser, ID: "5"}
	created := time.Now().UTC()
	store.records = append(store.records, MemoryRecord{
		ID:        "m1",
		ScopeType: scope.Type,
		ScopeID:   scope.ID,
		Question:  "I use vim for editing",
		Answer:    "Understood",
		Embedding: []float32{1, 0, 0},
		CreatedAt: created,
	})
	embed := &fakeEmbedder{vectors: map[string][]float32{
		"vim": {1, 0, 0},
	}}

	// Vector and text channels both surface the same record; the fallback
	// rendering must contain it exactly once.
	svc := newTestService(t, store, embed, nil, &fakeExpander{fail: true}, nil)
	out, err := svc.GetContext(context.Background(), scope, "vim", 5)
	if err != nil {
		t.Fatalf("GetContext: unexpected error: %v", err)
	}
	if got := strings.Count(out, "I use vim for editing"); got != 1 {
		t.Fatalf("occurrences: want=1 got=%d in %q", got, out)
	}
}

func TestGetContextHonorsCallerCancellation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeEmbedder{}, nil, &fakeExpander{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.GetContext(ctx, Scope{Type: ScopeUser, ID: "1"}, "q", 5); err == nil {
		t.Fatalf("GetContext: want error on cancelled context")
	}
}

func TestClearScopeRemovesRecordsOnly(t *testing.T) {
	store := newFakeStore()
	scope := Scope{Type: ScopeUser, ID: "3"}
	store.records = append(store.records, MemoryRecord{
		ID: "m1", ScopeType: scope.Type, ScopeID: scope.ID,
		Question: "q", Answer: "a", CreatedAt: time.Now().UTC(),
	})
	store.entities["e1"] = Entity{ID: "e1", ScopeID: scope.Key(), Name: "Acme"}

	svc := newTestService(t, store, &fakeEmbedder{}, nil, &fakeExpander{}, nil)
	deleted, err := svc.ClearScope(context.Background(), scope)
	if err != nil {
		t.Fatalf("ClearScope: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted: want=1 got=%d", deleted)
	}
	if len(store.records) != 0 {
		t.Fatalf("records remaining: want=0 got=%d", len(store.records))
	}
	if len(store.entities) != 1 {
		t.Fatalf("entities must survive a scope clear: want=1 got=%d", len(store.entities))
	}
}
