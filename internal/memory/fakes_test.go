package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeStore is an in-memory Store for exercising the retrieval and write
// paths without a graph database.
type fakeStore struct {
	mu            sync.Mutex
	records       []MemoryRecord
	entities      map[string]Entity
	relationships map[string]Relationship
	writes        int

	failWrites   bool
	failReads    bool
	failSearches bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities:      map[string]Entity{},
		relationships: map[string]Relationship{},
	}
}

func relKey(r Relationship) string {
	return r.SourceEntityID + "|" + r.TargetEntityID + "|" + r.Type
}

func (s *fakeStore) WriteInteraction(ctx context.Context, record *MemoryRecord, entities []Entity, relationships []Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return fmt.Errorf("store down")
	}
	s.records = append(s.records, *record)
	for _, e := range entities {
		existing, ok := s.entities[e.ID]
		if ok {
			existing.Name = e.Name
			existing.Type = e.Type
			existing.Description = e.Description
			existing.Attributes = e.Attributes
			existing.UpdatedAt = e.UpdatedAt
			s.entities[e.ID] = existing
			continue
		}
		s.entities[e.ID] = e
	}
	for _, r := range relationships {
		key := relKey(r)
		existing, ok := s.relationships[key]
		if !ok {
			existing = r
			existing.Strength = DefaultStrength
		}
		existing.Strength = MergeStrength(existing.Strength, r.Strength)
		existing.Description = r.Description
		existing.UpdatedAt = r.UpdatedAt
		s.relationships[key] = existing
	}
	s.writes++
	return nil
}

func (s *fakeStore) RecentWithEmbedding(ctx context.Context, scope Scope, limit int) ([]MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, fmt.Errorf("store down")
	}
	out := make([]MemoryRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.records[i]
		if rec.ScopeType != scope.Type || rec.ScopeID != scope.ID || len(rec.Embedding) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *fakeStore) SearchText(ctx context.Context, scope Scope, query string, limit int) ([]MemoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, fmt.Errorf("store down")
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]MemoryRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.records[i]
		if rec.ScopeType != scope.Type || rec.ScopeID != scope.ID {
			continue
		}
		haystack := strings.ToLower(rec.Question + " " + rec.Answer + " " + rec.Summary)
		if strings.Contains(haystack, needle) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) SearchEntities(ctx context.Context, scope Scope, term string, limit int) ([]EntityHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSearches {
		return nil, fmt.Errorf("store down")
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]EntityHit, 0, limit)
	for _, e := range s.entities {
		if e.ScopeID != scope.Key() {
			continue
		}
		haystack := strings.ToLower(e.Name + " " + e.Description + " " + e.Type)
		if !strings.Contains(haystack, needle) {
			continue
		}
		hit := EntityHit{Entity: e}
		// Join back to the most recent record in scope, mirroring the
		// EXTRACTED_FROM traversal.
		for i := len(s.records) - 1; i >= 0; i-- {
			rec := s.records[i]
			if rec.ScopeType == scope.Type && rec.ScopeID == scope.ID {
				hit.Record = &rec
				break
			}
		}
		out = append(out, hit)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) ClearScope(ctx context.Context, scope Scope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var deleted int64
	for _, rec := range s.records {
		if rec.ScopeType == scope.Type && rec.ScopeID == scope.ID {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return deleted, nil
}

func (s *fakeStore) EntityGraph(ctx context.Context, scope Scope, limit int) (*GraphSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := &GraphSnapshot{}
	for _, e := range s.entities {
		if e.ScopeID == scope.Key() {
			snapshot.Entities = append(snapshot.Entities, e)
		}
	}
	for _, r := range s.relationships {
		snapshot.Relationships = append(snapshot.Relationships, r)
	}
	return snapshot, nil
}

func (s *fakeStore) Stats(ctx context.Context, scope Scope) (*ScopeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &ScopeStats{}
	for _, rec := range s.records {
		if rec.ScopeType == scope.Type && rec.ScopeID == scope.ID {
			stats.Memories++
		}
	}
	for _, e := range s.entities {
		if e.ScopeID == scope.Key() {
			stats.Entities++
		}
	}
	stats.Relationships = int64(len(s.relationships))
	return stats, nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
	fail    bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, fmt.Errorf("embedder down")
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

type fakeExtractor struct {
	result *KnowledgeExtraction
	fail   bool
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, question, answer string, scope Scope, conversationContext string) (*KnowledgeExtraction, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("extractor down")
	}
	if f.result == nil {
		return &KnowledgeExtraction{}, nil
	}
	return f.result, nil
}

type fakeExpander struct {
	terms []string
	fail  bool
}

func (f *fakeExpander) Expand(ctx context.Context, query string, scopeType ScopeType) ([]string, error) {
	if f.fail {
		return nil, fmt.Errorf("expander down")
	}
	return f.terms, nil
}

type fakeSummarizer struct {
	text string
	fail bool
}

func (f *fakeSummarizer) Synthesize(ctx context.Context, candidates []Candidate, query string, maxLength int) (string, error) {
	if f.fail {
		return "", fmt.Errorf("summarizer down")
	}
	return f.text, nil
}
