package memory

import (
	"math"
	"testing"
	"time"
)

func TestEntityKeyIsDeterministic(t *testing.T) {
	a := EntityKey("user_42", "Acme Corp", "ORGANIZATION")
	b := EntityKey("user_42", "Acme Corp", "ORGANIZATION")
	if a != b {
		t.Fatalf("same inputs produced different keys: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("key length: want=32 got=%d", len(a))
	}
}

func TestEntityKeyNormalizesNameAndType(t *testing.T) {
	base := EntityKey("user_42", "Acme Corp", "ORGANIZATION")
	variants := []struct {
		name       string
		entityType string
	}{
		{"acme corp", "ORGANIZATION"},
		{"  Acme   Corp  ", "ORGANIZATION"},
		{"ACME CORP", "organization"},
		{"Acme Corp", " organization "},
	}
	for _, v := range variants {
		if got := EntityKey("user_42", v.name, v.entityType); got != base {
			t.Fatalf("variant (%q, %q) did not normalize to base key", v.name, v.entityType)
		}
	}
}

func TestEntityKeyPartitionsByScope(t *testing.T) {
	user := EntityKey("user_42", "Acme", "ORGANIZATION")
	session := EntityKey("session_42", "Acme", "ORGANIZATION")
	if user == session {
		t.Fatal("identical raw ids across scope types must not collide")
	}
	otherType := EntityKey("user_42", "Acme", "PERSON")
	if user == otherType {
		t.Fatal("same name with a different type must key separately")
	}
}

func TestMergeStrengthRecurrence(t *testing.T) {
	s := MergeStrength(DefaultStrength, 0.6)
	if math.Abs(s-0.55) > 1e-9 {
		t.Fatalf("first observation: want=0.55 got=%v", s)
	}
	s = MergeStrength(s, 0.8)
	if math.Abs(s-0.675) > 1e-9 {
		t.Fatalf("second observation: want=0.675 got=%v", s)
	}
}

func TestMergeStrengthConvergesToRepeatedObservation(t *testing.T) {
	s := DefaultStrength
	for i := 0; i < 40; i++ {
		s = MergeStrength(s, 0.9)
	}
	if math.Abs(s-0.9) > 1e-6 {
		t.Fatalf("repeated observations should converge to 0.9, got=%v", s)
	}
}

func TestMergeStrengthClamps(t *testing.T) {
	if got := MergeStrength(1.9, 1.5); got != 1 {
		t.Fatalf("upper clamp: want=1 got=%v", got)
	}
	if got := MergeStrength(-0.4, -0.8); got != 0 {
		t.Fatalf("lower clamp: want=0 got=%v", got)
	}
}

func TestMergeKeyTruncatesQuestion(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	long := "this question is padded well past fifty characters so the tail differs"
	a := Candidate{Record: &MemoryRecord{Question: long + " A", CreatedAt: at}}
	b := Candidate{Record: &MemoryRecord{Question: long + " B", CreatedAt: at}}
	if a.mergeKey() != b.mergeKey() {
		t.Fatal("questions sharing the first 50 characters should share a merge key")
	}
	c := Candidate{Record: &MemoryRecord{Question: long + " A", CreatedAt: at.Add(time.Second)}}
	if a.mergeKey() == c.mergeKey() {
		t.Fatal("different created_at should produce distinct merge keys")
	}
}

func TestMergeKeyEntityOnly(t *testing.T) {
	c := Candidate{Entity: &EntityTag{ID: "abc"}}
	if c.mergeKey() != "entity|abc" {
		t.Fatalf("entity merge key: got=%q", c.mergeKey())
	}
	if (Candidate{}).mergeKey() != "" {
		t.Fatal("empty candidate should have an empty merge key")
	}
}
