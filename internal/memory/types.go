package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// MemoryRecord is one stored interaction. Immutable once written; only an
// explicit scope clear removes it.
type MemoryRecord struct {
	ID        string
	ScopeType ScopeType
	ScopeID   string
	Question  string
	Answer    string
	Summary   string
	Embedding []float32
	CreatedAt time.Time
}

// Entity is a named thing observed within a scope. Its id is a pure function
// of (scope key, normalized name, type), so re-extraction merges instead of
// duplicating.
type Entity struct {
	ID          string
	ScopeID     string
	Name        string
	Type        string
	Description string
	Attributes  map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Relationship is a directed edge between two entities in the same scope.
// Strength stays in [0,1]; re-observation averages the new value with the
// stored one rather than taking a max or overwriting.
type Relationship struct {
	SourceEntityID string
	TargetEntityID string
	Type           string
	Description    string
	Strength       float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExtractedEntity and ExtractedRelationship are what the knowledge extractor
// reports for one interaction, before ids are assigned.
type ExtractedEntity struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

type ExtractedRelationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Strength    float64 `json:"strength"`
}

type KnowledgeExtraction struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
	Summary       string                  `json:"summary"`
	KeyFacts      []string                `json:"key_facts"`
}

// EntityKey derives the deterministic entity id. scopeKey is Scope.Key().
func EntityKey(scopeKey, name, entityType string) string {
	h := sha256.Sum256([]byte(scopeKey + "|" + NormalizeName(name) + "|" + strings.ToUpper(strings.TrimSpace(entityType))))
	return hex.EncodeToString(h[:16])
}

// NormalizeName collapses whitespace and lowercases, so "Acme  Corp" and
// "acme corp" key to the same entity.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// DefaultStrength is the baseline a relationship starts from before its
// first observation is folded in.
const DefaultStrength = 0.5

// MergeStrength is the smoothing rule applied every time a relationship is
// observed: the stored value moves halfway toward the new observation. A
// new relationship merges against DefaultStrength, so a single 0.6
// observation lands at 0.55, not 0.6. The store's upsert applies this same
// recurrence.
func MergeStrength(existing, observed float64) float64 {
	return clampStrength((existing + observed) / 2)
}

func clampStrength(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// RetrievalChannel labels which strategy produced a candidate.
type RetrievalChannel string

const (
	ChannelVector RetrievalChannel = "vector"
	ChannelGraph  RetrievalChannel = "graph"
	ChannelText   RetrievalChannel = "text"
)

// EntityTag carries enough of a matched entity to render it in the
// synthesized context.
type EntityTag struct {
	ID          string
	Name        string
	Type        string
	Description string
	CreatedAt   time.Time
}

// Candidate is one channel result headed for the merger. Record may be nil
// for an entity-only graph hit; Entity may be nil for plain record hits.
type Candidate struct {
	Record  *MemoryRecord
	Entity  *EntityTag
	Channel RetrievalChannel
	Score   float64
	Scored  bool
}

// mergeKey approximates record identity across channels. Truncating the
// question to 50 characters is an accepted heuristic carried over from the
// system's observed behavior; exact matching would regress recall.
func (c Candidate) mergeKey() string {
	if c.Record != nil {
		q := c.Record.Question
		if len(q) > 50 {
			q = q[:50]
		}
		return c.Record.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + q
	}
	if c.Entity != nil {
		return "entity|" + c.Entity.ID
	}
	return ""
}

func (c Candidate) createdAt() time.Time {
	if c.Record != nil {
		return c.Record.CreatedAt
	}
	if c.Entity != nil {
		return c.Entity.CreatedAt
	}
	return time.Time{}
}
