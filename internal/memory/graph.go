package memory

import (
	"context"
	"sort"
	"strings"
)

// graphChannel expands the query into search terms, matches entities in
// scope, and joins back to the memories they were extracted from. Entities
// with no backing memory still surface when the query reads like a targeted
// question, since the entity description itself may be the answer.
type graphChannel struct {
	store    Store
	expander TermExpander
	maxTerms int
}

func (c *graphChannel) retrieve(ctx context.Context, scope Scope, query string, limit int) ([]Candidate, error) {
	terms := c.searchTerms(ctx, scope, query)

	seenRecords := make(map[string]bool)
	seenEntities := make(map[string]bool)
	targeted := isTargetedQuestion(query)

	candidates := make([]Candidate, 0, limit)
	for _, term := range terms {
		hits, err := c.store.SearchEntities(ctx, scope, term, limit)
		if err != nil {
			return nil, err
		}
		for i := range hits {
			hit := hits[i]
			tag := &EntityTag{
				ID:          hit.Entity.ID,
				Name:        hit.Entity.Name,
				Type:        hit.Entity.Type,
				Description: hit.Entity.Description,
				CreatedAt:   hit.Entity.CreatedAt,
			}
			if hit.Record != nil {
				if seenRecords[hit.Record.ID] {
					continue
				}
				seenRecords[hit.Record.ID] = true
				candidates = append(candidates, Candidate{
					Record:  hit.Record,
					Entity:  tag,
					Channel: ChannelGraph,
				})
				continue
			}
			if !targeted || seenEntities[hit.Entity.ID] {
				continue
			}
			seenEntities[hit.Entity.ID] = true
			candidates = append(candidates, Candidate{
				Entity:  tag,
				Channel: ChannelGraph,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].createdAt().After(candidates[j].createdAt())
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (c *graphChannel) searchTerms(ctx context.Context, scope Scope, query string) []string {
	fallback := []string{strings.TrimSpace(query)}
	if c.expander == nil {
		return fallback
	}
	expanded, err := c.expander.Expand(ctx, query, scope.Type)
	if err != nil {
		return fallback
	}
	terms := make([]string, 0, c.maxTerms)
	for _, t := range expanded {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		terms = append(terms, t)
		if len(terms) == c.maxTerms {
			break
		}
	}
	if len(terms) == 0 {
		return fallback
	}
	return terms
}

var questionWords = []string{"who", "what", "where", "when", "which", "why", "how", "does", "do ", "is ", "are "}

func isTargetedQuestion(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(q, "?") {
		return true
	}
	for _, w := range questionWords {
		if strings.HasPrefix(q, w) {
			return true
		}
	}
	return false
}
