package memory

import (
	"context"
	"strings"
)

// textChannel is the substring-match safety net. No ranking signal beyond
// recency.
type textChannel struct {
	store Store
}

func (c *textChannel) retrieve(ctx context.Context, scope Scope, query string, limit int) ([]Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	records, err := c.store.SearchText(ctx, scope, query, limit)
	if err != nil {
		return nil, err
	}
	candidates := make([]Candidate, 0, len(records))
	for i := range records {
		candidates = append(candidates, Candidate{
			Record:  &records[i],
			Channel: ChannelText,
		})
	}
	return candidates, nil
}
