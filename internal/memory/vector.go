package memory

import (
	"context"
	"math"
	"sort"
)

// vectorChannel ranks recency-bounded candidates by cosine similarity to the
// query embedding. A missing query embedding empties the channel instead of
// erroring.
type vectorChannel struct {
	store      Store
	embed      Embedder
	threshold  float64
	multiplier int
}

func (c *vectorChannel) retrieve(ctx context.Context, scope Scope, query string, limit int) ([]Candidate, error) {
	if c.embed == nil {
		return nil, nil
	}
	queryEmbedding, err := c.embed.Embed(ctx, query)
	if err != nil || len(queryEmbedding) == 0 {
		return nil, nil
	}

	records, err := c.store.RecentWithEmbedding(ctx, scope, c.multiplier*limit)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(records))
	for i := range records {
		score := cosineSimilarity(queryEmbedding, records[i].Embedding)
		if score < c.threshold {
			continue
		}
		candidates = append(candidates, Candidate{
			Record:  &records[i],
			Channel: ChannelVector,
			Score:   score,
			Scored:  true,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
