// Package discovery computes the sidebar panels: top prompts and trending
// tags over the canonical list.
package discovery

import (
	"sort"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
)

// DefaultTrendingLimit matches the tag chip row in the lab page.
const DefaultTrendingLimit = 8

// TagCount is one trending-tags row.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TopByCreated returns the newest prompts. The workspace sidebar labels
// this "top prompts"; it has always ranked by recency, not reactions.
func TopByCreated(list []models.Prompt, limit int) []models.Prompt {
	return top(list, limit, func(p *models.Prompt) int64 { return p.CreatedTS })
}

// TopByUpdated returns the most recently updated prompts.
func TopByUpdated(list []models.Prompt, limit int) []models.Prompt {
	return top(list, limit, func(p *models.Prompt) int64 { return p.UpdatedTS })
}

func top(list []models.Prompt, limit int, key func(*models.Prompt) int64) []models.Prompt {
	out := append([]models.Prompt(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		return key(&out[i]) > key(&out[j])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TrendingTags frequency-counts all tags across the list, descending by
// count with alphabetical ascending tie-break, truncated to limit.
func TrendingTags(list []models.Prompt, limit int) []TagCount {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	counts := make(map[string]int)
	for _, p := range list {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
