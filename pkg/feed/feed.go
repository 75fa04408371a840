// Package feed derives the visible, ordered, paginated subset of the
// canonical prompt list. It is a pure function of its inputs and never
// mutates the prompts it is given.
package feed

import (
	"sort"
	"strings"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/tags"
)

// Sort modes accepted by Query. Unknown modes fall back to SortNewest.
const (
	SortNewest    = "newest"
	SortUpdated   = "updated"
	SortReactions = "reactions"
)

// DefaultPageSize matches the workspace feed card count per page.
const DefaultPageSize = 5

// Query selects and orders the visible slice.
type Query struct {
	// Page is 1-based. Values below 1 are treated as 1.
	Page     int
	PageSize int
	// Tag filters on exact canonical tag membership; empty means all.
	Tag string
	// Text is matched case-insensitively against title, body, author name
	// and tip; empty means all.
	Text string
	Sort string
}

// Result is the visible slice plus pagination state.
type Result struct {
	Prompts []models.Prompt
	// Total is the filtered count before pagination.
	Total   int
	HasMore bool
}

// Apply filters, sorts and paginates the list. Pagination accumulates: page
// N yields the first N*PageSize items of the sorted+filtered sequence, so
// growing the page never reshuffles items already shown.
func Apply(list []models.Prompt, q Query) Result {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	filtered := filter(list, q)
	sortPrompts(filtered, q.Sort)

	total := len(filtered)
	limit := q.Page * q.PageSize
	hasMore := limit < total
	if limit > total {
		limit = total
	}
	return Result{Prompts: filtered[:limit], Total: total, HasMore: hasMore}
}

func filter(list []models.Prompt, q Query) []models.Prompt {
	tag := tags.Canonical(q.Tag)
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]models.Prompt, 0, len(list))
	for _, p := range list {
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		if text != "" && !matchesText(&p, text) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesText(p *models.Prompt, text string) bool {
	for _, field := range []string{p.Title, p.Body, p.Author.Name, p.Tip} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

// sortPrompts orders in place. The sort must be stable: reaction ties keep
// their original relative order.
func sortPrompts(list []models.Prompt, mode string) {
	switch mode {
	case SortUpdated:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].UpdatedTS > list[j].UpdatedTS
		})
	case SortReactions:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].ReactionTotal() > list[j].ReactionTotal()
		})
	default: // SortNewest
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedTS > list[j].CreatedTS
		})
	}
}
