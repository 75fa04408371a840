// Package thread assembles the prompt detail view: the parent/child comment
// forest and the tag-overlap "related prompts" ranking.
package thread

import (
	"sort"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
)

// Node is one comment plus its replies. Sibling order follows the prompt's
// own comment order (newest first).
type Node struct {
	Comment  models.Comment `json:"comment"`
	Children []*Node        `json:"children,omitempty"`
}

// BuildCommentTree groups a prompt's flat comment list into a forest keyed
// by ParentID. A comment whose parent is missing, or whose parent chain
// cycles, is demoted to a root-level orphan rather than dropped or looped
// over.
func BuildCommentTree(p *models.Prompt) []*Node {
	nodes := make(map[string]*Node, len(p.Comments))
	order := make([]*Node, 0, len(p.Comments))
	for _, c := range p.Comments {
		n := &Node{Comment: c}
		nodes[c.ID] = n
		order = append(order, n)
	}

	var roots []*Node
	for _, n := range order {
		pid := n.Comment.ParentID
		if pid == "" {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[pid]
		if !ok || reachesSelf(nodes, n) {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots
}

// reachesSelf walks the parent chain from n and reports whether it revisits
// n (a malformed cycle) before terminating.
func reachesSelf(nodes map[string]*Node, n *Node) bool {
	seen := map[string]bool{n.Comment.ID: true}
	cur := n.Comment.ParentID
	for cur != "" {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		next, ok := nodes[cur]
		if !ok {
			return false
		}
		cur = next.Comment.ParentID
	}
	return false
}

// Related ranks other prompts by shared-tag count descending, recency
// descending on ties, excluding the prompt itself, truncated to limit.
func Related(p *models.Prompt, all []models.Prompt, limit int) []models.Prompt {
	type scored struct {
		prompt  models.Prompt
		overlap int
	}
	var candidates []scored
	for _, other := range all {
		if other.ID == p.ID {
			continue
		}
		n := overlap(p.Tags, other.Tags)
		if n == 0 {
			continue
		}
		candidates = append(candidates, scored{prompt: other, overlap: n})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].prompt.CreatedTS > candidates[j].prompt.CreatedTS
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]models.Prompt, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.prompt)
	}
	return out
}

func overlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}
	n := 0
	for _, t := range b {
		if set[t] {
			n++
			set[t] = false
		}
	}
	return n
}
