package models

// Reaction kinds used by the workspace UI. Arbitrary kinds are accepted on
// the wire; these are the ones the client renders.
const (
	ReactionLike      = "like"
	ReactionCelebrate = "celebrate"
	ReactionBookmark  = "bookmark"
)

// ReactionSet tracks who reacted with a given kind. Count is always derived
// from the Users slice, never incremented independently.
type ReactionSet struct {
	Count int      `json:"count"`
	Users []string `json:"users,omitempty"`
}

// Has reports whether the user id is a member of the set.
func (r ReactionSet) Has(userID string) bool {
	for _, u := range r.Users {
		if u == userID {
			return true
		}
	}
	return false
}

// Prompt is a shareable unit of authored AI-instruction text. Comments are
// stored as a flat newest-first list; thread structure is rebuilt on read.
type Prompt struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
	// Author is owned by the identity collaborator; never caller-supplied.
	Author User   `json:"author"`
	Tip    string `json:"tip,omitempty"`
	// Model/Temperature travel with prompts saved out of the sandbox.
	Model       string `json:"model,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	// Created/Updated timestamps (ns). UpdatedTS never decreases.
	CreatedTS int64                  `json:"created_ts"`
	UpdatedTS int64                  `json:"updated_ts"`
	Reactions map[string]ReactionSet `json:"reactions,omitempty"`
	Comments  []Comment              `json:"comments,omitempty"`
	// Saves holds user ids who bookmarked the prompt.
	Saves []string `json:"saves,omitempty"`
	Forks int      `json:"forks"`
}

// ReactionTotal sums all reaction-kind counts.
func (p *Prompt) ReactionTotal() int {
	n := 0
	for _, rs := range p.Reactions {
		n += rs.Count
	}
	return n
}

// HasTag reports whether tag is present (tags are stored case-normalized).
func (p *Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Saved reports whether userID bookmarked the prompt.
func (p *Prompt) Saved(userID string) bool {
	for _, u := range p.Saves {
		if u == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so read paths can hand prompts out without
// aliasing store-owned slices and maps.
func (p *Prompt) Clone() Prompt {
	out := *p
	out.Tags = append([]string(nil), p.Tags...)
	out.Comments = append([]Comment(nil), p.Comments...)
	out.Saves = append([]string(nil), p.Saves...)
	if p.Reactions != nil {
		out.Reactions = make(map[string]ReactionSet, len(p.Reactions))
		for k, rs := range p.Reactions {
			rs.Users = append([]string(nil), rs.Users...)
			out.Reactions[k] = rs
		}
	}
	return out
}
