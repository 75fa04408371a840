package models

// Comment belongs to exactly one prompt. ParentID is a back-reference to
// another comment in the same prompt, or empty for top-level. A dangling
// ParentID is possible under concurrent deletion; readers must tolerate it.
type Comment struct {
	ID        string `json:"id"`
	Author    User   `json:"author"`
	Body      string `json:"body"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatedTS int64  `json:"created_ts"`
}
