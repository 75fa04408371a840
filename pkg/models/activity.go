package models

// Activity entry types, one per store mutator.
const (
	ActivityCreate   = "create"
	ActivityUpdate   = "update"
	ActivityDelete   = "delete"
	ActivityReaction = "reaction"
	ActivityComment  = "comment"
)

// ActivityEntry is a single row in the sidebar activity feed.
type ActivityEntry struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	Actor     string `json:"actor"`
	CreatedTS int64  `json:"created_ts"`
}
