package models

// User is the identity shape exposed by the session collaborator. The core
// treats users as read-only; only the auth package writes them.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedTS int64  `json:"created_ts,omitempty"`
}
