package store

import (
	"time"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
)

// DefaultSeed returns the fixed starter set written when the workspace
// boots against empty storage. IDs are stable so repeated seeding of a
// fresh database produces the same records.
func DefaultSeed() []models.Prompt {
	now := time.Now().UTC().UnixNano()
	alice := models.User{ID: "user-seed-alice", Name: "Alice Example", Email: "alice@example.com"}
	bob := models.User{ID: "user-seed-bob", Name: "Bob Example", Email: "bob@example.com"}

	return []models.Prompt{
		{
			ID:    "prompt-seed-pr-summary",
			Title: "Summarize a pull request",
			Body:  "You are a release notes assistant. Summarize the PR in three bullet points and call out risks.",
			Tags:  []string{"prompting", "reviews"},
			Author: alice,
			Tip:       "Mention risks explicitly and stay concise.",
			Model:     "gpt-4.1-mini",
			CreatedTS: now - int64(2*time.Hour),
			UpdatedTS: now - int64(2*time.Hour),
			Reactions: map[string]models.ReactionSet{
				models.ReactionLike: {Count: 1, Users: []string{bob.ID}},
			},
			Comments: []models.Comment{
				{
					ID:        "comment-seed-1",
					Author:    bob,
					Body:      "Love this structure for release notes.",
					CreatedTS: now - int64(time.Hour),
				},
			},
		},
		{
			ID:    "prompt-seed-unit-test",
			Title: "Write a unit test",
			Body:  "Given the API contract, produce unit tests that cover the happy path and edge cases.",
			Tags:  []string{"testing"},
			Author: bob,
			Tip:       "Ask for mocks when external dependencies exist.",
			Model:     "gpt-4o",
			CreatedTS: now - int64(time.Hour),
			UpdatedTS: now - int64(30*time.Minute),
			Saves:     []string{alice.ID},
		},
	}
}
