package utils

import "github.com/google/uuid"

// GenPromptID returns a new unique prompt id.
func GenPromptID() string { return "prompt-" + uuid.NewString() }

// GenCommentID returns a new unique comment id.
func GenCommentID() string { return "comment-" + uuid.NewString() }

// GenUserID returns a new unique user id.
func GenUserID() string { return "user-" + uuid.NewString() }

// GenRunID returns a new unique sandbox run id.
func GenRunID() string { return "run-" + uuid.NewString() }

// GenActivityID returns a new unique activity entry id.
func GenActivityID() string { return "activity-" + uuid.NewString() }
