package models

// SandboxRun records one ad hoc completion experiment. Runs are persisted
// newest-first and never mutated after creation.
type SandboxRun struct {
	ID          string  `json:"id"`
	User        User    `json:"user"`
	SystemText  string  `json:"system_text,omitempty"`
	PromptText  string  `json:"prompt_text"`
	InputText   string  `json:"input_text,omitempty"`
	OutputText  string  `json:"output_text"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	CreatedTS   int64   `json:"created_ts"`
}
