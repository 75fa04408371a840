// Package sandbox runs ad hoc experiments against a completion provider
// and keeps a history of runs. Without a configured provider it degrades
// to a deterministic local preview, matching the workspace's offline mode.
package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// History limits for the runs listing.
const (
	DefaultRunsLimit = 10
	MaxRunsLimit     = 50
)

// Request carries one experiment's inputs.
type Request struct {
	System      string  `json:"system_text"`
	Prompt      string  `json:"prompt_text"`
	Input       string  `json:"input_text"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Completer produces text for a request. Implementations: GenAI (live) and
// Preview (offline).
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Service validates requests, invokes the completer and persists runs.
type Service struct {
	completer    Completer
	snap         *store.Snapshot
	defaultModel string
}

// New builds a Service. completer must not be nil; use NewPreview() when no
// provider is configured.
func New(completer Completer, snap *store.Snapshot, defaultModel string) *Service {
	if defaultModel == "" {
		defaultModel = "gemini-2.5-flash"
	}
	return &Service{completer: completer, snap: snap, defaultModel: defaultModel}
}

// Run executes one experiment and records it. An empty prompt fails with
// store.ErrValidation before any provider call.
func (s *Service) Run(ctx context.Context, actor models.User, req Request) (models.SandboxRun, error) {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return models.SandboxRun{}, fmt.Errorf("%w: prompt cannot be empty", store.ErrValidation)
	}
	if req.Model == "" {
		req.Model = s.defaultModel
	}
	if req.Temperature == 0 {
		req.Temperature = 0.2
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 512
	}

	text, err := s.completer.Complete(ctx, req)
	if err != nil {
		logger.Log.Error("sandbox_completion_failed", "model", req.Model, "error", err)
		return models.SandboxRun{}, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	run := models.SandboxRun{
		ID:          utils.GenRunID(),
		User:        actor,
		SystemText:  req.System,
		PromptText:  req.Prompt,
		InputText:   req.Input,
		OutputText:  text,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		CreatedTS:   time.Now().UTC().UnixNano(),
	}
	if err := s.snap.SaveRun(run); err != nil {
		// the run already happened; history loss is not fatal
		logger.Log.Warn("sandbox_run_persist_failed", "id", run.ID, "error", err)
	}
	logger.Log.Info("sandbox_run", "id", run.ID, "model", run.Model, "user", actor.ID)
	return run, nil
}

// Runs lists recent runs newest-first. limit is clamped to 1..MaxRunsLimit;
// zero or negative means DefaultRunsLimit.
func (s *Service) Runs(limit int) ([]models.SandboxRun, error) {
	if limit <= 0 {
		limit = DefaultRunsLimit
	}
	if limit > MaxRunsLimit {
		limit = MaxRunsLimit
	}
	return s.snap.ListRuns(limit)
}

// Preview is the offline completer: it echoes the combined request text
// uppercased, so the UI stays exercisable without credentials.
type Preview struct{}

// NewPreview returns the offline completer.
func NewPreview() Preview { return Preview{} }

// Complete implements Completer.
func (Preview) Complete(_ context.Context, req Request) (string, error) {
	parts := make([]string, 0, 3)
	for _, p := range []string{req.System, req.Prompt, req.Input} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	combined := strings.ToUpper(strings.Join(parts, "\n\n"))
	return "AI preview (no provider configured)\n\n" + combined, nil
}
