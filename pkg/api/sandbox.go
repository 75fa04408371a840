package api

import (
	"encoding/json"
	"net/http"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/sandbox"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/telemetry"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// runSandbox handles POST /v1/sandbox/run.
func (h *Handlers) runSandbox(w http.ResponseWriter, r *http.Request) {
	var in sandbox.Request
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	end := telemetry.StartSpan(r.Context(), "sandbox_run")
	run, err := h.Sandbox.Run(r.Context(), h.actor(r), in)
	end()
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, run)
}

// listSandboxRuns handles GET /v1/sandbox/runs?limit=n, newest first.
func (h *Handlers) listSandboxRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Sandbox.Runs(queryInt(r, "limit", sandbox.DefaultRunsLimit))
	if err != nil {
		writeErr(w, err)
		return
	}
	if runs == nil {
		runs = []models.SandboxRun{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Runs []models.SandboxRun `json:"runs"`
	}{Runs: runs})
}
