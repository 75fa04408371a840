// Package api exposes the workspace over a JSON HTTP surface. Handlers are
// thin: they decode, delegate to the collaborating packages and encode.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/auth"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/sandbox"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// Handlers bundles the collaborators the HTTP surface needs.
type Handlers struct {
	Store   *store.Store
	Sandbox *sandbox.Service
	Auth    *auth.Service
}

// Router builds the /v1 API router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/prompts", h.listPrompts).Methods(http.MethodGet)
	v1.HandleFunc("/prompts", h.createPrompt).Methods(http.MethodPost)
	v1.HandleFunc("/prompts/{id}", h.getPrompt).Methods(http.MethodGet)
	v1.HandleFunc("/prompts/{id}", h.updatePrompt).Methods(http.MethodPut, http.MethodPatch)
	v1.HandleFunc("/prompts/{id}", h.deletePrompt).Methods(http.MethodDelete)
	v1.HandleFunc("/prompts/{id}/reactions", h.toggleReaction).Methods(http.MethodPost)
	v1.HandleFunc("/prompts/{id}/comments", h.addComment).Methods(http.MethodPost)
	v1.HandleFunc("/prompts/{id}/save", h.toggleSave).Methods(http.MethodPost)
	v1.HandleFunc("/prompts/{id}/fork", h.forkPrompt).Methods(http.MethodPost)
	v1.HandleFunc("/prompts/{id}/select", h.selectPrompt).Methods(http.MethodPost)

	v1.HandleFunc("/activity", h.listActivity).Methods(http.MethodGet)
	v1.HandleFunc("/tags/trending", h.trendingTags).Methods(http.MethodGet)
	v1.HandleFunc("/discovery", h.discoveryPanels).Methods(http.MethodGet)

	v1.HandleFunc("/sandbox/run", h.runSandbox).Methods(http.MethodPost)
	v1.HandleFunc("/sandbox/runs", h.listSandboxRuns).Methods(http.MethodGet)

	v1.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	v1.HandleFunc("/auth/me", h.me).Methods(http.MethodGet)

	return r
}

// actor returns the request identity resolved by the auth middleware,
// falling back to direct resolution when the middleware was bypassed.
func (h *Handlers) actor(r *http.Request) models.User {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		return u
	}
	return h.Auth.CurrentUser(r)
}

// writeErr maps domain errors to HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		utils.JSONError(w, http.StatusServiceUnavailable, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// queryInt parses an integer query parameter, returning def when absent
// or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
