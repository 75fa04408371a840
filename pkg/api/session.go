package api

import (
	"encoding/json"
	"net/http"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// login handles POST /v1/auth/login with body {"email": "...", "name": "..."}.
// The email domain must be on the configured allowlist; name is optional.
func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.Auth.Login(in.Email, in.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, u)
}

// me handles GET /v1/auth/me: the identity the request resolves to.
func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, h.actor(r))
}
