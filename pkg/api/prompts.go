package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/discovery"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/feed"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/telemetry"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/thread"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

const relatedLimit = 4

// listPrompts handles GET /v1/prompts. Query parameters: page, page_size,
// tag, q (text search), sort (newest|updated|reactions). Pagination
// accumulates: page N returns the first N pages worth of items.
func (h *Handlers) listPrompts(w http.ResponseWriter, r *http.Request) {
	q := feed.Query{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", feed.DefaultPageSize),
		Tag:      r.URL.Query().Get("tag"),
		Text:     r.URL.Query().Get("q"),
		Sort:     r.URL.Query().Get("sort"),
	}
	end := telemetry.StartSpan(r.Context(), "feed_apply")
	list := h.Store.List()
	res := feed.Apply(list, q)
	end()
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Prompts      []models.Prompt     `json:"prompts"`
		Total        int                 `json:"total"`
		HasMore      bool                `json:"has_more"`
		SelectedID   string              `json:"selected_id,omitempty"`
		TrendingTags []discovery.TagCount `json:"trending_tags"`
	}{
		Prompts:      res.Prompts,
		Total:        res.Total,
		HasMore:      res.HasMore,
		SelectedID:   h.Store.SelectedID(),
		TrendingTags: discovery.TrendingTags(list, discovery.DefaultTrendingLimit),
	})
}

type promptBody struct {
	Title       *string  `json:"title"`
	Body        *string  `json:"body"`
	Tags        []string `json:"tags"`
	Tip         *string  `json:"tip"`
	Model       *string  `json:"model"`
	Temperature *string  `json:"temperature"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// createPrompt handles POST /v1/prompts. The author always comes from the
// request identity, never from the body.
func (h *Handlers) createPrompt(w http.ResponseWriter, r *http.Request) {
	var in promptBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.Store.CreatePrompt(r.Context(), h.actor(r), store.CreateInput{
		Title:       deref(in.Title),
		Body:        deref(in.Body),
		Tags:        in.Tags,
		Tip:         deref(in.Tip),
		Model:       deref(in.Model),
		Temperature: deref(in.Temperature),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, p)
}

// getPrompt handles GET /v1/prompts/{id}: the detail view with the comment
// forest and related prompts assembled server side.
func (h *Handlers) getPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeErr(w, err)
		return
	}
	end := telemetry.StartSpan(r.Context(), "build_detail")
	comments := thread.BuildCommentTree(&p)
	related := thread.Related(&p, h.Store.List(), relatedLimit)
	end()
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Prompt   models.Prompt   `json:"prompt"`
		Comments []*thread.Node  `json:"comments"`
		Related  []models.Prompt `json:"related"`
	}{
		Prompt:   p,
		Comments: comments,
		Related:  related,
	})
}

// updatePrompt handles PATCH /v1/prompts/{id} as a shallow merge. Omitted
// fields stay untouched; id, author and created_ts can never change.
func (h *Handlers) updatePrompt(w http.ResponseWriter, r *http.Request) {
	var in promptBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.Store.UpdatePrompt(r.Context(), mux.Vars(r)["id"], store.Patch{
		Title:       in.Title,
		Body:        in.Body,
		Tags:        in.Tags,
		Tip:         in.Tip,
		Model:       in.Model,
		Temperature: in.Temperature,
	}, h.actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}

// deletePrompt handles DELETE /v1/prompts/{id}. Deleting an absent prompt
// still returns 204.
func (h *Handlers) deletePrompt(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePrompt(r.Context(), mux.Vars(r)["id"], h.actor(r)); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toggleReaction handles POST /v1/prompts/{id}/reactions with body
// {"kind": "..."}. Toggling twice returns to the original state.
func (h *Handlers) toggleReaction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	count, reacted, err := h.Store.ToggleReaction(r.Context(), mux.Vars(r)["id"], in.Kind, h.actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Kind    string `json:"kind"`
		Count   int    `json:"count"`
		Reacted bool   `json:"reacted"`
	}{Kind: in.Kind, Count: count, Reacted: reacted})
}

// addComment handles POST /v1/prompts/{id}/comments with body
// {"body": "...", "parent_id": "..."}.
func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Body     string `json:"body"`
		ParentID string `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	c, err := h.Store.AddComment(r.Context(), mux.Vars(r)["id"], h.actor(r), in.Body, in.ParentID)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, c)
}

// toggleSave handles POST /v1/prompts/{id}/save.
func (h *Handlers) toggleSave(w http.ResponseWriter, r *http.Request) {
	saved, err := h.Store.ToggleSave(r.Context(), mux.Vars(r)["id"], h.actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Saved bool `json:"saved"`
	}{Saved: saved})
}

// forkPrompt handles POST /v1/prompts/{id}/fork: a copy owned by the
// caller, with the origin's fork counter bumped.
func (h *Handlers) forkPrompt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := h.Store.Fork(r.Context(), id, h.actor(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	forks := 0
	if origin, err := h.Store.Get(id); err == nil {
		forks = origin.Forks
	}
	_ = utils.JSONWrite(w, http.StatusCreated, struct {
		Forks int           `json:"forks"`
		Fork  models.Prompt `json:"fork"`
	}{Forks: forks, Fork: p})
}

// selectPrompt handles POST /v1/prompts/{id}/select: marks the prompt as
// the session's active one.
func (h *Handlers) selectPrompt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.Store.Get(id); err != nil {
		writeErr(w, err)
		return
	}
	h.Store.Select(id)
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		SelectedID string `json:"selected_id"`
	}{SelectedID: h.Store.SelectedID()})
}
