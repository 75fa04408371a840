package api

import (
	"net/http"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/discovery"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

const panelLimit = 3

// listActivity handles GET /v1/activity: the newest-first activity feed.
func (h *Handlers) listActivity(w http.ResponseWriter, r *http.Request) {
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Activity []models.ActivityEntry `json:"activity"`
	}{Activity: h.Store.Activity().Head()})
}

// trendingTags handles GET /v1/tags/trending?limit=n.
func (h *Handlers) trendingTags(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", discovery.DefaultTrendingLimit)
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Tags []discovery.TagCount `json:"tags"`
	}{Tags: discovery.TrendingTags(h.Store.List(), limit)})
}

// discoveryPanels handles GET /v1/discovery: the sidebar panel bundle.
func (h *Handlers) discoveryPanels(w http.ResponseWriter, r *http.Request) {
	list := h.Store.List()
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		TopPrompts      []models.Prompt      `json:"top_prompts"`
		RecentlyUpdated []models.Prompt      `json:"recently_updated"`
		TrendingTags    []discovery.TagCount `json:"trending_tags"`
	}{
		TopPrompts:      discovery.TopByCreated(list, panelLimit),
		RecentlyUpdated: discovery.TopByUpdated(list, panelLimit),
		TrendingTags:    discovery.TrendingTags(list, discovery.DefaultTrendingLimit),
	})
}
