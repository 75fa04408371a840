package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/activity"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/auth"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/sandbox"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
)

func newTestHandlers(t *testing.T) (*Handlers, http.Handler) {
	t.Helper()
	snap, err := store.OpenSnapshot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = snap.Close() })

	authSvc, err := auth.NewService(snap, nil)
	require.NoError(t, err)

	h := &Handlers{
		Store:   store.New(snap, nil, activity.NewLog(activity.DefaultCapacity)),
		Sandbox: sandbox.New(sandbox.NewPreview(), snap, ""),
		Auth:    authSvc,
	}
	return h, authSvc.Middleware(auth.GatewayConfig{})(h.Router())
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func createPromptT(t *testing.T, handler http.Handler, title string, tagList []string) models.Prompt {
	t.Helper()
	var p models.Prompt
	w := doJSON(t, handler, http.MethodPost, "/v1/prompts", map[string]interface{}{
		"title": title, "body": "body of " + title, "tags": tagList,
	}, &p)
	require.Equal(t, http.StatusCreated, w.Code)
	return p
}

func TestCreateAndListPrompts(t *testing.T) {
	_, handler := newTestHandlers(t)
	createPromptT(t, handler, "First", []string{"ops"})
	second := createPromptT(t, handler, "Second", []string{"Ops", "Testing"})

	var res struct {
		Prompts    []models.Prompt `json:"prompts"`
		Total      int             `json:"total"`
		HasMore    bool            `json:"has_more"`
		SelectedID string          `json:"selected_id"`
		Trending   []struct {
			Tag   string `json:"tag"`
			Count int    `json:"count"`
		} `json:"trending_tags"`
	}
	w := doJSON(t, handler, http.MethodGet, "/v1/prompts", nil, &res)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, res.Prompts, 2)
	assert.Equal(t, "Second", res.Prompts[0].Title, "newest first")
	assert.Equal(t, 2, res.Total)
	assert.False(t, res.HasMore)
	assert.Equal(t, second.ID, res.SelectedID, "create selects the new prompt")
	require.NotEmpty(t, res.Trending)
	assert.Equal(t, "ops", res.Trending[0].Tag)
	assert.Equal(t, 2, res.Trending[0].Count)

	// author comes from the request identity (demo user fallback)
	assert.Equal(t, auth.DemoEmail, res.Prompts[0].Author.Email)
}

func TestListPromptsFilterAndPagination(t *testing.T) {
	_, handler := newTestHandlers(t)
	for _, title := range []string{"a", "b", "c"} {
		createPromptT(t, handler, title, []string{"ops"})
	}
	createPromptT(t, handler, "off-topic", []string{"misc"})

	var res struct {
		Prompts []models.Prompt `json:"prompts"`
		Total   int             `json:"total"`
		HasMore bool            `json:"has_more"`
	}
	w := doJSON(t, handler, http.MethodGet, "/v1/prompts?tag=ops&page=1&page_size=2", nil, &res)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, res.Prompts, 2)
	assert.Equal(t, 3, res.Total)
	assert.True(t, res.HasMore)

	// page 2 accumulates rather than slices
	doJSON(t, handler, http.MethodGet, "/v1/prompts?tag=ops&page=2&page_size=2", nil, &res)
	assert.Len(t, res.Prompts, 3)
	assert.False(t, res.HasMore)
}

func TestCreatePromptValidationError(t *testing.T) {
	_, handler := newTestHandlers(t)
	w := doJSON(t, handler, http.MethodPost, "/v1/prompts", map[string]string{"title": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPromptDetail(t *testing.T) {
	_, handler := newTestHandlers(t)
	p := createPromptT(t, handler, "Main", []string{"ops"})
	related := createPromptT(t, handler, "Sibling", []string{"ops"})
	createPromptT(t, handler, "Unrelated", []string{"misc"})

	var c models.Comment
	w := doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/comments", map[string]string{"body": "root"}, &c)
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/comments", map[string]string{"body": "reply", "parent_id": c.ID}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var res struct {
		Prompt   models.Prompt `json:"prompt"`
		Comments []struct {
			Comment  models.Comment    `json:"comment"`
			Children []json.RawMessage `json:"children"`
		} `json:"comments"`
		Related []models.Prompt `json:"related"`
	}
	w = doJSON(t, handler, http.MethodGet, "/v1/prompts/"+p.ID, nil, &res)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Main", res.Prompt.Title)
	require.Len(t, res.Comments, 1, "reply is nested, not a second root")
	assert.Equal(t, c.ID, res.Comments[0].Comment.ID)
	require.Len(t, res.Comments[0].Children, 1)
	require.Len(t, res.Related, 1)
	assert.Equal(t, related.ID, res.Related[0].ID)

	w = doJSON(t, handler, http.MethodGet, "/v1/prompts/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAndDeletePrompt(t *testing.T) {
	_, handler := newTestHandlers(t)
	p := createPromptT(t, handler, "Before", nil)

	var updated models.Prompt
	w := doJSON(t, handler, http.MethodPatch, "/v1/prompts/"+p.ID, map[string]string{"title": "After"}, &updated)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "body of Before", updated.Body, "omitted fields survive the merge")

	w = doJSON(t, handler, http.MethodPatch, "/v1/prompts/missing", map[string]string{"title": "x"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, handler, http.MethodDelete, "/v1/prompts/"+p.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	// absent id is still a no-op 204
	w = doJSON(t, handler, http.MethodDelete, "/v1/prompts/"+p.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestReactionRoundTrip(t *testing.T) {
	_, handler := newTestHandlers(t)
	p := createPromptT(t, handler, "React", nil)

	var res struct {
		Count   int  `json:"count"`
		Reacted bool `json:"reacted"`
	}
	w := doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/reactions", map[string]string{"kind": models.ReactionLike}, &res)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, res.Count)
	assert.True(t, res.Reacted)

	doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/reactions", map[string]string{"kind": models.ReactionLike}, &res)
	assert.Equal(t, 0, res.Count)
	assert.False(t, res.Reacted)
}

func TestSaveForkSelect(t *testing.T) {
	_, handler := newTestHandlers(t)
	p := createPromptT(t, handler, "Origin", []string{"ops"})

	var saveRes struct {
		Saved bool `json:"saved"`
	}
	w := doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/save", nil, &saveRes)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, saveRes.Saved)

	var forkRes struct {
		Forks int           `json:"forks"`
		Fork  models.Prompt `json:"fork"`
	}
	w = doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/fork", nil, &forkRes)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, forkRes.Forks)
	assert.Equal(t, "Fork: Origin", forkRes.Fork.Title)

	var sel struct {
		SelectedID string `json:"selected_id"`
	}
	w = doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/select", nil, &sel)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.ID, sel.SelectedID)

	w = doJSON(t, handler, http.MethodPost, "/v1/prompts/missing/select", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivityFeed(t *testing.T) {
	_, handler := newTestHandlers(t)
	p := createPromptT(t, handler, "Logged", nil)
	doJSON(t, handler, http.MethodPost, "/v1/prompts/"+p.ID+"/reactions", map[string]string{"kind": "like"}, nil)

	var res struct {
		Activity []models.ActivityEntry `json:"activity"`
	}
	w := doJSON(t, handler, http.MethodGet, "/v1/activity", nil, &res)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, res.Activity, 2)
	assert.Equal(t, models.ActivityReaction, res.Activity[0].Type, "newest first")
}

func TestDiscoveryPanels(t *testing.T) {
	_, handler := newTestHandlers(t)
	for _, title := range []string{"a", "b", "c", "d"} {
		createPromptT(t, handler, title, []string{"ops"})
	}

	var res struct {
		TopPrompts      []models.Prompt `json:"top_prompts"`
		RecentlyUpdated []models.Prompt `json:"recently_updated"`
		TrendingTags    []struct {
			Tag   string `json:"tag"`
			Count int    `json:"count"`
		} `json:"trending_tags"`
	}
	w := doJSON(t, handler, http.MethodGet, "/v1/discovery", nil, &res)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, res.TopPrompts, 3)
	assert.Len(t, res.RecentlyUpdated, 3)
	require.NotEmpty(t, res.TrendingTags)
	assert.Equal(t, 4, res.TrendingTags[0].Count)
}

func TestSandboxEndpoints(t *testing.T) {
	_, handler := newTestHandlers(t)

	var run models.SandboxRun
	w := doJSON(t, handler, http.MethodPost, "/v1/sandbox/run", map[string]string{"prompt_text": "say hi"}, &run)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, run.OutputText, "SAY HI")

	w = doJSON(t, handler, http.MethodPost, "/v1/sandbox/run", map[string]string{"prompt_text": " "}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var runs struct {
		Runs []models.SandboxRun `json:"runs"`
	}
	w = doJSON(t, handler, http.MethodGet, "/v1/sandbox/runs", nil, &runs)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, run.ID, runs.Runs[0].ID)
}

func TestAuthEndpoints(t *testing.T) {
	_, handler := newTestHandlers(t)

	var u models.User
	w := doJSON(t, handler, http.MethodPost, "/v1/auth/login", map[string]string{"email": "pat@tracknamic.ai"}, &u)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pat", u.Name)

	w = doJSON(t, handler, http.MethodPost, "/v1/auth/login", map[string]string{"email": "pat@evil.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	r.Header.Set(auth.IdentityHeader, "pat@tracknamic.ai")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "pat@tracknamic.ai", me.Email)

	// no identity header resolves to the demo user
	w = doJSON(t, handler, http.MethodGet, "/v1/auth/me", nil, &me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, auth.DemoEmail, me.Email)
}

func TestStoreLoadSeedsThroughAPI(t *testing.T) {
	h, handler := newTestHandlers(t)
	require.NoError(t, h.Store.Load(context.Background()))

	var res struct {
		Prompts []models.Prompt `json:"prompts"`
	}
	w := doJSON(t, handler, http.MethodGet, "/v1/prompts", nil, &res)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, res.Prompts, len(store.DefaultSeed()))
}
