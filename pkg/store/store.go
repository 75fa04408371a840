// Package store owns the canonical in-memory prompt collection and
// serializes every mutation to durable storage: the upstream prompt service
// when one is configured, and the local Pebble snapshot always.
//
// Mutations are optimistic: local state is rewritten first and is visible
// to queries before the persistence call is issued. A failed upstream write
// is logged and surfaced, never rolled back.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/activity"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/tags"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// Backend is the upstream Prompt Service. All methods may fail without
// affecting local state.
type Backend interface {
	List(ctx context.Context) ([]models.Prompt, error)
	SavePrompt(ctx context.Context, p models.Prompt) error
	DeletePrompt(ctx context.Context, id string) error
}

// Store holds the canonical prompt list. No other component writes to
// prompt records; read paths receive deep copies.
type Store struct {
	mu       sync.RWMutex
	prompts  []models.Prompt
	selected string

	snap    *Snapshot
	backend Backend
	log     *activity.Log
	now     func() time.Time
}

// New builds a Store over the given snapshot database. backend may be nil
// when no upstream prompt service is configured.
func New(snap *Snapshot, backend Backend, log *activity.Log) *Store {
	if log == nil {
		log = activity.NewLog(activity.DefaultCapacity)
	}
	return &Store{snap: snap, backend: backend, log: log, now: time.Now}
}

// Activity exposes the mutation log for the sidebar feed.
func (s *Store) Activity() *activity.Log { return s.log }

// Load replaces the canonical list wholesale. Order of preference:
// upstream fetch, local snapshot, fixed seed set. Seeding happens at most
// once per database; a later Load over non-empty storage never reseeds.
func (s *Store) Load(ctx context.Context) error {
	if s.backend != nil {
		list, err := s.backend.List(ctx)
		if err == nil {
			s.replace(list)
			for _, p := range list {
				if serr := s.snap.SavePrompt(p); serr != nil {
					logger.Log.Warn("snapshot_mirror_failed", "id", p.ID, "error", serr)
				}
			}
			metricLoads.WithLabelValues("backend").Inc()
			logger.Log.Info("prompts_loaded", "source", "backend", "count", len(list))
			return nil
		}
		logger.Log.Warn("backend_list_failed", "error", err)
	}

	list, err := s.snap.LoadPrompts()
	if err != nil {
		logger.Log.Error("snapshot_load_failed", "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(list) == 0 && !s.snap.Seeded() {
		list = DefaultSeed()
		for _, p := range list {
			if serr := s.snap.SavePrompt(p); serr != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, serr)
			}
		}
		if serr := s.snap.MarkSeeded(); serr != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, serr)
		}
		metricLoads.WithLabelValues("seed").Inc()
		logger.Log.Info("prompts_loaded", "source", "seed", "count", len(list))
	} else {
		metricLoads.WithLabelValues("snapshot").Inc()
		logger.Log.Info("prompts_loaded", "source", "snapshot", "count", len(list))
	}
	s.replace(list)
	return nil
}

// replace installs the new canonical list newest-first and fixes up the
// selected id when it no longer resolves.
func (s *Store) replace(list []models.Prompt) {
	sorted := append([]models.Prompt(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedTS > sorted[j].CreatedTS
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = sorted
	if s.indexOfLocked(s.selected) < 0 {
		s.selected = ""
		if len(sorted) > 0 {
			s.selected = sorted[0].ID
		}
	}
}

// List returns a deep copy of the canonical list, newest-first.
func (s *Store) List() []models.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Prompt, 0, len(s.prompts))
	for i := range s.prompts {
		out = append(out, s.prompts[i].Clone())
	}
	return out
}

// Get returns a deep copy of one prompt.
func (s *Store) Get(id string) (models.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOfLocked(id); i >= 0 {
		return s.prompts[i].Clone(), nil
	}
	return models.Prompt{}, ErrNotFound
}

// Select marks a prompt as the active one; unknown ids are ignored.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfLocked(id) >= 0 {
		s.selected = id
	}
}

// SelectedID returns the active prompt id, or empty.
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// CreateInput carries the caller-editable fields of a new prompt. The
// author is never part of it.
type CreateInput struct {
	Title       string
	Body        string
	Tags        []string
	Tip         string
	Model       string
	Temperature string
}

// CreatePrompt validates, prepends the new prompt, selects it as active,
// persists it and records an activity entry. Tags are canonicalized and
// de-duplicated.
func (s *Store) CreatePrompt(ctx context.Context, actor models.User, in CreateInput) (models.Prompt, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" {
		return models.Prompt{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if body == "" {
		return models.Prompt{}, fmt.Errorf("%w: body is required", ErrValidation)
	}

	now := s.now().UTC().UnixNano()
	p := models.Prompt{
		ID:          utils.GenPromptID(),
		Title:       title,
		Body:        body,
		Tags:        dedupe(tags.CanonicalSlice(in.Tags)),
		Author:      actor,
		Tip:         strings.TrimSpace(in.Tip),
		Model:       in.Model,
		Temperature: in.Temperature,
		CreatedTS:   now,
		UpdatedTS:   now,
	}

	s.mu.Lock()
	s.prompts = append([]models.Prompt{p}, s.prompts...)
	s.selected = p.ID
	s.mu.Unlock()

	s.persist(ctx, p)
	metricMutations.WithLabelValues(models.ActivityCreate).Inc()
	s.log.Push(models.ActivityCreate, fmt.Sprintf("shared %q", p.Title), actor.Name)
	logger.Log.Info("prompt_created", "id", p.ID, "author", actor.ID)
	return p.Clone(), nil
}

// Patch is a shallow merge applied by UpdatePrompt. Nil fields are left
// untouched. It can never override id, author or created_ts.
type Patch struct {
	Title       *string
	Body        *string
	Tags        []string
	Tip         *string
	Model       *string
	Temperature *string
}

// UpdatePrompt merges the patch onto an existing record and bumps
// updated_ts. Returns ErrNotFound when the id is absent.
func (s *Store) UpdatePrompt(ctx context.Context, id string, patch Patch, actor models.User) (models.Prompt, error) {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Prompt{}, ErrNotFound
	}
	p := &s.prompts[i]
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Body != nil {
		p.Body = strings.TrimSpace(*patch.Body)
	}
	if patch.Tags != nil {
		p.Tags = dedupe(tags.CanonicalSlice(patch.Tags))
	}
	if patch.Tip != nil {
		p.Tip = strings.TrimSpace(*patch.Tip)
	}
	if patch.Model != nil {
		p.Model = *patch.Model
	}
	if patch.Temperature != nil {
		p.Temperature = *patch.Temperature
	}
	p.UpdatedTS = s.bumpTS(p.UpdatedTS)
	out := p.Clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	metricMutations.WithLabelValues(models.ActivityUpdate).Inc()
	s.log.Push(models.ActivityUpdate, fmt.Sprintf("updated %q", out.Title), actor.Name)
	logger.Log.Info("prompt_updated", "id", id)
	return out, nil
}

// DeletePrompt removes a prompt. An absent id is a no-op, not an error.
func (s *Store) DeletePrompt(ctx context.Context, id string, actor models.User) error {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	title := s.prompts[i].Title
	s.prompts = append(s.prompts[:i], s.prompts[i+1:]...)
	if s.selected == id {
		s.selected = ""
		if len(s.prompts) > 0 {
			s.selected = s.prompts[0].ID
		}
	}
	s.mu.Unlock()

	if err := s.snap.DeletePrompt(id); err != nil {
		logger.Log.Warn("snapshot_delete_failed", "id", id, "error", err)
	}
	if s.backend != nil {
		if err := s.backend.DeletePrompt(ctx, id); err != nil {
			logger.Log.Warn("backend_delete_failed", "id", id, "error", err)
		}
	}
	metricMutations.WithLabelValues(models.ActivityDelete).Inc()
	s.log.Push(models.ActivityDelete, fmt.Sprintf("removed %q", title), actor.Name)
	logger.Log.Info("prompt_deleted", "id", id)
	return nil
}

// ToggleReaction flips the user's membership in the reaction-kind set and
// returns the new count with the user's resulting membership. The count is
// always recomputed from the set, never incremented independently.
func (s *Store) ToggleReaction(ctx context.Context, id, kind string, user models.User) (int, bool, error) {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return 0, false, ErrNotFound
	}
	p := &s.prompts[i]
	if p.Reactions == nil {
		p.Reactions = make(map[string]models.ReactionSet)
	}
	rs := p.Reactions[kind]
	if rs.Has(user.ID) {
		users := rs.Users[:0]
		for _, u := range rs.Users {
			if u != user.ID {
				users = append(users, u)
			}
		}
		rs.Users = users
	} else {
		rs.Users = append(rs.Users, user.ID)
	}
	rs.Count = len(rs.Users)
	p.Reactions[kind] = rs
	p.UpdatedTS = s.bumpTS(p.UpdatedTS)
	reacted := rs.Has(user.ID)
	count := rs.Count
	title := p.Title
	out := p.Clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	metricMutations.WithLabelValues(models.ActivityReaction).Inc()
	s.log.Push(models.ActivityReaction, fmt.Sprintf("reacted %s to %q", kind, title), user.Name)
	return count, reacted, nil
}

// AddComment prepends a comment to the prompt's flat list. Thread structure
// is reconstructed by the detail renderer, not stored hierarchically.
func (s *Store) AddComment(ctx context.Context, id string, actor models.User, body, parentID string) (models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Comment{}, fmt.Errorf("%w: comment body is required", ErrValidation)
	}

	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Comment{}, ErrNotFound
	}
	p := &s.prompts[i]
	c := models.Comment{
		ID:        utils.GenCommentID(),
		Author:    actor,
		Body:      body,
		ParentID:  parentID,
		CreatedTS: s.now().UTC().UnixNano(),
	}
	p.Comments = append([]models.Comment{c}, p.Comments...)
	p.UpdatedTS = s.bumpTS(p.UpdatedTS)
	title := p.Title
	out := p.Clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	metricMutations.WithLabelValues(models.ActivityComment).Inc()
	s.log.Push(models.ActivityComment, fmt.Sprintf("commented on %q", title), actor.Name)
	return c, nil
}

// ToggleSave flips the user's bookmark on the prompt and reports the
// resulting state.
func (s *Store) ToggleSave(ctx context.Context, id string, user models.User) (bool, error) {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, ErrNotFound
	}
	p := &s.prompts[i]
	if p.Saved(user.ID) {
		saves := p.Saves[:0]
		for _, u := range p.Saves {
			if u != user.ID {
				saves = append(saves, u)
			}
		}
		p.Saves = saves
	} else {
		p.Saves = append(p.Saves, user.ID)
	}
	p.UpdatedTS = s.bumpTS(p.UpdatedTS)
	saved := p.Saved(user.ID)
	out := p.Clone()
	s.mu.Unlock()

	s.persist(ctx, out)
	metricMutations.WithLabelValues(models.ActivityUpdate).Inc()
	return saved, nil
}

// Fork bumps the fork counter and creates a copy owned by the forker. The
// counter is authoritative; no lineage data is retained beyond the copy's
// title.
func (s *Store) Fork(ctx context.Context, id string, actor models.User) (models.Prompt, error) {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return models.Prompt{}, ErrNotFound
	}
	src := &s.prompts[i]
	src.Forks++
	src.UpdatedTS = s.bumpTS(src.UpdatedTS)
	origin := src.Clone()

	now := s.now().UTC().UnixNano()
	fork := models.Prompt{
		ID:          utils.GenPromptID(),
		Title:       "Fork: " + origin.Title,
		Body:        origin.Body,
		Tags:        append([]string(nil), origin.Tags...),
		Author:      actor,
		Tip:         origin.Tip,
		Model:       origin.Model,
		Temperature: origin.Temperature,
		CreatedTS:   now,
		UpdatedTS:   now,
	}
	s.prompts = append([]models.Prompt{fork}, s.prompts...)
	s.mu.Unlock()

	s.persist(ctx, origin)
	s.persist(ctx, fork)
	metricMutations.WithLabelValues(models.ActivityCreate).Inc()
	s.log.Push(models.ActivityCreate, fmt.Sprintf("forked %q", origin.Title), actor.Name)
	return fork.Clone(), nil
}

// persist writes the prompt to the snapshot and, when configured, to the
// upstream. Failures are logged; local state stays mutated either way.
func (s *Store) persist(ctx context.Context, p models.Prompt) {
	if err := s.snap.SavePrompt(p); err != nil {
		logger.Log.Warn("snapshot_persist_failed", "id", p.ID, "error", err)
	}
	if s.backend != nil {
		if err := s.backend.SavePrompt(ctx, p); err != nil {
			logger.Log.Warn("backend_persist_failed", "id", p.ID, "error", err)
		}
	}
}

// bumpTS returns a timestamp strictly greater than prev so updated_ts never
// decreases even under clock skew.
func (s *Store) bumpTS(prev int64) int64 {
	now := s.now().UTC().UnixNano()
	if now <= prev {
		return prev + 1
	}
	return now
}

func (s *Store) indexOfLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.prompts {
		if s.prompts[i].ID == id {
			return i
		}
	}
	return -1
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
