package store

import (
	"context"
	"errors"
	"testing"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/activity"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = models.User{ID: "user-1", Name: "Alice", Email: "alice@tracknamic.com"}
var bob = models.User{ID: "user-2", Name: "Bob", Email: "bob@tracknamic.com"}

func newTestStore(t *testing.T) (*Store, *Snapshot) {
	t.Helper()
	snap, err := OpenSnapshot(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = snap.Close() })
	return New(snap, nil, activity.NewLog(20)), snap
}

func TestLoadSeedsEmptyStorageOnce(t *testing.T) {
	s, snap := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	first := s.List()
	require.Len(t, first, len(DefaultSeed()))
	assert.True(t, snap.Seeded())

	// second load over non-empty storage must not reseed
	require.NoError(t, s.Load(ctx))
	assert.Len(t, s.List(), len(first))

	// even after deleting everything, the seed marker blocks reseeding
	for _, p := range first {
		require.NoError(t, s.DeletePrompt(ctx, p.ID, alice))
	}
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.List())
}

func TestLoadRestoresSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap, err := OpenSnapshot(dir)
	require.NoError(t, err)
	s := New(snap, nil, nil)
	ctx := context.Background()

	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "Persisted", Body: "body"})
	require.NoError(t, err)
	require.NoError(t, snap.Close())

	snap2, err := OpenSnapshot(dir)
	require.NoError(t, err)
	defer snap2.Close()
	s2 := New(snap2, nil, nil)
	require.NoError(t, s2.Load(ctx))

	got, err := s2.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
}

func TestCreatePromptValidation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "  ", Body: "body"})
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.CreatePrompt(ctx, alice, CreateInput{Title: "title", Body: "\n\t"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, s.List(), "failed create must not mutate the canonical list")
}

func TestCreatePromptPrependsAndSelects(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "First", Body: "b"})
	require.NoError(t, err)
	second, err := s.CreatePrompt(ctx, bob, CreateInput{Title: "Second", Body: "b"})
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, second.ID, s.SelectedID())
	assert.Equal(t, bob.ID, list[0].Author.ID, "author always comes from the session identity")
}

func TestCreatePromptCanonicalizesTags(t *testing.T) {
	s, _ := newTestStore(t)
	p, err := s.CreatePrompt(context.Background(), alice, CreateInput{
		Title: "t", Body: "b",
		Tags: []string{" Ops ", "Incident Response", "ops"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ops", "incident-response"}, p.Tags)
}

func TestUpdatePromptMergeRules(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "Before", Body: "body", Tip: "tip"})
	require.NoError(t, err)

	title := "After"
	got, err := s.UpdatePrompt(ctx, p.ID, Patch{Title: &title}, alice)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "body", got.Body, "unpatched fields survive")
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Author, got.Author)
	assert.Equal(t, p.CreatedTS, got.CreatedTS)
	assert.Greater(t, got.UpdatedTS, p.UpdatedTS)

	_, err = s.UpdatePrompt(ctx, "missing", Patch{Title: &title}, alice)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePromptAbsentIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.DeletePrompt(context.Background(), "missing", alice))
}

func TestToggleReactionParity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "t", Body: "b"})
	require.NoError(t, err)

	count, reacted, err := s.ToggleReaction(ctx, p.ID, models.ReactionLike, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, reacted)

	count, reacted, err = s.ToggleReaction(ctx, p.ID, models.ReactionLike, bob)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "even number of toggles returns to the original count")
	assert.False(t, reacted)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	rs := got.Reactions[models.ReactionLike]
	assert.Equal(t, len(rs.Users), rs.Count, "count always equals set size")
}

func TestToggleReactionMissingPrompt(t *testing.T) {
	s, _ := newTestStore(t)
	_, _, err := s.ToggleReaction(context.Background(), "missing", models.ReactionLike, alice)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddComment(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "t", Body: "b"})
	require.NoError(t, err)

	_, err = s.AddComment(ctx, p.ID, bob, "  ", "")
	require.ErrorIs(t, err, ErrValidation)
	_, err = s.AddComment(ctx, "missing", bob, "hello", "")
	require.ErrorIs(t, err, ErrNotFound)

	c1, err := s.AddComment(ctx, p.ID, bob, "first", "")
	require.NoError(t, err)
	c2, err := s.AddComment(ctx, p.ID, alice, "reply", c1.ID)
	require.NoError(t, err)

	got, err := s.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, c2.ID, got.Comments[0].ID, "comments are stored newest first")
	assert.Equal(t, c1.ID, got.Comments[0].ParentID)
}

func TestToggleSave(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "t", Body: "b"})
	require.NoError(t, err)

	saved, err := s.ToggleSave(ctx, p.ID, bob)
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = s.ToggleSave(ctx, p.ID, bob)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestFork(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "Original", Body: "b", Tags: []string{"ops"}})
	require.NoError(t, err)

	fork, err := s.Fork(ctx, p.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, "Fork: Original", fork.Title)
	assert.Equal(t, bob.ID, fork.Author.ID)
	assert.Zero(t, fork.Forks)

	origin, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, origin.Forks)
	assert.Len(t, s.List(), 2)
}

func TestActivityLogRecordsMutations(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "t", Body: "b"})
	require.NoError(t, err)
	_, _, err = s.ToggleReaction(ctx, p.ID, models.ReactionLike, bob)
	require.NoError(t, err)

	head := s.Activity().Head()
	require.Len(t, head, 2)
	assert.Equal(t, models.ActivityReaction, head[0].Type)
	assert.Equal(t, "Bob", head[0].Actor)
	assert.Equal(t, models.ActivityCreate, head[1].Type)
}

type failingBackend struct{}

func (failingBackend) List(context.Context) ([]models.Prompt, error) {
	return nil, errors.New("upstream down")
}
func (failingBackend) SavePrompt(context.Context, models.Prompt) error {
	return errors.New("upstream down")
}
func (failingBackend) DeletePrompt(context.Context, string) error {
	return errors.New("upstream down")
}

func TestMutationsStayOptimisticWhenBackendFails(t *testing.T) {
	snap, err := OpenSnapshot(t.TempDir())
	require.NoError(t, err)
	defer snap.Close()
	s := New(snap, failingBackend{}, nil)
	ctx := context.Background()

	// backend list fails -> falls back to seed path
	require.NoError(t, s.Load(ctx))
	require.NotEmpty(t, s.List())

	p, err := s.CreatePrompt(ctx, alice, CreateInput{Title: "kept", Body: "b"})
	require.NoError(t, err, "a failed upstream persist must not fail the mutation")
	got, err := s.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Title, "no rollback of optimistic local state")
}
