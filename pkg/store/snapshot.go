package store

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
)

// Pebble key namespaces.
const (
	promptKeyPrefix = "prompt:"
	userKeyPrefix   = "user:"
	runKeyPrefix    = "run:"
	seededKey       = "meta:seeded"
)

// runSeq reduces key collisions when multiple runs share a nanosecond
// timestamp.
var runSeq uint64

// Snapshot is the local fallback persistence: an embedded Pebble database
// holding the latest known prompt set, registered users and sandbox runs.
type Snapshot struct {
	db   *pebble.DB
	path string
}

// OpenSnapshot opens (or creates) the Pebble database at path.
func OpenSnapshot(path string) (*Snapshot, error) {
	return OpenSnapshotSized(path, 0)
}

// OpenSnapshotSized opens the database with a bounded block cache.
// cacheBytes <= 0 uses Pebble's default.
func OpenSnapshotSized(path string, cacheBytes int64) (*Snapshot, error) {
	logger.Log.Info("opening_snapshot_db", "path", path)
	opts := &pebble.Options{}
	if cacheBytes > 0 {
		cache := pebble.NewCache(cacheBytes)
		defer cache.Unref()
		opts.Cache = cache
	}
	db, err := pebble.Open(path, opts)
	if err != nil {
		logger.Log.Error("snapshot_open_failed", "path", path, "error", err)
		return nil, err
	}
	return &Snapshot{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Snapshot) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	logger.Log.Info("snapshot_closed")
	return err
}

// Ready reports whether the snapshot is open.
func (s *Snapshot) Ready() bool { return s != nil && s.db != nil }

// SavePrompt upserts a prompt record keyed by id.
func (s *Snapshot) SavePrompt(p models.Prompt) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prompt: %w", err)
	}
	if err := s.db.Set([]byte(promptKeyPrefix+p.ID), data, pebble.Sync); err != nil {
		logger.Log.Error("save_prompt_failed", "id", p.ID, "error", err)
		return err
	}
	return nil
}

// DeletePrompt removes a prompt record; deleting an absent key is a no-op.
func (s *Snapshot) DeletePrompt(id string) error {
	return s.db.Delete([]byte(promptKeyPrefix+id), pebble.Sync)
}

// LoadPrompts returns every persisted prompt in key order. Entries that no
// longer parse are skipped.
func (s *Snapshot) LoadPrompts() ([]models.Prompt, error) {
	iter, err := s.db.NewIter(prefixBounds(promptKeyPrefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []models.Prompt
	for iter.First(); iter.Valid(); iter.Next() {
		var p models.Prompt
		if err := json.Unmarshal(iter.Value(), &p); err != nil {
			logger.Log.Warn("skipping_invalid_prompt_record", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, p)
	}
	return out, iter.Error()
}

// Seeded reports whether the default seed set was already written.
func (s *Snapshot) Seeded() bool {
	v, closer, err := s.db.Get([]byte(seededKey))
	if err != nil {
		return false
	}
	defer closer.Close()
	return len(v) > 0
}

// MarkSeeded records that seeding happened so a later Load over an emptied
// store does not reseed.
func (s *Snapshot) MarkSeeded() error {
	return s.db.Set([]byte(seededKey), []byte("1"), pebble.Sync)
}

// SaveUser upserts a registered user keyed by normalized email.
func (s *Snapshot) SaveUser(u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.db.Set([]byte(userKeyPrefix+u.Email), data, pebble.Sync)
}

// GetUser looks up a registered user by normalized email.
func (s *Snapshot) GetUser(email string) (models.User, bool) {
	v, closer, err := s.db.Get([]byte(userKeyPrefix + email))
	if err != nil {
		return models.User{}, false
	}
	defer closer.Close()
	var u models.User
	if err := json.Unmarshal(v, &u); err != nil {
		return models.User{}, false
	}
	return u, true
}

// SaveRun appends a sandbox run under a sortable timestamp key.
func (s *Snapshot) SaveRun(run models.SandboxRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	ts := time.Now().UTC().UnixNano()
	seq := atomic.AddUint64(&runSeq, 1)
	key := fmt.Sprintf("%s%020d-%06d", runKeyPrefix, ts, seq)
	return s.db.Set([]byte(key), data, pebble.Sync)
}

// ListRuns returns up to limit runs, newest first.
func (s *Snapshot) ListRuns(limit int) ([]models.SandboxRun, error) {
	iter, err := s.db.NewIter(prefixBounds(runKeyPrefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []models.SandboxRun
	for iter.Last(); iter.Valid() && (limit <= 0 || len(out) < limit); iter.Prev() {
		var run models.SandboxRun
		if err := json.Unmarshal(iter.Value(), &run); err != nil {
			continue
		}
		out = append(out, run)
	}
	return out, iter.Error()
}

// prefixBounds returns iterator options covering exactly one key namespace.
func prefixBounds(prefix string) *pebble.IterOptions {
	upper := append([]byte(prefix[:len(prefix)-1]), prefix[len(prefix)-1]+1)
	return &pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: upper,
	}
}
