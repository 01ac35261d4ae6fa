package parts

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/skladapp/sklad-backend/pkg/errors"
	"github.com/skladapp/sklad-backend/pkg/jsonfile"
)

const (
	partsFile     = "parts.json"
	historyFile   = "history.json"
	favoritesFile = "favorites.json"

	historyLimit = 50
)

// Repository owns the flat-file catalog: parts.json plus the history and
// favorites id lists. Every mutation rewrites the affected document
// atomically (temp file + rename). A single in-process mutex serializes
// operations; there is no cross-file transaction, so a write failure in
// a multi-document mutation can leave sibling documents ahead of the
// in-memory state.
type Repository struct {
	mu  sync.Mutex
	dir string

	loaded    bool
	parts     []Part
	history   []int64
	favorites []int64

	// nextID is an in-process high-water mark so ids are never reused
	// within a run, even after the highest record is deleted.
	nextID int64
}

// NewRepository binds a repository to the storage directory. Nothing is
// read until the first operation (lazy initialization).
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Initialize eagerly loads the documents. Idempotent; every other
// operation performs the same load on demand.
func (r *Repository) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLoadedLocked()
}

func (r *Repository) ensureLoadedLocked() error {
	if r.loaded {
		return nil
	}

	if err := jsonfile.ReadOrInit(r.path(partsFile), &r.parts, []Part{}); err != nil {
		return storageErr(err, "loading parts")
	}
	if err := jsonfile.ReadOrInit(r.path(historyFile), &r.history, []int64{}); err != nil {
		return storageErr(err, "loading view history")
	}
	if err := jsonfile.ReadOrInit(r.path(favoritesFile), &r.favorites, []int64{}); err != nil {
		return storageErr(err, "loading favorites")
	}

	r.nextID = maxID(r.parts)
	r.loaded = true
	return nil
}

// Snapshot returns a copy of the part collection, never the live slice.
func (r *Repository) Snapshot() ([]Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return slices.Clone(r.parts), nil
}

// FindByID returns the record with the given id.
func (r *Repository) FindByID(id int64) (Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return Part{}, err
	}
	if idx := r.indexLocked(id); idx >= 0 {
		return r.parts[idx], nil
	}
	return Part{}, notFound(id)
}

// Insert assigns the next id and both timestamps, persists, and returns
// the stored record.
func (r *Repository) Insert(record NewPart) (Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return Part{}, err
	}

	id := r.nextID + 1
	if m := maxID(r.parts); m >= id {
		id = m + 1
	}

	now := time.Now().UTC()
	part := record.build(id, now, now)

	next := append(slices.Clone(r.parts), part)
	if err := r.writeParts(next); err != nil {
		return Part{}, err
	}
	r.parts = next
	r.nextID = id
	return part, nil
}

// Update replaces the record matching record.ID. CreatedAt is carried
// over from the stored record; UpdatedAt is refreshed.
func (r *Repository) Update(record Part) (Part, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return Part{}, err
	}

	idx := r.indexLocked(record.ID)
	if idx < 0 {
		return Part{}, notFound(record.ID)
	}

	record.CreatedAt = r.parts[idx].CreatedAt
	record.UpdatedAt = time.Now().UTC()

	next := slices.Clone(r.parts)
	next[idx] = record
	if err := r.writeParts(next); err != nil {
		return Part{}, err
	}
	r.parts = next
	return record, nil
}

// Delete removes the record and cascades the id out of history and
// favorites, persisting all three documents.
func (r *Repository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}

	idx := r.indexLocked(id)
	if idx < 0 {
		return notFound(id)
	}

	nextParts := slices.Delete(slices.Clone(r.parts), idx, idx+1)
	nextHistory := withoutID(r.history, id)
	nextFavorites := withoutID(r.favorites, id)

	err := multierr.Combine(
		r.writeParts(nextParts),
		r.writeHistory(nextHistory),
		r.writeFavorites(nextFavorites),
	)
	if err != nil {
		return err
	}

	r.parts = nextParts
	r.history = nextHistory
	r.favorites = nextFavorites
	return nil
}

// PushHistory records a detail view: the id moves to the front, the list
// stays deduplicated and capped.
func (r *Repository) PushHistory(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	if r.indexLocked(id) < 0 {
		return notFound(id)
	}

	next := append([]int64{id}, withoutID(r.history, id)...)
	if len(next) > historyLimit {
		next = next[:historyLimit]
	}
	if err := r.writeHistory(next); err != nil {
		return err
	}
	r.history = next
	return nil
}

// HistoryIDs returns the view history, most recent first.
func (r *Repository) HistoryIDs() ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return slices.Clone(r.history), nil
}

// ClearHistory empties the view history.
func (r *Repository) ClearHistory() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	if err := r.writeHistory([]int64{}); err != nil {
		return err
	}
	r.history = nil
	return nil
}

// AddFavorite inserts the id into the favorites set; duplicates are
// silently ignored.
func (r *Repository) AddFavorite(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	if r.indexLocked(id) < 0 {
		return notFound(id)
	}
	if slices.Contains(r.favorites, id) {
		return nil
	}

	next := append(slices.Clone(r.favorites), id)
	if err := r.writeFavorites(next); err != nil {
		return err
	}
	r.favorites = next
	return nil
}

// RemoveFavorite drops the id; removing an absent id is a no-op.
func (r *Repository) RemoveFavorite(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}
	if !slices.Contains(r.favorites, id) {
		return nil
	}

	next := withoutID(r.favorites, id)
	if err := r.writeFavorites(next); err != nil {
		return err
	}
	r.favorites = next
	return nil
}

// FavoriteIDs returns the favorites set in insertion order.
func (r *Repository) FavoriteIDs() ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return nil, err
	}
	return slices.Clone(r.favorites), nil
}

// ReplaceAll swaps the whole collection in one pass: ids are reassigned
// sequentially, timestamps are kept when present, and both id lists are
// cleared since their references are meaningless against the new
// collection. The new state is built completely before the old one is
// touched, so there is no empty-store window.
func (r *Repository) ReplaceAll(records []Part) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	next := make([]Part, 0, len(records))
	for i, record := range records {
		record.ID = int64(i + 1)
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}
		if record.UpdatedAt.IsZero() {
			record.UpdatedAt = now
		}
		next = append(next, record)
	}

	err := multierr.Combine(
		r.writeParts(next),
		r.writeHistory([]int64{}),
		r.writeFavorites([]int64{}),
	)
	if err != nil {
		return 0, err
	}

	r.parts = next
	r.history = nil
	r.favorites = nil
	if m := maxID(next); m > r.nextID {
		r.nextID = m
	}
	return len(next), nil
}

// RestoreState rehydrates a full dump: parts keep their ids, and the id
// lists are pruned to records that actually exist.
func (r *Repository) RestoreState(records []Part, history, favorites []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}

	known := make(map[int64]struct{}, len(records))
	for _, record := range records {
		known[record.ID] = struct{}{}
	}
	nextHistory := keepKnown(history, known)
	nextFavorites := keepKnown(favorites, known)

	err := multierr.Combine(
		r.writeParts(records),
		r.writeHistory(nextHistory),
		r.writeFavorites(nextFavorites),
	)
	if err != nil {
		return err
	}

	r.parts = slices.Clone(records)
	r.history = nextHistory
	r.favorites = nextFavorites
	if m := maxID(records); m > r.nextID {
		r.nextID = m
	}
	return nil
}

// ClearAll empties the catalog together with history and favorites, so
// no dangling ids survive.
func (r *Repository) ClearAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoadedLocked(); err != nil {
		return err
	}

	err := multierr.Combine(
		r.writeParts([]Part{}),
		r.writeHistory([]int64{}),
		r.writeFavorites([]int64{}),
	)
	if err != nil {
		return err
	}

	r.parts = nil
	r.history = nil
	r.favorites = nil
	return nil
}

func (r *Repository) path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *Repository) indexLocked(id int64) int {
	return slices.IndexFunc(r.parts, func(p Part) bool { return p.ID == id })
}

func (r *Repository) writeParts(records []Part) error {
	if records == nil {
		records = []Part{}
	}
	if err := jsonfile.Write(r.path(partsFile), records); err != nil {
		return storageErr(err, "persisting parts")
	}
	return nil
}

func (r *Repository) writeHistory(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	if err := jsonfile.Write(r.path(historyFile), ids); err != nil {
		return storageErr(err, "persisting view history")
	}
	return nil
}

func (r *Repository) writeFavorites(ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	if err := jsonfile.Write(r.path(favoritesFile), ids); err != nil {
		return storageErr(err, "persisting favorites")
	}
	return nil
}

func maxID(records []Part) int64 {
	var m int64
	for _, p := range records {
		if p.ID > m {
			m = p.ID
		}
	}
	return m
}

func withoutID(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func keepKnown(ids []int64, known map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if _, ok := known[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func notFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("part %d not found", id))
}

func storageErr(err error, message string) error {
	return pkgerrors.Wrap(pkgerrors.CodeStorageIO, err, message)
}
