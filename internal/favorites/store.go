package favorites

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/storage"
)

// DefaultKey is the storage slot holding the favorites array.
const DefaultKey = "favorites"

// LoadStatus classifies the outcome of [Store.Load].
type LoadStatus int

const (
	LoadOK                 LoadStatus = iota // durable value read (or absent)
	LoadCorruptData                          // value was not an array; slot cleared
	LoadStorageUnavailable                   // storage could not be read; store is memory-only
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadCorruptData:
		return "corrupt data"
	case LoadStorageUnavailable:
		return "storage unavailable"
	default:
		return "unknown"
	}
}

// LoadResult reports what [Store.Load] found. Load never fails; anomalies are described here.
type LoadResult struct {
	Status    LoadStatus
	Favorites []int
	Dropped   int   // Dropped counts entries filtered out of an otherwise valid array
	Err       error // Err is the underlying cause for non-OK statuses
}

// Store is one context's favorites set.
type Store struct {
	storage storage.Storage
	key     string
	logger  *log.Logger

	mu         sync.RWMutex
	ids        []int
	memoryOnly bool
	unwatch    func()

	subMu   sync.Mutex
	subs    map[int]func([]int)
	nextSub int
}

// Option configures a [Store].
type Option func(*Store)

// WithKey overrides the storage slot (default [DefaultKey]).
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger for load anomalies.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store on st. Call [Store.Load] before use.
func New(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		key:     DefaultKey,
		subs:    make(map[int]func([]int)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	return s
}

// Load reads the durable value and starts listening for changes made by other contexts.
//
// An absent slot yields an empty set. A corrupt value is removed from storage and the set
// starts empty. When storage cannot be read the store keeps working in memory only.
func (s *Store) Load(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Watch before reading: a write landing between the read and the registration would be lost.
	// Changes delivered meanwhile wait on s.mu and are applied after the loaded value.
	if s.unwatch == nil {
		s.unwatch = s.storage.Watch(s.handleChange)
	}
	result := s.load(ctx)
	s.ids = result.Favorites

	result.Favorites = slices.Clone(s.ids)
	return result
}

func (s *Store) load(ctx context.Context) LoadResult {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.memoryOnly = true
		s.logger.Warn("favorites storage unavailable, changes will not persist", "key", s.key, "error", err)
		return LoadResult{Status: LoadStorageUnavailable, Favorites: []int{}, Err: err}
	}
	s.memoryOnly = false
	if !ok {
		return LoadResult{Status: LoadOK, Favorites: []int{}}
	}

	ids, dropped, err := Parse(raw)
	if err != nil {
		s.logger.Error("discarding corrupt favorites", "key", s.key, "error", err)
		if rmErr := s.storage.Remove(ctx, s.key); rmErr != nil {
			s.logger.Error("failed to clear corrupt favorites", "key", s.key, "error", rmErr)
		}
		return LoadResult{Status: LoadCorruptData, Favorites: []int{}, Err: err}
	}
	if dropped > 0 {
		s.logger.Warn("dropped invalid favorite entries", "key", s.key, "dropped", dropped)
	}
	return LoadResult{Status: LoadOK, Favorites: ids, Dropped: dropped}
}

// Favorites returns a copy of the current set in insertion order.
func (s *Store) Favorites() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// IsFavorite reports whether id is in the set.
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// MemoryOnly reports whether the last load found storage unavailable.
func (s *Store) MemoryOnly() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryOnly
}

// Key returns the storage slot this store mirrors.
func (s *Store) Key() string { return s.key }

// Toggle removes id when present and appends it otherwise, returning whether id is now a favorite.
//
// The durable slot is written before memory changes. If the write fails the error is returned
// and the set is left as it was.
func (s *Store) Toggle(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, favorited := toggled(s.ids, id)
	if !s.memoryOnly {
		if err := s.storage.Set(ctx, s.key, Encode(next)); err != nil {
			return slices.Contains(s.ids, id), fmt.Errorf("failed to save favorites: %w", err)
		}
	}
	s.ids = next
	return favorited, nil
}

func toggled(ids []int, id int) ([]int, bool) {
	if i := slices.Index(ids, id); i >= 0 {
		next := make([]int, 0, len(ids)-1)
		next = append(next, ids[:i]...)
		return append(next, ids[i+1:]...), false
	}
	next := make([]int, len(ids), len(ids)+1)
	copy(next, ids)
	return append(next, id), true
}

// OnExternalChange registers fn to receive the new set whenever another context changes the
// durable slot. fn runs on a notification goroutine. The returned function unsubscribes.
func (s *Store) OnExternalChange(fn func([]int)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close stops listening for external changes. The durable slot is left intact.
func (s *Store) Close() {
	s.mu.Lock()
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
	s.mu.Unlock()

	s.subMu.Lock()
	clear(s.subs)
	s.subMu.Unlock()
}

func (s *Store) handleChange(c storage.Change) {
	if c.Key != s.key {
		return
	}

	s.mu.Lock()
	switch {
	case !c.Present:
		s.ids = []int{}
	default:
		ids, dropped, err := Parse(c.Value)
		if err != nil {
			s.logger.Error("discarding corrupt external favorites", "key", s.key, "origin", c.Origin, "error", err)
			s.ids = []int{}
			if !s.memoryOnly {
				if rmErr := s.storage.Remove(context.Background(), s.key); rmErr != nil {
					s.logger.Error("failed to clear corrupt favorites", "key", s.key, "error", rmErr)
				}
			}
			break
		}
		if dropped > 0 {
			s.logger.Warn("dropped invalid favorite entries", "key", s.key, "dropped", dropped)
		}
		s.ids = ids
	}
	snapshot := slices.Clone(s.ids)
	s.mu.Unlock()

	s.subMu.Lock()
	fns := make([]func([]int), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(slices.Clone(snapshot))
	}
}
