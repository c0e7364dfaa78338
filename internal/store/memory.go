// internal/store/memory.go
//
// In-memory session registry for the HTTP adapter.
// Sessions in progress are never written to disk: they are lost when the
// process restarts and destroyed after a period of inactivity.
//
// Characteristics:
//   - Entries keyed by Session.ID in a map guarded by an RWMutex.
//   - Each Entry carries its own mutex; Update holds it for the duration of
//     the callback, so a game.Session is only ever touched by one goroutine.
//   - Sweep removes entries idle longer than a cutoff.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/unscramble/internal/game"
)

var ErrNotFound = errors.New("not found")

// Entry wraps a live session with ownership and bookkeeping.
type Entry struct {
	Session   *game.Session
	UserID    string // set when the owner is signed in
	AnonID    string // guest cookie otherwise
	DailyDate string // YYYY-MM-DD for daily challenges
	StartedAt time.Time
	Recorded  bool // result of the current game already persisted

	mu       sync.Mutex
	lastUsed time.Time
}

// ID is the session identifier.
func (e *Entry) ID() string { return e.Session.ID }

// OwnedBy reports whether the entry belongs to the given user or guest.
func (e *Entry) OwnedBy(userID, anonID string) bool {
	if e.UserID != "" {
		return e.UserID == userID
	}
	return e.AnonID != "" && e.AnonID == anonID
}

// Store defines the session registry.
type Store interface {
	// Save adds or replaces an entry.
	Save(ctx context.Context, e *Entry) error

	// Get retrieves an entry by ID. Callers must not touch e.Session
	// outside Update.
	Get(ctx context.Context, id string) (*Entry, error)

	// Update runs fn with exclusive access to the entry.
	Update(ctx context.Context, id string, fn func(*Entry) error) error

	// Delete destroys an entry.
	Delete(ctx context.Context, id string) error

	// Sweep destroys entries idle for longer than maxIdle and reports how many.
	Sweep(ctx context.Context, maxIdle time.Duration) int
}

type memory struct {
	mu      sync.RWMutex      // guards entries map
	entries map[string]*Entry // keyed by Session.ID
	now     func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{entries: make(map[string]*Entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, e *Entry) error {
	if e == nil || e.Session == nil {
		return errors.New("store: nil session")
	}
	e.mu.Lock()
	e.lastUsed = m.now()
	if e.StartedAt.IsZero() {
		e.StartedAt = e.lastUsed
	}
	e.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID()] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*Entry) error) error {
	e, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = m.now()
	return fn(e)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.entries {
		e.mu.Lock()
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(m.entries, id)
			n++
		}
	}
	return n
}
