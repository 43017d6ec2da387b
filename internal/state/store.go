package state

import (
	"sync"
	"time"
)

// StorageResult records the outcome of the latest settings or preset
// operation so the UI can report it.
type StorageResult struct {
	Op  string // "save", "queue", "export", "import", "load"
	OK  bool
	Err string
	At  time.Time
}

// Snapshot is the host's view of the HUD session.
type Snapshot struct {
	// Session flags.
	ViewReady bool
	Loaded    bool
	Visible   bool
	InCombat  bool
	Paused    bool
	MenuOpen  bool
	Enabled   bool

	// Latest delivered payload and when it went out.
	Payload     string
	Sequence    uint64
	PublishedAt time.Time
	LastForced  bool

	// Counters mirrored from the dispatcher.
	Publishes uint64
	Forced    uint64
	Throttled uint64
	Failures  uint64

	Settings string
	Theme    string

	LastError   string
	LastStorage StorageResult
	UpdatedAt   time.Time
}

// Store guards a Snapshot shared between the session and the UI.
// The zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update applies fn to the stored snapshot under the write lock. fn must
// not call back into the Store.
func (s *Store) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.snapshot)
	s.snapshot.UpdatedAt = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}
