// Package state holds the snapshot shared between the HUD session and the UI.
//
// # Overview
//
// The session writes to the store whenever something changes: a payload goes
// out, a flag flips, a save finishes. The terminal UI reads a Snapshot on its
// refresh tick and renders it. Neither side waits on the other beyond a
// short lock.
//
// # Architecture
//
//	Writers (session, dispatcher):      Reader (UI):
//	┌──────────────────────┐            ┌──────────────────┐
//	│ Publish()            │            │                  │
//	│ event handlers       │            │                  │
//	│      ↓               │            │                  │
//	│ store.Update(fn)     │───────────→│ store.Snapshot() │
//	│                      │  (mutex)   │      ↓           │
//	│                      │            │  render          │
//	└──────────────────────┘            └──────────────────┘
//
// # Update Semantics
//
// Update takes a function that edits the snapshot in place. Fields the
// function does not touch keep their previous values, so each writer only
// sets what it owns:
//
//	store.Update(func(s *state.Snapshot) {
//		s.Payload = payload
//		s.Sequence = seq
//	})
//
// UpdatedAt is stamped after every call. The function runs under the write
// lock and must not block or call back into the store.
//
// # Snapshots
//
// Snapshot returns the struct by value. Every field is a scalar or a
// string, so the copy is complete and safe to keep.
//
// # Testing Considerations
//
// The zero Store is ready to use and returns a zero Snapshot until the
// first Update.
package state
