// Package durable persists small named documents so that readers never see a
// partially written file and a failed write never destroys the previous one.
//
// # Overview
//
// A Store owns one directory and a fixed set of logical document names, each
// mapped to a file name in that directory. Content is an opaque byte slice
// up to MaxBytes (256 KiB by default); the store never parses it.
//
// # Files
//
// For a document stored at <dir>/<file>:
//
//   - <dir>/<file>       final content, only ever replaced by rename
//   - <dir>/<file>.tmp   new content being written
//   - <dir>/<file>.bak   previous content while a fallback swap is in progress
//
// # Save
//
//  1. Reject data over the size cap before touching disk.
//  2. MkdirAll the directory.
//  3. Write the temp file, flush and sync it. On failure the temp file is
//     left for diagnosis and the final file is untouched.
//  4. Replace the final file (see below).
//
// # Atomic replace
//
// A direct rename of temp over final is tried first. If the platform refuses
// it, the current final file is renamed to .bak (after removing a stale
// .bak), temp is renamed to final, and .bak is removed. If that second rename
// fails the backup is renamed back and temp is deleted. Failures during the
// swap are logged at error level because the document may be in an
// ambiguous state; the caller still gets a definite error.
//
// # SaveAsync
//
// SaveAsync checks the size cap synchronously, copies the data into a
// per-document pending slot and wakes a single background goroutine that is
// started on first use. If another SaveAsync for the same document lands
// before the goroutine drains the slot, the earlier data is replaced: the
// last write submitted before a drain wins. Close stops the goroutine only
// after it has drained every slot.
//
// # Load
//
// Load returns (data, true) only when the final file exists, is a non-empty
// regular file within the size cap, and reads back with exactly the size
// reported by Stat. Missing, empty, oversized and unreadable documents all
// report false; the reason is logged.
//
// # Concurrency
//
// Save may be called concurrently for different documents. Concurrent Save
// calls for the same document must be serialized by the caller, or routed
// through SaveAsync, which serializes through the single writer goroutine.
//
// # Testing
//
// All filesystem access goes through the FS interface. OSFS is the default;
// tests wrap it to fail individual renames or block writes.
package durable
