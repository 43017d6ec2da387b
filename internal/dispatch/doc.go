// Package dispatch turns a storm of "state changed" signals into a bounded,
// throttled, single-flight stream of publish calls.
//
// # Overview
//
// Producers (event handlers, a heartbeat, menu transitions) call RequestUpdate
// from any goroutine. The call only flips a flag under a short mutex and
// returns. A periodic driver calls Tick, which drains the pending flags and
// invokes Host.Publish at most once at a time.
//
//	producers                         driver
//	┌──────────────────────┐          ┌──────────────────────┐
//	│ RequestUpdate(false) │──┐       │ Tick(now)            │
//	│ RequestUpdate(true)  │──┼──────→│  promote due recheck │
//	│ ScheduleRecheckAfter │──┘ flags │  Drain()             │
//	└──────────────────────┘          │   └─> Host.Publish   │
//	                                  └──────────────────────┘
//
// # Coalescing
//
// While a publish is in flight, any number of requests collapse into two
// booleans: pendingForced and pendingThrottled. A forced request is never
// folded into a throttled one; the next loop iteration sees force=true.
//
// # Throttling
//
// Forced requests always proceed. Throttled requests proceed only when the
// Policy interval has elapsed since the last publish; otherwise they are
// dropped, because the next periodic signal regenerates them. AdaptivePolicy
// picks the interval from Host.Urgent (100ms urgent, 500ms idle by default).
//
// # Single flight
//
// The publish loop is guarded by an atomic flag. A Tick that loses the
// race returns immediately; ticks are never queued. After the loop finds
// nothing pending it clears the flag and checks once more, so a request that
// arrives during the final Publish is not left waiting for the next trigger.
//
// # Deferred rechecks
//
// ScheduleRecheckAfter keeps a single deadline. An earlier deadline replaces a
// later one, never the reverse. Tick promotes the deadline into a forced
// request once it has passed. There is no self-rescheduling task; the driver
// is the only thing that fires rechecks.
//
// # Sessions
//
// SetEnabled(false) drops pending flags and the scheduled recheck and makes
// the dispatcher ignore new requests. SetEnabled(true) does not publish; the
// host issues RequestUpdate(true) when it wants an initial sync.
//
// # Failure semantics
//
// Publish errors are logged at debug level and counted; nothing is retried.
// A panic inside Publish is recovered and counted so the in-flight flag is
// always released.
//
// # Testing
//
// Time comes from a github.com/benbjohnson/clock Clock. Tests inject
// clock.NewMock() and call Tick directly instead of running the driver.
package dispatch
