// Package notify delivers user-facing notices about the outcome of actions.
//
// Every mutating store action reports a success or failure [Notice]. A notice is
// the headless form of a toast: a level, the operation that produced it, and a
// message fit to show a person.
//
// # Components
//
//   - [Sink]: consumer interface (no-op, channel, JSON lines, slog).
//   - [Dispatcher]: async relay. Failures queue apart from successes and go
//     first; repeats of the previous notice inside a window are merged; a full
//     queue either drops or blocks. [Stats] counts each outcome.
//   - [Notice]: the record itself.
//
// # What this package must NOT do
//
//   - Decide which notices to emit. Stores own that.
//   - Import sibling packages of this module.
//   - Perform I/O beyond what a caller-supplied Sink does.
package notify
