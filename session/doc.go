// Package session owns the signed-in identity of the back-office client and its
// durable snapshot.
//
// # Snapshot
//
// The whole session ({user, token}) is serialized as one versioned JSON snapshot and
// written to a [Storage] on every mutation. Storage is the source of truth at
// navigation time: [Manager.Rehydrate] overwrites the in-memory session with whatever
// snapshot is stored, so a login or logout performed by another process sharing the
// same storage is picked up on the next navigation. Last writer wins.
//
// # Failure semantics
//
// Rehydrate never returns an error. An unreadable or corrupt snapshot is treated as
// "no session" (fail closed) and reported through the logger and the corrupt hook.
//
// # What this package must NOT do
//
//   - Talk to the backend or decode tokens.
//   - Evaluate navigation permissions.
//   - Import backoffice, guard, or stores.
package session
