// Package backoffice is the client core of the back-office console: session
// state, navigation guarding and the resource stores that talk to the REST
// backend.
//
// Callers construct a [Client] through [Builder.Build]. The client owns one
// [session.Manager] shared by the guard and every store, so a sign-in through
// [Client.Auth] is immediately visible to [Client.Navigator].
//
// # Architecture boundaries
//
// The root package only wires. Session persistence lives in session/, the
// navigation rules in guard/ and permission/, HTTP in api/, and each backend
// resource in stores/. None of those import this package.
//
// # What this package must NOT do
//
//   - Hold session state of its own.
//   - Make navigation decisions outside guard.Guard.
//   - Swallow errors returned by stores.
package backoffice
