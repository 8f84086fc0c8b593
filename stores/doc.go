// Package stores holds the client-side proxies for backend resources.
//
// Every store follows one convention: an action serializes its request, attaches
// the bearer credential held by the shared session.Manager, calls one endpoint,
// and keeps the decoded response for later reads. Mutating actions report their
// outcome as a notify.Notice.
//
// A store runs one action at a time. A second action started while the first is
// still waiting on the backend fails fast with [ErrActionInProgress], which is the
// headless form of disabling a button while a request is outstanding.
//
// Every action returns an error; nil means success. The message of the last
// failure is also kept in [State.LastError] for views that poll state.
//
// # What this package must NOT do
//
//   - Retry requests or cache beyond the last response of each action.
//   - Orchestrate across stores.
//   - Read session storage directly. All session access goes through session.Manager.
package stores
