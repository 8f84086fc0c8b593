// Package backendtest is an in-process fake of the back-office REST backend.
//
// It speaks the same envelope format as the real service, issues HS256 tokens
// through [jwt.Signer], and protects every non-public route with
// [middleware.RequireBearer]. Tests drive it through the regular api.Client;
// the development console and the CLI's --dev-backend flag serve it over a
// real listener.
//
// # Test hooks
//
//   - [Backend.Fail] makes one route answer with a fixed failure.
//   - [Backend.Hold] parks a route until released, so overlapping actions can
//     be observed.
//   - [Backend.Requests] lists what the backend received.
//
// # What this package must NOT do
//
//   - Be imported by non-test code outside cmd/ and examples/.
//   - Persist anything beyond the process.
package backendtest
