// Package middleware adapts the navigation guard and bearer verification to net/http.
//
// # Handlers
//
//   - [Navigation]: runs every page request through guard.Guard.Decide and
//     answers redirects with 302 Found.
//   - [RequireBearer]: rejects requests without a verifiable bearer token and
//     injects the token's identity into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into guard decisions and verifier calls.
// It does NOT decide access itself; every verdict comes from the guard or the
// supplied verifier.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly.
//   - Touch session storage except through the guard.
package middleware
