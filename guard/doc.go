// Package guard decides whether a navigation may proceed.
//
// [Guard.Decide] is called before every route transition. It rehydrates the
// session from durable storage, so a sign-in or sign-out made by another view
// over the same storage is honoured, and then applies the permission table:
//
//  1. Authenticated callers asking for a public page go to the default landing page.
//  2. Unauthenticated callers may open public pages and are sent to login otherwise.
//  3. Privileged roles may open anything.
//  4. Other roles may open paths under their allowed prefixes. The root path sends
//     them to their own landing page; anything else sends them to the default landing page.
//
// Decide never fails. A snapshot that cannot be read counts as signed out.
//
// A redirect is itself a navigation. [Navigator] follows redirects back through
// the guard until one proceeds, and gives up on loops.
//
// # What this package must NOT do
//
//   - Call the backend.
//   - Mutate the session other than through rehydration.
package guard
