// Package jwt reads identity claims out of bearer tokens issued by the back-office
// backend, and signs tokens for local fakes and development backends.
//
// # Decoding
//
// [Decoder] trusts the backend as issuer: it parses the token payload without
// checking the signature and extracts the subject, display name and role claims.
// Authorization is still enforced server-side on every request carrying the token.
//
// # Signing
//
// [Signer] issues and verifies HS256 or Ed25519 tokens carrying the same claims. The
// client never signs tokens in production; the signer backs the test backend and the
// CLI's offline mode.
//
// # What this package must NOT do
//
//   - Persist tokens or identities.
//   - Make navigation or permission decisions.
package jwt
