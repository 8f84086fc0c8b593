// Package api is the JSON transport to the back-office REST backend.
//
// Every response is wrapped in an [Envelope]. [Client.Do] attaches the bearer
// credential of the current session, decodes the envelope, and classifies failures:
//
//   - transport failures (connection refused, timeouts) wrap [ErrTransport];
//   - bodies that are not valid JSON wrap [ErrDecode];
//   - non-2xx responses, and 2xx responses whose envelope status is not 2xx, are
//     returned as [*StatusError], which unwraps to [ErrBusiness].
//
// Nothing is retried.
package api
