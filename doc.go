// Package threadly is a Go client for the Threadly discussion platform. It
// owns the client-side session lifecycle and the optimistic mutation protocol
// that the UI layers build on.
//
// Session lifecycle:
//   - SessionManager holds the current token and identity, persists both
//     through a CredentialStore, and walks an explicit state machine
//     (anonymous, authenticating, authenticated, expired). Tokens are decoded,
//     never verified; signature checks are the backend's job and the decoded
//     claims must not be used for authorization decisions.
//   - Expiry is scheduled from the token's exp claim. Firing clears the
//     stored credentials and asks the Navigator to send the user back to the
//     login entry point. A 401 from any endpoint forces the same teardown
//     regardless of the timer.
//
// Optimistic mutations:
//   - MutationController applies a local change immediately, issues the
//     backing request, and restores the pre-mutation snapshot when the request
//     fails. A second trigger on a target with a request in flight is dropped,
//     not queued. Voter and Follower are the two instantiations.
//
// Activity sinks:
//   - ActivitySink is a best-effort audit emitter for login, logout, external
//     login, and expiry events. Sink errors are logged, never propagated, so a
//     sink can forward to telemetry without blocking authentication.
package threadly
