// Package auth implements credential and session authentication: password
// signin gated by mandatory email verification and an optional emailed
// two-factor code, signup, and password reset.
//
// Token lifecycle:
//   - Three single-use token kinds (verification, two-factor, password reset)
//     share one TokenManager. Issuing a token supersedes any live token of
//     the same kind for that email; expiry is checked at read time and
//     consumption deletes the row before the dependent state change counts
//     as complete.
//
// Signin state machine:
//   - CredentialVerifier evaluates lookup, password, email verification, and
//     the two-factor gate strictly in order. Each rejection carries a text
//     code (CREDENTIALS_INVALID, CONFIRM_EMAIL, 2FA_REQUIRED, ...) so the
//     outer layer can render precise UX without leaking account existence.
//
// Notifications:
//   - Emails are dispatched best-effort through a NotificationSink. The
//     Dispatcher decouples delivery from the request path; failures are
//     logged and never abort the primary operation.
package auth
