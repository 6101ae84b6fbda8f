// Package login drives a single member through credential login and the
// step-up checks the ES API may demand before a session is issued: MFA
// device selection and codes, email verification, forced password reset,
// duplicate-account resolution and email uniqueness.
//
// # Stages
//
// A Flow is always in exactly one Stage. Stages are a closed set of types
// (StageCredentials, StageMFA, StageVerifyEmail, ...) and the boolean view
// returned by Flags is derived from the current stage, so two flags can
// never be true at the same time.
//
// # Actions
//
// Every action returns the Status it produced. Local validation failures
// return StatusValidationFailure without calling the ES API. Structured
// rejections either stay in the current stage with an inline message (see
// Snapshot.APIErrors) or move to a dedicated stage (lockout, inactive
// account, risk redirect). Anything else ends the attempt in
// StageUnhandledError until ResetToHome is called.
//
// Errors returned alongside a status describe misuse of the flow, never a
// member-facing outcome: ErrBusy, ErrWrongStage, ErrNoInteraction,
// ErrAbandoned and ErrCanceled. A cancelled context discards the result of
// the action; a deadline does not.
//
// # Concurrency
//
// A Flow is safe for concurrent use. Only one action may be in flight at a
// time; others fail fast with ErrBusy. ResetToHome may be called at any time
// and causes the result of an in-flight action to be discarded.
//
// # Logging
//
// Transitions are logged with the attempt id. Passwords, codes, tokens and
// unmasked contact details are never logged.
package login
