package login

import "slices"

// Stage is the single active step of a login attempt. The set of
// implementations is closed.
type Stage interface {
	// Kind is a stable lower_snake name for renderers and logs.
	Kind() string
	stage()
}

// StageCredentials is the entry stage: the member enters username and password.
type StageCredentials struct{}

// StageMFA is the device selection and code entry step.
type StageMFA struct {
	MFAState
}

// StageVerifyEmail waits for an email code.
type StageVerifyEmail struct {
	Variant     EmailVariant
	MaskedEmail string
}

// StageEmailUniqueness asks the member for a replacement email address.
type StageEmailUniqueness struct {
	MaskedEmail string
}

// StagePasswordReset asks for a new password before the attempt can continue.
type StagePasswordReset struct{}

// StageDuplicateAccount asks the member which of several logins to keep.
type StageDuplicateAccount struct {
	Accounts []LinkedAccount
}

// StageBlocked is a dead end: waiting is the only way forward.
type StageBlocked struct {
	Reason BlockedReason
}

// StageMFALockout is reached after too many wrong codes. There is no retry.
type StageMFALockout struct{}

// StageRiskRedirect sends the member out of the flow.
type StageRiskRedirect struct {
	Level       RiskLevel
	RedirectURL string
}

// StageUnhandledError ends the attempt; only ResetToHome leaves it.
type StageUnhandledError struct{}

// StageAuthenticated is terminal success.
type StageAuthenticated struct {
	// SessionToken as issued by the ES API. It may be empty when the
	// backend establishes the session some other way.
	SessionToken string
}

func (StageCredentials) Kind() string { return "credentials" }
func (StageMFA) Kind() string { return "mfa" }
func (StageVerifyEmail) Kind() string { return "verify_email" }
func (StageEmailUniqueness) Kind() string { return "email_uniqueness" }
func (StagePasswordReset) Kind() string { return "password_reset" }
func (StageDuplicateAccount) Kind() string { return "duplicate_account" }
func (StageBlocked) Kind() string { return "blocked" }
func (StageMFALockout) Kind() string { return "mfa_lockout" }
func (StageRiskRedirect) Kind() string { return "risk_redirect" }
func (StageUnhandledError) Kind() string { return "unhandled_error" }
func (StageAuthenticated) Kind() string { return "authenticated" }

func (StageCredentials) stage() {}
func (StageMFA) stage() {}
func (StageVerifyEmail) stage() {}
func (StageEmailUniqueness) stage() {}
func (StagePasswordReset) stage() {}
func (StageDuplicateAccount) stage() {}
func (StageBlocked) stage() {}
func (StageMFALockout) stage() {}
func (StageRiskRedirect) stage() {}
func (StageUnhandledError) stage() {}
func (StageAuthenticated) stage() {}

// EmailVariant selects the endpoint an email code is submitted to.
type EmailVariant string

const (
	EmailStandard     EmailVariant = "standard"
	EmailReactivation EmailVariant = "reactivation"
	EmailUnique       EmailVariant = "unique"
)

type BlockedReason string

const (
	BlockedTooManyAttempts BlockedReason = "too_many_attempts"
	BlockedAccountInactive BlockedReason = "account_inactive"
)

type RiskLevel string

const (
	RiskHigh          RiskLevel = "high"
	RiskIndeterminate RiskLevel = "indeterminate"
)

// LinkedAccount is one of the logins offered on a duplicate account collision.
type LinkedAccount struct {
	Username  string
	LastLogin string
}

// Flags is the boolean view of the current stage. At most one field is true.
type Flags struct {
	LoggedUser                      bool `json:"loggedUser"`
	MFANeeded                       bool `json:"mfaNeeded"`
	VerifyEmail                     bool `json:"verifyEmail"`
	EmailUniqueness                 bool `json:"emailUniqueness"`
	ForcedPasswordReset             bool `json:"forcedPasswordReset"`
	DuplicateAccount                bool `json:"duplicateAccount"`
	MultipleLoginAttempts           bool `json:"multipleLoginAttempts"`
	MultipleMFASecurityCodeAttempts bool `json:"multipleMFASecurityCodeAttempts"`
	UnhandledErrors                 bool `json:"unhandledErrors"`
}

// FlagsFor derives the flags for a stage.
func FlagsFor(s Stage) Flags {
	var f Flags
	switch s.(type) {
	case StageAuthenticated:
		f.LoggedUser = true
	case StageMFA:
		f.MFANeeded = true
	case StageVerifyEmail:
		f.VerifyEmail = true
	case StageEmailUniqueness:
		f.EmailUniqueness = true
	case StagePasswordReset:
		f.ForcedPasswordReset = true
	case StageDuplicateAccount:
		f.DuplicateAccount = true
	case StageBlocked:
		f.MultipleLoginAttempts = true
	case StageMFALockout:
		f.MultipleMFASecurityCodeAttempts = true
	case StageUnhandledError:
		f.UnhandledErrors = true
	}
	return f
}

// cloneStage copies the slices a stage carries so snapshots never alias
// flow state.
func cloneStage(s Stage) Stage {
	switch st := s.(type) {
	case StageMFA:
		return StageMFA{MFAState: st.MFAState.clone()}
	case StageDuplicateAccount:
		return StageDuplicateAccount{Accounts: slices.Clone(st.Accounts)}
	default:
		return s
	}
}
