package esapi

import "strings"

// Outcome is the decoded form of the status keyword the ES API returns in
// the "message" field of every login-shaped response.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeCompleted
	OutcomeMFADisabled
	OutcomeOTPRequired
	OutcomeDeviceSelectionRequired
	OutcomeEmailVerificationRequired
	OutcomeEmailUniqueness
	OutcomePasswordResetRequired
	OutcomeDuplicateAccount
	OutcomeReactivationRequired
)

// Status keywords as they appear on the wire.
const (
	MessageCompleted                 = "COMPLETED"
	MessageMFADisabled               = "MFA_Disabled"
	MessageOTPRequired               = "OTP_REQUIRED"
	MessageDeviceSelectionRequired   = "DEVICE_SELECTION_REQUIRED"
	MessageEmailVerificationRequired = "EMAIL_VERIFICATION_REQUIRED"
	MessageEmailUniqueness           = "EMAIL_UNIQUENESS"
	MessagePasswordResetRequired     = "PASSWORD_RESET_REQUIRED"
	MessageDuplicateAccount          = "DUPLICATE_ACCOUNT"
	MessageReactivationRequired      = "REACTIVATION_REQUIRED"
)

var outcomeByMessage = map[string]Outcome{
	strings.ToUpper(MessageCompleted):                 OutcomeCompleted,
	strings.ToUpper(MessageMFADisabled):               OutcomeMFADisabled,
	strings.ToUpper(MessageOTPRequired):               OutcomeOTPRequired,
	strings.ToUpper(MessageDeviceSelectionRequired):   OutcomeDeviceSelectionRequired,
	strings.ToUpper(MessageEmailVerificationRequired): OutcomeEmailVerificationRequired,
	strings.ToUpper(MessageEmailUniqueness):           OutcomeEmailUniqueness,
	strings.ToUpper(MessagePasswordResetRequired):     OutcomePasswordResetRequired,
	strings.ToUpper(MessageDuplicateAccount):          OutcomeDuplicateAccount,
	strings.ToUpper(MessageReactivationRequired):      OutcomeReactivationRequired,
}

// ParseOutcome decodes a status keyword. Matching is case-insensitive
// because the backend is not consistent about it ("MFA_Disabled").
func ParseOutcome(message string) Outcome {
	if o, ok := outcomeByMessage[strings.ToUpper(strings.TrimSpace(message))]; ok {
		return o
	}
	return OutcomeUnknown
}

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return MessageCompleted
	case OutcomeMFADisabled:
		return MessageMFADisabled
	case OutcomeOTPRequired:
		return MessageOTPRequired
	case OutcomeDeviceSelectionRequired:
		return MessageDeviceSelectionRequired
	case OutcomeEmailVerificationRequired:
		return MessageEmailVerificationRequired
	case OutcomeEmailUniqueness:
		return MessageEmailUniqueness
	case OutcomePasswordResetRequired:
		return MessagePasswordResetRequired
	case OutcomeDuplicateAccount:
		return MessageDuplicateAccount
	case OutcomeReactivationRequired:
		return MessageReactivationRequired
	default:
		return "UNKNOWN"
	}
}
