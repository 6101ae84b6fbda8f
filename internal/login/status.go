package login

// Status reports what a single action produced.
type Status int

const (
	StatusUnspecified Status = iota
	StatusLoginOK
	StatusMFARequiredOneDevice
	StatusMFARequiredMultipleDevices
	StatusVerifyEmail
	StatusEmailUniqueness
	StatusPasswordResetRequired
	StatusDuplicateAccount
	StatusReactivationRequired
	StatusInvalidCredentials
	StatusValidationFailure
	StatusError

	StatusTooManyAttempts
	StatusAccountInactive
	StatusMFALockout
	StatusInvalidCode
	StatusCodeSent
	StatusRiskRedirect
	// StatusRejected is a structured rejection shown inline outside the
	// credential and code stages.
	StatusRejected
)

var statusNames = map[Status]string{
	StatusUnspecified:                "UNSPECIFIED",
	StatusLoginOK:                    "LOGIN_OK",
	StatusMFARequiredOneDevice:       "MFA_REQUIRED_ONE_DEVICE",
	StatusMFARequiredMultipleDevices: "MFA_REQUIRED_MULTIPLE_DEVICES",
	StatusVerifyEmail:                "VERIFY_EMAIL",
	StatusEmailUniqueness:            "EMAIL_UNIQUENESS",
	StatusPasswordResetRequired:      "PASSWORD_RESET_REQUIRED",
	StatusDuplicateAccount:           "DUPLICATE_ACCOUNT",
	StatusReactivationRequired:       "REACTIVATION_REQUIRED",
	StatusInvalidCredentials:         "INVALID_CREDENTIALS",
	StatusValidationFailure:          "VALIDATION_FAILURE",
	StatusError:                      "ERROR",
	StatusTooManyAttempts:            "TOO_MANY_ATTEMPTS",
	StatusAccountInactive:            "ACCOUNT_INACTIVE",
	StatusMFALockout:                 "MFA_LOCKOUT",
	StatusInvalidCode:                "INVALID_CODE",
	StatusCodeSent:                   "CODE_SENT",
	StatusRiskRedirect:               "RISK_REDIRECT",
	StatusRejected:                   "REJECTED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNSPECIFIED"
}

// MarshalText renders the status keyword, so JSON views carry names.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
