package login

import (
	"errors"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

// Messages maps ES error codes to the text shown next to the field.
// Codes missing from this table end the attempt as an unhandled error.
var Messages = map[string]string{
	esapi.CodeInvalidRequest:     "Please check the details you entered and try again.",
	esapi.CodeInvalidCredentials: "The username or password you entered is incorrect.",
	esapi.CodeAccountNotFound:    "We couldn't find an account with those details.",
	esapi.CodeInvalidOTP:         "That code is incorrect. Check it and try again.",
	esapi.CodeOTPExpired:         "That code has expired. Request a new one.",
	esapi.CodeDeviceUnavailable:  "We couldn't send a code to that device. Try a different method.",
	esapi.CodeEmailInUse:         "That email address is already in use.",
	esapi.CodeInvalidEmail:       "Enter a valid email address.",
	esapi.CodePasswordPolicy:     "Your new password doesn't meet the password requirements.",
	esapi.CodePasswordReused:     "You can't reuse a recent password.",
	esapi.CodeIdentityMismatch:   "The details you entered don't match our records.",
}

var (
	lockoutCodes  = codeSet(esapi.CodeTooManyAttempts, esapi.CodeAccountLocked)
	inactiveCodes = codeSet(esapi.CodeAccountInactive)
	otpLimitCodes = codeSet(esapi.CodeOTPLimitReached)
	riskCodes     = map[string]RiskLevel{
		esapi.CodeHighRisk:          RiskHigh,
		esapi.CodeIndeterminateRisk: RiskIndeterminate,
	}
)

func codeSet(codes ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// InlineError is a recoverable rejection shown next to the current stage.
type InlineError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorClass int

const (
	classUnhandled errorClass = iota
	classInline
	classLockout
	classInactive
	classOTPLimit
	classRisk
)

// classify sorts a failed ES call. Anything that is not an *esapi.APIError
// (transport, decoding, context) is unhandled.
func classify(err error) (errorClass, *esapi.APIError) {
	var apiErr *esapi.APIError
	if !errors.As(err, &apiErr) {
		return classUnhandled, nil
	}

	code := apiErr.Code
	if _, ok := lockoutCodes[code]; ok {
		return classLockout, apiErr
	}
	if _, ok := inactiveCodes[code]; ok {
		return classInactive, apiErr
	}
	if _, ok := otpLimitCodes[code]; ok {
		return classOTPLimit, apiErr
	}
	if _, ok := riskCodes[code]; ok {
		return classRisk, apiErr
	}
	if _, ok := Messages[code]; ok {
		return classInline, apiErr
	}
	return classUnhandled, apiErr
}
