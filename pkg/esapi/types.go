package esapi

// ============================================================================
// Login Types
// ============================================================================

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	PolicyID      string `json:"policyId"`
	AppID         string `json:"appId"`
	IPAddress     string `json:"ipAddress,omitempty"`
	UserAgent     string `json:"userAgent,omitempty"`
	DeviceProfile string `json:"deviceProfile,omitempty"`
}

// LoginResponse is the shape shared by every call that can advance an attempt
// (/login, /login/provideOtp, /login/verifyEmail and friends).
type LoginResponse struct {
	// Message is the raw status keyword, see Outcome
	Message string `json:"message"`

	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`

	// UserToken identifies the member within the attempt; echoed on device selection and OTP calls
	UserToken string `json:"userToken,omitempty"`

	// SessionToken is only present once the attempt is complete
	SessionToken string `json:"sessionToken,omitempty"`

	// MFADeviceList holds the second-factor devices when MFA is required
	MFADeviceList []Device `json:"mfaDeviceList,omitempty"`

	// Email is the address a verification code was sent to (unmasked)
	Email string `json:"email,omitempty"`

	// Accounts lists the colliding logins on DUPLICATE_ACCOUNT
	Accounts []LinkedAccount `json:"accounts,omitempty"`
}

// Outcome decodes the response status keyword.
func (r *LoginResponse) Outcome() Outcome {
	return ParseOutcome(r.Message)
}

// Device is a second-factor device as the ES API describes it.
// Phone and Email are raw values; callers mask them before display.
type Device struct {
	DeviceID   string `json:"deviceId"`
	DeviceType string `json:"deviceType"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
}

// LinkedAccount is one of several logins that belong to the same member.
type LinkedAccount struct {
	Username  string `json:"username"`
	LastLogin string `json:"lastLogin,omitempty"` // RFC3339
}

// ============================================================================
// Step Types
// ============================================================================

// SelectDeviceRequest asks the ES API to send a code to a device.
type SelectDeviceRequest struct {
	DeviceID         string `json:"deviceId"`
	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`
	UserToken        string `json:"userToken"`
}

// SelectDeviceResponse carries the refreshed interaction context.
type SelectDeviceResponse struct {
	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`
}

// ProvideOTPRequest submits a device code.
type ProvideOTPRequest struct {
	OTP              string `json:"otp"`
	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`
	UserToken        string `json:"userToken"`
}

// VerifyEmailRequest submits an email code. The same body is used for
// standard verification, reactivation and unique-email confirmation.
type VerifyEmailRequest struct {
	EmailOTP         string `json:"emailOtp"`
	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`
	Username         string `json:"username"`
	PolicyID         string `json:"policyId"`
	AppID            string `json:"appId"`
}

// UpdateEmailRequest replaces a non-unique email address.
type UpdateEmailRequest struct {
	Email            string `json:"email"`
	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`
	Username         string `json:"username"`
}

// ResetPasswordRequest sets the new password on a forced reset.
type ResetPasswordRequest struct {
	NewPassword      string `json:"newPassword"`
	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`
	Username         string `json:"username"`
}

// DeactivateAccountRequest resolves a duplicate account collision by keeping
// one login and deactivating the others.
type DeactivateAccountRequest struct {
	KeepUsername     string `json:"keepUsername"`
	DateOfBirth      string `json:"dateOfBirth"` // YYYY-MM-DD
	InteractionID    string `json:"interactionId"`
	InteractionToken string `json:"interactionToken"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`
}
