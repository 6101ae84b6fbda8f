package esapi

import "context"

// Endpoint paths relative to the client base URL.
const (
	PathLogin             = "/login"
	PathSelectDevice      = "/login/selectDevice"
	PathProvideOTP        = "/login/provideOtp"
	PathVerifyEmail       = "/login/verifyEmail"
	PathReactivate        = "/login/reactivate"
	PathVerifyUniqueEmail = "/login/verifyUniqueEmail"
	PathUpdateEmail       = "/login/updateEmail"
	PathResetPassword     = "/login/resetPassword"
	PathDeactivateAccount = "/account/deactivate"
)

// Login submits member credentials and starts an attempt.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathLogin, req)
}

// SelectDevice asks the backend to send a code to the chosen device.
func (c *Client) SelectDevice(ctx context.Context, req SelectDeviceRequest) (*SelectDeviceResponse, error) {
	var resp SelectDeviceResponse
	if err := c.postJSON(ctx, PathSelectDevice, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProvideOTP submits the code received on the selected device.
func (c *Client) ProvideOTP(ctx context.Context, req ProvideOTPRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathProvideOTP, req)
}

// VerifyEmail confirms the member's current email address.
func (c *Client) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathVerifyEmail, req)
}

// Reactivate confirms an email code to reactivate a deactivated login.
func (c *Client) Reactivate(ctx context.Context, req VerifyEmailRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathReactivate, req)
}

// VerifyUniqueEmail confirms a replacement address submitted with UpdateEmail.
func (c *Client) VerifyUniqueEmail(ctx context.Context, req VerifyEmailRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathVerifyUniqueEmail, req)
}

// UpdateEmail submits a new address when the current one is not unique.
func (c *Client) UpdateEmail(ctx context.Context, req UpdateEmailRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathUpdateEmail, req)
}

// ResetPassword completes a forced password reset.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathResetPassword, req)
}

// DeactivateAccount resolves a duplicate account collision.
func (c *Client) DeactivateAccount(ctx context.Context, req DeactivateAccountRequest) (*LoginResponse, error) {
	return c.loginShaped(ctx, PathDeactivateAccount, req)
}

func (c *Client) loginShaped(ctx context.Context, path string, body any) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.postJSON(ctx, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
