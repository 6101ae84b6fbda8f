package login_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/stretchr/testify/require"
)

var errUnexpectedCall = errors.New("unexpected call")

// fakeAPI scripts ES responses per endpoint and records the call order.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	login         func(esapi.LoginRequest) (*esapi.LoginResponse, error)
	selectDevice  func(esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error)
	provideOTP    func(esapi.ProvideOTPRequest) (*esapi.LoginResponse, error)
	verifyEmail   func(esapi.VerifyEmailRequest) (*esapi.LoginResponse, error)
	reactivate    func(esapi.VerifyEmailRequest) (*esapi.LoginResponse, error)
	verifyUnique  func(esapi.VerifyEmailRequest) (*esapi.LoginResponse, error)
	updateEmail   func(esapi.UpdateEmailRequest) (*esapi.LoginResponse, error)
	resetPassword func(esapi.ResetPasswordRequest) (*esapi.LoginResponse, error)
	deactivate    func(esapi.DeactivateAccountRequest) (*esapi.LoginResponse, error)
}

func (a *fakeAPI) record(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, name)
}

func (a *fakeAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func call[Req, Resp any](a *fakeAPI, name string, fn func(Req) (*Resp, error), req Req) (*Resp, error) {
	a.record(name)
	if fn == nil {
		return nil, errUnexpectedCall
	}
	return fn(req)
}

func (a *fakeAPI) Login(_ context.Context, r esapi.LoginRequest) (*esapi.LoginResponse, error) {
	return call(a, "login", a.login, r)
}

func (a *fakeAPI) SelectDevice(_ context.Context, r esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
	return call(a, "selectDevice", a.selectDevice, r)
}

func (a *fakeAPI) ProvideOTP(_ context.Context, r esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
	return call(a, "provideOtp", a.provideOTP, r)
}

func (a *fakeAPI) VerifyEmail(_ context.Context, r esapi.VerifyEmailRequest) (*esapi.LoginResponse, error) {
	return call(a, "verifyEmail", a.verifyEmail, r)
}

func (a *fakeAPI) Reactivate(_ context.Context, r esapi.VerifyEmailRequest) (*esapi.LoginResponse, error) {
	return call(a, "reactivate", a.reactivate, r)
}

func (a *fakeAPI) VerifyUniqueEmail(_ context.Context, r esapi.VerifyEmailRequest) (*esapi.LoginResponse, error) {
	return call(a, "verifyUniqueEmail", a.verifyUnique, r)
}

func (a *fakeAPI) UpdateEmail(_ context.Context, r esapi.UpdateEmailRequest) (*esapi.LoginResponse, error) {
	return call(a, "updateEmail", a.updateEmail, r)
}

func (a *fakeAPI) ResetPassword(_ context.Context, r esapi.ResetPasswordRequest) (*esapi.LoginResponse, error) {
	return call(a, "resetPassword", a.resetPassword, r)
}

func (a *fakeAPI) DeactivateAccount(_ context.Context, r esapi.DeactivateAccountRequest) (*esapi.LoginResponse, error) {
	return call(a, "deactivate", a.deactivate, r)
}

var testConfig = login.Config{
	PolicyID:             "policy-1",
	AppID:                "member-portal",
	HighRiskURL:          "https://example.test/high-risk",
	IndeterminateRiskURL: "https://example.test/verify-identity",
}

func newFlow(api login.API) *login.Flow {
	return login.New(api, testConfig)
}

func reply(message string, devices ...esapi.Device) *esapi.LoginResponse {
	return &esapi.LoginResponse{
		Message:          message,
		InteractionID:    "i1",
		InteractionToken: "t1",
		UserToken:        "u1",
		MFADeviceList:    devices,
	}
}

func replyWith(resp *esapi.LoginResponse) func(esapi.LoginRequest) (*esapi.LoginResponse, error) {
	return func(esapi.LoginRequest) (*esapi.LoginResponse, error) { return resp, nil }
}

func rejectWith[Req any](code string) func(Req) (*esapi.LoginResponse, error) {
	return func(Req) (*esapi.LoginResponse, error) {
		return nil, esapi.NewAPIError(http.StatusBadRequest, code, "")
	}
}

var (
	smsDevice   = esapi.Device{DeviceID: "d1", DeviceType: "SMS", Phone: "5551234567"}
	emailDevice = esapi.Device{DeviceID: "d2", DeviceType: "EMAIL", Email: "jane.doe@example.com"}
	totpDevice  = esapi.Device{DeviceID: "d3", DeviceType: "TOTP", Name: "Pixel"}
)

func sendOK(esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
	return &esapi.SelectDeviceResponse{InteractionID: "i2", InteractionToken: "t2"}, nil
}

// requireExclusive checks that at most one stage flag is set.
func requireExclusive(t *testing.T, f *login.Flow) {
	t.Helper()
	fl := f.Flags()
	set := 0
	for _, b := range []bool{
		fl.LoggedUser, fl.MFANeeded, fl.VerifyEmail, fl.EmailUniqueness, fl.ForcedPasswordReset,
		fl.DuplicateAccount, fl.MultipleLoginAttempts, fl.MultipleMFASecurityCodeAttempts, fl.UnhandledErrors,
	} {
		if b {
			set++
		}
	}
	require.LessOrEqual(t, set, 1, "flags %+v", fl)
}

func mustLogin(t *testing.T, f *login.Flow) login.Status {
	t.Helper()
	status, err := f.Login(context.Background(), "member01", "hunter2", login.DeviceFingerprint{IPAddress: "203.0.113.7"})
	require.NoError(t, err)
	requireExclusive(t, f)
	return status
}

func mfaState(t *testing.T, f *login.Flow) login.MFAState {
	t.Helper()
	m, ok := f.Snapshot().MFA()
	require.True(t, ok, "flow should be in the mfa stage, got %s", f.Snapshot().Stage.Kind())
	return m
}
