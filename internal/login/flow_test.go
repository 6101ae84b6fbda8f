package login_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/stretchr/testify/require"
)

func TestLogin_LocalValidation(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	f := newFlow(api)

	for _, tc := range []struct{ user, pass string }{{"", "p"}, {"u", ""}, {"   ", "p"}} {
		status, err := f.Login(context.Background(), tc.user, tc.pass, login.DeviceFingerprint{})
		require.NoError(t, err)
		require.Equal(t, login.StatusValidationFailure, status)
	}
	require.Empty(t, api.Calls(), "validation failures must not reach the ES API")
	require.IsType(t, login.StageCredentials{}, f.Snapshot().Stage)
}

func TestLogin_RequestCarriesConfigAndFingerprint(t *testing.T) {
	t.Parallel()

	var got esapi.LoginRequest
	api := &fakeAPI{login: func(r esapi.LoginRequest) (*esapi.LoginResponse, error) {
		got = r
		return reply(esapi.MessageCompleted), nil
	}}
	f := newFlow(api)

	status, err := f.Login(context.Background(), " member01 ", "hunter2", login.DeviceFingerprint{
		IPAddress: "203.0.113.7", UserAgent: "test-agent", Profile: "fp-blob",
	})
	require.NoError(t, err)
	require.Equal(t, login.StatusLoginOK, status)
	require.Equal(t, esapi.LoginRequest{
		Username: "member01", Password: "hunter2",
		PolicyID: "policy-1", AppID: "member-portal",
		IPAddress: "203.0.113.7", UserAgent: "test-agent", DeviceProfile: "fp-blob",
	}, got)
}

func TestLogin_Outcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   *esapi.LoginResponse
		status login.Status
		kind   string
	}{
		{"completed", reply(esapi.MessageCompleted), login.StatusLoginOK, "authenticated"},
		{"mfa disabled", reply("MFA_Disabled"), login.StatusLoginOK, "authenticated"},
		{"otp required without devices", reply(esapi.MessageOTPRequired), login.StatusLoginOK, "authenticated"},
		{"email verification", &esapi.LoginResponse{Message: esapi.MessageEmailVerificationRequired, InteractionID: "i1", InteractionToken: "t1", Email: "jane@example.com"}, login.StatusVerifyEmail, "verify_email"},
		{"reactivation", reply(esapi.MessageReactivationRequired), login.StatusReactivationRequired, "verify_email"},
		{"email uniqueness", reply(esapi.MessageEmailUniqueness), login.StatusEmailUniqueness, "email_uniqueness"},
		{"password reset", reply(esapi.MessagePasswordResetRequired), login.StatusPasswordResetRequired, "password_reset"},
		{"duplicate account", reply(esapi.MessageDuplicateAccount), login.StatusDuplicateAccount, "duplicate_account"},
		{"unknown keyword", reply("SOMETHING_NEW"), login.StatusError, "unhandled_error"},
		{"follow-up without interaction", &esapi.LoginResponse{Message: esapi.MessagePasswordResetRequired}, login.StatusError, "unhandled_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFlow(&fakeAPI{login: replyWith(tt.resp)})
			require.Equal(t, tt.status, mustLogin(t, f))
			require.Equal(t, tt.kind, f.Snapshot().Stage.Kind())
		})
	}
}

func TestLogin_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		status    login.Status
		stage     login.Stage
		apiErrors int
	}{
		{"invalid credentials", esapi.NewAPIError(401, esapi.CodeInvalidCredentials, ""), login.StatusInvalidCredentials, login.StageCredentials{}, 1},
		{"too many attempts", esapi.NewAPIError(429, esapi.CodeTooManyAttempts, ""), login.StatusTooManyAttempts, login.StageBlocked{Reason: login.BlockedTooManyAttempts}, 0},
		{"account locked", esapi.NewAPIError(423, esapi.CodeAccountLocked, ""), login.StatusTooManyAttempts, login.StageBlocked{Reason: login.BlockedTooManyAttempts}, 0},
		{"inactive", esapi.NewAPIError(403, esapi.CodeAccountInactive, ""), login.StatusAccountInactive, login.StageBlocked{Reason: login.BlockedAccountInactive}, 0},
		{"high risk", esapi.NewAPIError(403, esapi.CodeHighRisk, ""), login.StatusRiskRedirect, login.StageRiskRedirect{Level: login.RiskHigh, RedirectURL: testConfig.HighRiskURL}, 0},
		{"indeterminate risk", esapi.NewAPIError(403, esapi.CodeIndeterminateRisk, ""), login.StatusRiskRedirect, login.StageRiskRedirect{Level: login.RiskIndeterminate, RedirectURL: testConfig.IndeterminateRiskURL}, 0},
		{"unknown code", esapi.NewAPIError(400, "UI-999", ""), login.StatusError, login.StageUnhandledError{}, 0},
		{"server error", esapi.NewAPIError(500, esapi.CodeServerError, ""), login.StatusError, login.StageUnhandledError{}, 0},
		{"transport failure", errors.New("connection refused"), login.StatusError, login.StageUnhandledError{}, 0},
		{"context canceled", context.Canceled, login.StatusError, login.StageUnhandledError{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFlow(&fakeAPI{login: func(esapi.LoginRequest) (*esapi.LoginResponse, error) { return nil, tt.err }})
			require.Equal(t, tt.status, mustLogin(t, f))

			snap := f.Snapshot()
			require.Equal(t, tt.stage, snap.Stage)
			require.Len(t, snap.APIErrors, tt.apiErrors)
			require.False(t, snap.Flags.LoggedUser)
		})
	}
}

func TestLogin_RetryAfterInlineError(t *testing.T) {
	t.Parallel()

	attempts := 0
	api := &fakeAPI{login: func(r esapi.LoginRequest) (*esapi.LoginResponse, error) {
		attempts++
		if attempts == 1 {
			return nil, esapi.NewAPIError(401, esapi.CodeInvalidCredentials, "")
		}
		return reply(esapi.MessageCompleted), nil
	}}
	f := newFlow(api)

	require.Equal(t, login.StatusInvalidCredentials, mustLogin(t, f))
	require.Equal(t, login.StatusLoginOK, mustLogin(t, f))
	require.Empty(t, f.Snapshot().APIErrors, "stale inline errors should be cleared")
}

func TestLogin_WrongStage(t *testing.T) {
	t.Parallel()

	f := newFlow(&fakeAPI{login: replyWith(reply(esapi.MessageCompleted))})
	mustLogin(t, f)

	_, err := f.Login(context.Background(), "member01", "hunter2", login.DeviceFingerprint{})
	require.ErrorIs(t, err, login.ErrWrongStage)

	_, err = f.SubmitCode(context.Background(), "123456")
	require.ErrorIs(t, err, login.ErrWrongStage)
	_, err = f.VerifyEmail(context.Background(), "123456")
	require.ErrorIs(t, err, login.ErrWrongStage)
	_, err = f.ResetPassword(context.Background(), "a", "a")
	require.ErrorIs(t, err, login.ErrWrongStage)
	require.ErrorIs(t, f.SetCode("1"), login.ErrWrongStage)

	require.True(t, f.Flags().LoggedUser, "misuse must not change the stage")
}

func TestResetToHome(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		login:      replyWith(reply(esapi.MessageOTPRequired, smsDevice)),
		provideOTP: rejectWith[esapi.ProvideOTPRequest](esapi.CodeInvalidOTP),
	}
	f := newFlow(api)
	mustLogin(t, f)
	_, err := f.SubmitCode(context.Background(), "000000")
	require.NoError(t, err)
	require.NotEmpty(t, f.Snapshot().APIErrors)

	f.ResetToHome()
	once := f.Snapshot()
	f.ResetToHome()
	twice := f.Snapshot()

	require.Equal(t, once, twice)
	require.Equal(t, login.Snapshot{Stage: login.StageCredentials{}}, once)
	require.Equal(t, login.Flags{}, f.Flags())

	// A second attempt behaves like the first.
	require.Equal(t, login.StatusMFARequiredOneDevice, mustLogin(t, f))
	require.Equal(t, login.StepCode, mfaState(t, f).Step)
}

func TestInFlightGuardAndAbandon(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{login: func(esapi.LoginRequest) (*esapi.LoginResponse, error) {
		close(entered)
		<-release
		return reply(esapi.MessageCompleted), nil
	}}
	f := newFlow(api)

	type result struct {
		status login.Status
		err    error
	}
	done := make(chan result, 1)
	go func() {
		status, err := f.Login(context.Background(), "member01", "hunter2", login.DeviceFingerprint{})
		done <- result{status, err}
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("login never reached the ES API")
	}

	require.True(t, f.Snapshot().Busy)
	_, err := f.Login(context.Background(), "member01", "hunter2", login.DeviceFingerprint{})
	require.ErrorIs(t, err, login.ErrBusy)
	require.ErrorIs(t, f.SetCode("123"), login.ErrBusy)

	f.ResetToHome()
	require.False(t, f.Snapshot().Busy)
	close(release)

	res := <-done
	require.ErrorIs(t, res.err, login.ErrAbandoned)
	require.Equal(t, login.StatusUnspecified, res.status)

	snap := f.Snapshot()
	require.IsType(t, login.StageCredentials{}, snap.Stage)
	require.False(t, snap.Flags.LoggedUser, "an abandoned result must not be applied")
	require.Equal(t, []string{"login"}, api.Calls())
}

func TestCanceledCallerKeepsStage(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAPI{
		login: replyWith(reply(esapi.MessageOTPRequired, smsDevice)),
		provideOTP: func(esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
			// The member navigates away while the ES call is outstanding.
			cancel()
			return nil, ctx.Err()
		},
	}
	f := newFlow(api)
	mustLogin(t, f)

	status, err := f.SubmitCode(ctx, "123456")
	require.ErrorIs(t, err, login.ErrCanceled)
	require.Equal(t, login.StatusUnspecified, status)

	snap := f.Snapshot()
	require.False(t, snap.Busy)
	require.False(t, snap.Flags.UnhandledErrors)
	require.Equal(t, login.StepCode, mfaState(t, f).Step)

	api.provideOTP = func(esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
		return reply(esapi.MessageCompleted), nil
	}
	status, err = f.SubmitCode(context.Background(), "123456")
	require.NoError(t, err)
	require.Equal(t, login.StatusLoginOK, status)
}

func TestDeadlineIsUnhandled(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		login: replyWith(reply(esapi.MessageOTPRequired, smsDevice)),
		provideOTP: func(esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
			return nil, context.DeadlineExceeded
		},
	}
	f := newFlow(api)
	mustLogin(t, f)

	status, err := f.SubmitCode(context.Background(), "123456")
	require.NoError(t, err)
	require.Equal(t, login.StatusError, status)
	require.True(t, f.Flags().UnhandledErrors)
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "LOGIN_OK", login.StatusLoginOK.String())
	require.Equal(t, "MFA_REQUIRED_MULTIPLE_DEVICES", login.StatusMFARequiredMultipleDevices.String())
	require.Equal(t, "UNSPECIFIED", login.Status(999).String())

	text, err := login.StatusMFALockout.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "MFA_LOCKOUT", string(text))
}
