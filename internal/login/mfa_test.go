package login_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/stretchr/testify/require"
)

func TestProcessLogin_SingleDeviceSkipsSelection(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{login: replyWith(reply(esapi.MessageOTPRequired, smsDevice))}
	f := newFlow(api)

	require.Equal(t, login.StatusMFARequiredOneDevice, mustLogin(t, f))

	m := mfaState(t, f)
	require.Equal(t, login.StepCode, m.Step)
	require.NotNil(t, m.Selected)
	require.Equal(t, "d1", m.Selected.ID)
	require.Equal(t, login.MFAOption{ID: "d1", Mode: login.ModeText, SelectionText: "Text me at", Device: "***-***-4567"}, *m.Selected)
	require.True(t, f.Flags().MFANeeded)
	require.Equal(t, []string{"login"}, api.Calls(), "OTP_REQUIRED means the code was already sent")
}

func TestProcessLogin_SingleDeviceSelectionRequiredSends(t *testing.T) {
	t.Parallel()

	var sent esapi.SelectDeviceRequest
	api := &fakeAPI{
		login: replyWith(reply(esapi.MessageDeviceSelectionRequired, emailDevice)),
		selectDevice: func(r esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
			sent = r
			return sendOK(r)
		},
	}
	f := newFlow(api)

	require.Equal(t, login.StatusMFARequiredOneDevice, mustLogin(t, f))
	require.Equal(t, esapi.SelectDeviceRequest{DeviceID: "d2", InteractionID: "i1", InteractionToken: "t1", UserToken: "u1"}, sent)
	require.Equal(t, login.StepCode, mfaState(t, f).Step)
	require.Equal(t, "j***e@example.com", mfaState(t, f).Selected.Device)
}

func TestProcessLogin_SingleDeviceSendFailureStaysOnSelection(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		login: replyWith(reply(esapi.MessageDeviceSelectionRequired, smsDevice)),
		selectDevice: func(esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
			return nil, esapi.NewAPIError(400, esapi.CodeDeviceUnavailable, "")
		},
	}
	f := newFlow(api)

	require.Equal(t, login.StatusRejected, mustLogin(t, f))
	require.Equal(t, login.StepSelection, mfaState(t, f).Step)
	require.Equal(t, esapi.CodeDeviceUnavailable, f.Snapshot().APIErrors[0].Code)
}

func TestProcessLogin_MultipleDevices(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{login: replyWith(reply(esapi.MessageDeviceSelectionRequired, smsDevice, emailDevice, totpDevice))}
	f := newFlow(api)

	require.Equal(t, login.StatusMFARequiredMultipleDevices, mustLogin(t, f))

	m := mfaState(t, f)
	require.Equal(t, login.StepSelection, m.Step)
	require.Len(t, m.Options, 3)
	require.Equal(t, "d1", m.Selected.ID, "the first device is preselected")
	require.Equal(t, login.ModeAuthenticator, m.Options[2].Mode)
	require.Equal(t, "Pixel", m.Options[2].Device)
	require.Equal(t, []string{"login"}, api.Calls())
}

func TestProcessLogin_UnknownDeviceTypes(t *testing.T) {
	t.Parallel()

	t.Run("skipped when others remain", func(t *testing.T) {
		odd := esapi.Device{DeviceID: "d9", DeviceType: "PIGEON"}
		f := newFlow(&fakeAPI{login: replyWith(reply(esapi.MessageOTPRequired, odd, smsDevice))})

		require.Equal(t, login.StatusMFARequiredOneDevice, mustLogin(t, f))
		require.Equal(t, "d1", mfaState(t, f).Selected.ID)
	})

	t.Run("unhandled when none remain", func(t *testing.T) {
		odd := esapi.Device{DeviceID: "d9", DeviceType: "PIGEON"}
		f := newFlow(&fakeAPI{login: replyWith(reply(esapi.MessageOTPRequired, odd))})

		require.Equal(t, login.StatusError, mustLogin(t, f))
		require.True(t, f.Flags().UnhandledErrors)
	})
}

func TestSelectDevice(t *testing.T) {
	t.Parallel()

	newMulti := func(sel func(esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error)) (*login.Flow, *fakeAPI) {
		api := &fakeAPI{
			login:        replyWith(reply(esapi.MessageDeviceSelectionRequired, smsDevice, emailDevice)),
			selectDevice: sel,
		}
		f := newFlow(api)
		mustLogin(t, f)
		return f, api
	}

	t.Run("moves to code after send", func(t *testing.T) {
		f, _ := newMulti(sendOK)

		status, err := f.SelectDevice(context.Background(), "d2")
		require.NoError(t, err)
		require.Equal(t, login.StatusCodeSent, status)

		m := mfaState(t, f)
		require.Equal(t, login.StepCode, m.Step)
		require.Equal(t, "d2", m.Selected.ID)
	})

	t.Run("unknown device is a validation failure", func(t *testing.T) {
		f, api := newMulti(sendOK)

		status, err := f.SelectDevice(context.Background(), "nope")
		require.NoError(t, err)
		require.Equal(t, login.StatusValidationFailure, status)
		require.Equal(t, []string{"login"}, api.Calls())
	})

	t.Run("send failure stays on selection", func(t *testing.T) {
		f, _ := newMulti(func(esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
			return nil, esapi.NewAPIError(400, esapi.CodeDeviceUnavailable, "")
		})

		status, err := f.SelectDevice(context.Background(), "d2")
		require.NoError(t, err)
		require.Equal(t, login.StatusRejected, status)
		require.Equal(t, login.StepSelection, mfaState(t, f).Step)
		require.Len(t, f.Snapshot().APIErrors, 1)
	})

	t.Run("not allowed from the code step", func(t *testing.T) {
		f, _ := newMulti(sendOK)
		_, err := f.SelectDevice(context.Background(), "d1")
		require.NoError(t, err)

		_, err = f.SelectDevice(context.Background(), "d2")
		require.ErrorIs(t, err, login.ErrWrongStage)
	})
}

func TestSubmitCode(t *testing.T) {
	t.Parallel()

	start := func(otp func(esapi.ProvideOTPRequest) (*esapi.LoginResponse, error)) (*login.Flow, *fakeAPI) {
		api := &fakeAPI{login: replyWith(reply(esapi.MessageOTPRequired, smsDevice)), provideOTP: otp}
		f := newFlow(api)
		mustLogin(t, f)
		return f, api
	}

	t.Run("accepted code authenticates", func(t *testing.T) {
		var got esapi.ProvideOTPRequest
		f, _ := start(func(r esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
			got = r
			return &esapi.LoginResponse{Message: esapi.MessageCompleted, SessionToken: "session-jwt"}, nil
		})

		status, err := f.SubmitCode(context.Background(), " 123456 ")
		require.NoError(t, err)
		require.Equal(t, login.StatusLoginOK, status)
		require.Equal(t, esapi.ProvideOTPRequest{OTP: "123456", InteractionID: "i1", InteractionToken: "t1", UserToken: "u1"}, got)
		require.Equal(t, login.StageAuthenticated{SessionToken: "session-jwt"}, f.Snapshot().Stage)
	})

	t.Run("buffered code is used when none is passed", func(t *testing.T) {
		var got string
		f, _ := start(func(r esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
			got = r.OTP
			return reply(esapi.MessageCompleted), nil
		})

		require.NoError(t, f.SetCode("654321"))
		_, err := f.SubmitCode(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, "654321", got)
	})

	t.Run("empty code is a validation failure", func(t *testing.T) {
		f, api := start(nil)

		status, err := f.SubmitCode(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, login.StatusValidationFailure, status)
		require.Equal(t, []string{"login"}, api.Calls())
	})

	t.Run("wrong code stays on code step", func(t *testing.T) {
		f, _ := start(rejectWith[esapi.ProvideOTPRequest](esapi.CodeInvalidOTP))

		status, err := f.SubmitCode(context.Background(), "000000")
		require.NoError(t, err)
		require.Equal(t, login.StatusInvalidCode, status)
		require.Equal(t, login.StepCode, mfaState(t, f).Step)
		require.Equal(t, []login.InlineError{{Code: esapi.CodeInvalidOTP, Message: login.Messages[esapi.CodeInvalidOTP]}}, f.Snapshot().APIErrors)
		requireExclusive(t, f)
	})

	t.Run("attempt limit is a lockout, not an inline error", func(t *testing.T) {
		f, _ := start(rejectWith[esapi.ProvideOTPRequest](esapi.CodeOTPLimitReached))

		status, err := f.SubmitCode(context.Background(), "000000")
		require.NoError(t, err)
		require.Equal(t, login.StatusMFALockout, status)

		snap := f.Snapshot()
		require.True(t, snap.Flags.MultipleMFASecurityCodeAttempts)
		require.False(t, snap.Flags.MFANeeded)
		require.Empty(t, snap.APIErrors)
		requireExclusive(t, f)
	})

	t.Run("backend may still demand a password reset", func(t *testing.T) {
		f, _ := start(func(esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
			return reply(esapi.MessagePasswordResetRequired), nil
		})

		status, err := f.SubmitCode(context.Background(), "123456")
		require.NoError(t, err)
		require.Equal(t, login.StatusPasswordResetRequired, status)
		require.True(t, f.Flags().ForcedPasswordReset)
	})

	t.Run("backend may still demand email uniqueness", func(t *testing.T) {
		f, _ := start(func(esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
			return reply(esapi.MessageEmailUniqueness), nil
		})

		status, err := f.SubmitCode(context.Background(), "123456")
		require.NoError(t, err)
		require.Equal(t, login.StatusEmailUniqueness, status)
		require.True(t, f.Flags().EmailUniqueness)
	})
}

func TestResendCode(t *testing.T) {
	t.Parallel()

	t.Run("multiple devices re-send to the selected one", func(t *testing.T) {
		logins := 0
		var sentTo []string
		api := &fakeAPI{
			login: func(esapi.LoginRequest) (*esapi.LoginResponse, error) {
				logins++
				resp := reply(esapi.MessageDeviceSelectionRequired, smsDevice, emailDevice)
				resp.InteractionID = "i-login-" + string(rune('0'+logins))
				return resp, nil
			},
			selectDevice: func(r esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
				sentTo = append(sentTo, r.DeviceID+"@"+r.InteractionID)
				return &esapi.SelectDeviceResponse{}, nil
			},
		}
		f := newFlow(api)
		mustLogin(t, f)
		_, err := f.SelectDevice(context.Background(), "d2")
		require.NoError(t, err)

		status, err := f.ResendCode(context.Background())
		require.NoError(t, err)
		require.Equal(t, login.StatusCodeSent, status)

		m := mfaState(t, f)
		require.Equal(t, login.StepCode, m.Step)
		require.Equal(t, "d2", m.Selected.ID)
		require.True(t, m.ResendRequested)
		require.Equal(t, []string{"d2@i-login-1", "d2@i-login-2"}, sentTo, "resend uses the fresh interaction")
		require.Equal(t, []string{"login", "selectDevice", "login", "selectDevice"}, api.Calls())
	})

	t.Run("single OTP_REQUIRED device is not re-sent", func(t *testing.T) {
		api := &fakeAPI{login: replyWith(reply(esapi.MessageOTPRequired, smsDevice))}
		f := newFlow(api)
		mustLogin(t, f)

		status, err := f.ResendCode(context.Background())
		require.NoError(t, err)
		require.Equal(t, login.StatusCodeSent, status)
		require.True(t, mfaState(t, f).ResendRequested)
		require.Equal(t, []string{"login", "login"}, api.Calls())
	})

	t.Run("selected device gone starts mfa over", func(t *testing.T) {
		logins := 0
		api := &fakeAPI{login: func(esapi.LoginRequest) (*esapi.LoginResponse, error) {
			logins++
			if logins == 1 {
				return reply(esapi.MessageOTPRequired, smsDevice), nil
			}
			return reply(esapi.MessageOTPRequired, emailDevice, totpDevice), nil
		}}
		f := newFlow(api)
		mustLogin(t, f)

		status, err := f.ResendCode(context.Background())
		require.NoError(t, err)
		require.Equal(t, login.StatusMFARequiredMultipleDevices, status)

		m := mfaState(t, f)
		require.Equal(t, login.StepSelection, m.Step)
		require.False(t, m.ResendRequested)
	})

	t.Run("lockout during resend", func(t *testing.T) {
		logins := 0
		api := &fakeAPI{login: func(esapi.LoginRequest) (*esapi.LoginResponse, error) {
			logins++
			if logins == 1 {
				return reply(esapi.MessageOTPRequired, smsDevice), nil
			}
			return nil, esapi.NewAPIError(429, esapi.CodeTooManyAttempts, "")
		}}
		f := newFlow(api)
		mustLogin(t, f)

		status, err := f.ResendCode(context.Background())
		require.NoError(t, err)
		require.Equal(t, login.StatusTooManyAttempts, status)
		require.True(t, f.Flags().MultipleLoginAttempts)
	})
}

func TestUseDifferentMethod(t *testing.T) {
	t.Parallel()

	logins := 0
	var otpReq esapi.ProvideOTPRequest
	api := &fakeAPI{
		login: func(esapi.LoginRequest) (*esapi.LoginResponse, error) {
			logins++
			resp := reply(esapi.MessageOTPRequired, smsDevice, emailDevice)
			resp.InteractionID = "fresh-" + string(rune('0'+logins))
			return resp, nil
		},
		selectDevice: func(esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
			return &esapi.SelectDeviceResponse{}, nil
		},
		provideOTP: func(r esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
			otpReq = r
			return reply(esapi.MessageCompleted), nil
		},
	}
	f := newFlow(api)
	mustLogin(t, f)
	_, err := f.SelectDevice(context.Background(), "d1")
	require.NoError(t, err)
	require.NoError(t, f.SetCode("12"))

	status, err := f.UseDifferentMethod(context.Background())
	require.NoError(t, err)
	require.Equal(t, login.StatusMFARequiredMultipleDevices, status)

	m := mfaState(t, f)
	require.Equal(t, login.StepSelection, m.Step)
	require.False(t, m.ResendRequested)

	_, err = f.SelectDevice(context.Background(), "d2")
	require.NoError(t, err)
	_, err = f.SubmitCode(context.Background(), "123456")
	require.NoError(t, err)
	require.Equal(t, "fresh-2", otpReq.InteractionID, "the old interaction must not be reused")
	require.True(t, f.Flags().LoggedUser)
}
