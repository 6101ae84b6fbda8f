package login

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/idx"
)

// Login submits credentials and starts a new attempt. The flow must be at
// the credentials stage; use ResetToHome to start over from anywhere else.
func (f *Flow) Login(ctx context.Context, username, password string, fp DeviceFingerprint) (Status, error) {
	return f.run(ctx, "login", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		if _, ok := s.stage.(StageCredentials); !ok {
			return StatusUnspecified, ErrWrongStage
		}
		username = strings.TrimSpace(username)
		if username == "" || password == "" {
			return StatusValidationFailure, nil
		}

		s.attemptID = idx.New()
		s.creds = Credentials{Username: username, Password: password, Fingerprint: fp}
		s.ictx = InteractionContext{}
		s.apiErrors = nil

		resp, err := f.api.Login(ctx, f.loginRequest(s.creds))
		if err != nil {
			return f.reject(log, s, err, StatusInvalidCredentials, false), nil
		}
		return f.dispatch(ctx, log, s, resp), nil
	})
}

func (f *Flow) loginRequest(c Credentials) esapi.LoginRequest {
	return esapi.LoginRequest{
		Username:      c.Username,
		Password:      c.Password,
		PolicyID:      f.cfg.PolicyID,
		AppID:         f.cfg.AppID,
		IPAddress:     c.Fingerprint.IPAddress,
		UserAgent:     c.Fingerprint.UserAgent,
		DeviceProfile: c.Fingerprint.Profile,
	}
}

// relogin re-runs the credential submission for resend and different-method.
// The old interaction context is dropped only once a new one arrives.
func (f *Flow) relogin(ctx context.Context, s *state) (*esapi.LoginResponse, error) {
	resp, err := f.api.Login(ctx, f.loginRequest(s.creds))
	if err != nil {
		return nil, err
	}
	s.ictx = InteractionContext{}
	return resp, nil
}

// mergeInteraction folds the correlation fields of a response into the
// attempt. Fields the response leaves empty keep their previous value.
func mergeInteraction(s *state, resp *esapi.LoginResponse) {
	if resp.InteractionID != "" {
		s.ictx.InteractionID = resp.InteractionID
		s.ictx.InteractionToken = resp.InteractionToken
	}
	if resp.UserToken != "" {
		s.ictx.UserToken = resp.UserToken
	}
	if resp.SessionToken != "" {
		s.ictx.SessionToken = resp.SessionToken
	}
}

// dispatch maps a successful login-shaped response to the next stage. The
// interaction context and the stage land in s together.
func (f *Flow) dispatch(ctx context.Context, log *slog.Logger, s *state, resp *esapi.LoginResponse) Status {
	mergeInteraction(s, resp)

	outcome := resp.Outcome()
	switch outcome {
	case esapi.OutcomeCompleted, esapi.OutcomeMFADisabled:
		s.stage = StageAuthenticated{SessionToken: s.ictx.SessionToken}
		return StatusLoginOK
	case esapi.OutcomeUnknown:
		log.Warn("unrecognised es outcome", "attempt_id", s.attemptID, "outcome", outcome.String())
		return unhandled(s)
	}

	// Everything below needs a follow-up call.
	if !s.ictx.valid() {
		log.Error("es response without interaction context", "attempt_id", s.attemptID, "outcome", outcome.String())
		return unhandled(s)
	}

	switch outcome {
	case esapi.OutcomeOTPRequired:
		return f.processLogin(ctx, log, s, resp.MFADeviceList, false)
	case esapi.OutcomeDeviceSelectionRequired:
		return f.processLogin(ctx, log, s, resp.MFADeviceList, true)
	case esapi.OutcomeEmailVerificationRequired:
		s.stage = StageVerifyEmail{Variant: EmailStandard, MaskedEmail: MaskEmail(resp.Email)}
		return StatusVerifyEmail
	case esapi.OutcomeReactivationRequired:
		s.stage = StageVerifyEmail{Variant: EmailReactivation, MaskedEmail: MaskEmail(resp.Email)}
		return StatusReactivationRequired
	case esapi.OutcomeEmailUniqueness:
		s.stage = StageEmailUniqueness{MaskedEmail: MaskEmail(resp.Email)}
		return StatusEmailUniqueness
	case esapi.OutcomePasswordResetRequired:
		s.stage = StagePasswordReset{}
		return StatusPasswordResetRequired
	case esapi.OutcomeDuplicateAccount:
		accounts := make([]LinkedAccount, 0, len(resp.Accounts))
		for _, a := range resp.Accounts {
			accounts = append(accounts, LinkedAccount{Username: a.Username, LastLogin: a.LastLogin})
		}
		s.stage = StageDuplicateAccount{Accounts: accounts}
		return StatusDuplicateAccount
	default:
		return unhandled(s)
	}
}

// complete handles the response of a step that terminates into process
// login (email verification, password reset, duplicate resolution). A
// completion goes through processLogin so a device list still forces MFA.
func (f *Flow) complete(ctx context.Context, log *slog.Logger, s *state, resp *esapi.LoginResponse) Status {
	switch resp.Outcome() {
	case esapi.OutcomeCompleted, esapi.OutcomeMFADisabled:
		mergeInteraction(s, resp)
		return f.processLogin(ctx, log, s, resp.MFADeviceList, false)
	default:
		return f.dispatch(ctx, log, s, resp)
	}
}
