package login

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func emailStage(s *state) (StageVerifyEmail, error) {
	v, ok := s.stage.(StageVerifyEmail)
	if !ok {
		return StageVerifyEmail{}, ErrWrongStage
	}
	if err := requireInteraction(s); err != nil {
		return StageVerifyEmail{}, err
	}
	return v, nil
}

// VerifyEmail submits the email code for the current variant. On success
// the attempt continues through process login, which may still require MFA.
func (f *Flow) VerifyEmail(ctx context.Context, code string) (Status, error) {
	return f.run(ctx, "verify_email", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		v, err := emailStage(s)
		if err != nil {
			return StatusUnspecified, err
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return StatusValidationFailure, nil
		}

		s.apiErrors = nil
		req := esapi.VerifyEmailRequest{
			EmailOTP:         code,
			InteractionID:    s.ictx.InteractionID,
			InteractionToken: s.ictx.InteractionToken,
			Username:         s.creds.Username,
			PolicyID:         f.cfg.PolicyID,
			AppID:            f.cfg.AppID,
		}

		var resp *esapi.LoginResponse
		switch v.Variant {
		case EmailReactivation:
			resp, err = f.api.Reactivate(ctx, req)
		case EmailUnique:
			resp, err = f.api.VerifyUniqueEmail(ctx, req)
		default:
			resp, err = f.api.VerifyEmail(ctx, req)
		}
		if err != nil {
			// Email codes share the OTP limit: UI-412 here is an MFA lockout.
			return f.reject(log, s, err, StatusInvalidCode, true), nil
		}
		s.pendingEmail = ""
		return f.complete(ctx, log, s, resp), nil
	})
}

// ResendEmailCode sends a fresh email code. Standard and reactivation
// codes are re-sent by re-running the credential submission; a unique-email
// code by re-submitting the pending address.
func (f *Flow) ResendEmailCode(ctx context.Context) (Status, error) {
	return f.run(ctx, "resend_email_code", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		v, err := emailStage(s)
		if err != nil {
			return StatusUnspecified, err
		}
		s.apiErrors = nil

		if v.Variant == EmailUnique {
			return f.updateEmail(ctx, log, s, s.pendingEmail), nil
		}

		resp, err := f.relogin(ctx, s)
		if err != nil {
			return f.reject(log, s, err, StatusRejected, false), nil
		}
		status := f.dispatch(ctx, log, s, resp)
		if next, ok := s.stage.(StageVerifyEmail); ok && next.Variant == v.Variant {
			return StatusCodeSent, nil
		}
		return status, nil
	})
}

// SubmitUniqueEmail replaces a non-unique email address. The member then
// confirms the new address with VerifyEmail.
func (f *Flow) SubmitUniqueEmail(ctx context.Context, email string) (Status, error) {
	return f.run(ctx, "submit_unique_email", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		if _, ok := s.stage.(StageEmailUniqueness); !ok {
			return StatusUnspecified, ErrWrongStage
		}
		if err := requireInteraction(s); err != nil {
			return StatusUnspecified, err
		}
		email = strings.TrimSpace(email)
		if err := validate.Var(email, "required,email,max=254"); err != nil {
			return StatusValidationFailure, nil
		}

		s.apiErrors = nil
		return f.updateEmail(ctx, log, s, email), nil
	})
}

func (f *Flow) updateEmail(ctx context.Context, log *slog.Logger, s *state, email string) Status {
	resp, err := f.api.UpdateEmail(ctx, esapi.UpdateEmailRequest{
		Email:            email,
		InteractionID:    s.ictx.InteractionID,
		InteractionToken: s.ictx.InteractionToken,
		Username:         s.creds.Username,
	})
	if err != nil {
		return f.reject(log, s, err, StatusRejected, false)
	}

	if resp.Outcome() != esapi.OutcomeEmailVerificationRequired {
		return f.dispatch(ctx, log, s, resp)
	}
	mergeInteraction(s, resp)
	s.pendingEmail = email
	s.stage = StageVerifyEmail{Variant: EmailUnique, MaskedEmail: MaskEmail(email)}
	return StatusCodeSent
}
