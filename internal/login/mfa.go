package login

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

func mfaStage(s *state, step MFAStep) (StageMFA, error) {
	m, ok := s.stage.(StageMFA)
	if !ok || (step != "" && m.Step != step) {
		return StageMFA{}, ErrWrongStage
	}
	if err := requireInteraction(s); err != nil {
		return StageMFA{}, err
	}
	return m, nil
}

// SelectDevice sends a code to one of the offered devices and moves to the
// code step once the send succeeds.
func (f *Flow) SelectDevice(ctx context.Context, deviceID string) (Status, error) {
	return f.run(ctx, "select_device", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		m, err := mfaStage(s, StepSelection)
		if err != nil {
			return StatusUnspecified, err
		}
		opt, ok := m.option(deviceID)
		if !ok {
			return StatusValidationFailure, nil
		}

		s.apiErrors = nil
		m.Selected = &opt
		s.stage = m
		if err := f.sendCode(ctx, s, opt.ID); err != nil {
			return f.reject(log, s, err, StatusRejected, false), nil
		}

		m.Step = StepCode
		m.ResendRequested = false
		s.stage = m
		s.code = ""
		return StatusCodeSent, nil
	})
}

// SubmitCode submits an MFA code. An empty code submits the buffered one.
func (f *Flow) SubmitCode(ctx context.Context, code string) (Status, error) {
	return f.run(ctx, "submit_code", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		if _, err := mfaStage(s, StepCode); err != nil {
			return StatusUnspecified, err
		}
		if code == "" {
			code = s.code
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return StatusValidationFailure, nil
		}

		s.apiErrors = nil
		resp, err := f.api.ProvideOTP(ctx, esapi.ProvideOTPRequest{
			OTP:              code,
			InteractionID:    s.ictx.InteractionID,
			InteractionToken: s.ictx.InteractionToken,
			UserToken:        s.ictx.UserToken,
		})
		s.code = ""
		if err != nil {
			return f.reject(log, s, err, StatusInvalidCode, true), nil
		}
		return f.dispatch(ctx, log, s, resp), nil
	})
}

// ResendCode re-runs the credential submission to refresh the interaction
// context, keeps the previously selected device and sends to it again when
// the backend has not already done so.
func (f *Flow) ResendCode(ctx context.Context) (Status, error) {
	return f.run(ctx, "resend_code", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		m, err := mfaStage(s, StepCode)
		if err != nil {
			return StatusUnspecified, err
		}
		prev := m.Selected

		s.apiErrors = nil
		s.code = ""
		resp, err := f.relogin(ctx, s)
		if err != nil {
			return f.reject(log, s, err, StatusRejected, false), nil
		}

		outcome := resp.Outcome()
		if outcome != esapi.OutcomeOTPRequired && outcome != esapi.OutcomeDeviceSelectionRequired {
			return f.dispatch(ctx, log, s, resp), nil
		}

		mergeInteraction(s, resp)
		opts, _ := buildOptions(resp.MFADeviceList)
		i := -1
		if prev != nil {
			i = slices.IndexFunc(opts, func(o MFAOption) bool { return o.ID == prev.ID })
		}
		if i < 0 || !s.ictx.valid() {
			// The device is gone; start the MFA step over with what is offered now.
			return f.dispatch(ctx, log, s, resp), nil
		}

		selected := opts[i]
		next := StageMFA{MFAState{Step: StepSelection, Options: opts, Selected: &selected}}
		s.stage = next
		if len(opts) > 1 || outcome == esapi.OutcomeDeviceSelectionRequired {
			if err := f.sendCode(ctx, s, selected.ID); err != nil {
				return f.reject(log, s, err, StatusRejected, false), nil
			}
		}

		next.Step = StepCode
		next.ResendRequested = true
		s.stage = next
		return StatusCodeSent, nil
	})
}

// UseDifferentMethod abandons the current interaction and re-runs the
// credential submission to get a fresh device list.
func (f *Flow) UseDifferentMethod(ctx context.Context) (Status, error) {
	return f.run(ctx, "different_method", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		if _, err := mfaStage(s, ""); err != nil {
			return StatusUnspecified, err
		}

		s.apiErrors = nil
		s.code = ""
		resp, err := f.relogin(ctx, s)
		if err != nil {
			return f.reject(log, s, err, StatusRejected, false), nil
		}
		return f.dispatch(ctx, log, s, resp), nil
	})
}
