package login

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

// processLogin is the join point after credentials, email verification and
// the blocking gates. An empty device list completes the attempt. Otherwise
// the first option is selected; a single option goes straight to the code
// step. sendRequired means the backend has not dispatched a code yet.
func (f *Flow) processLogin(ctx context.Context, log *slog.Logger, s *state, devices []esapi.Device, sendRequired bool) Status {
	if len(devices) == 0 {
		s.stage = StageAuthenticated{SessionToken: s.ictx.SessionToken}
		return StatusLoginOK
	}

	opts, skipped := buildOptions(devices)
	if len(skipped) > 0 {
		log.Warn("skipping unsupported mfa devices", "attempt_id", s.attemptID, "device_types", skipped)
	}
	if len(opts) == 0 {
		return unhandled(s)
	}
	if !s.ictx.valid() {
		log.Error("mfa required without interaction context", "attempt_id", s.attemptID)
		return unhandled(s)
	}

	first := opts[0]
	s.code = ""
	if len(opts) > 1 {
		s.stage = StageMFA{MFAState{Step: StepSelection, Options: opts, Selected: &first}}
		return StatusMFARequiredMultipleDevices
	}

	if sendRequired {
		// Stay on selection until the send succeeds, so a failure leaves
		// the member somewhere they can retry from.
		s.stage = StageMFA{MFAState{Step: StepSelection, Options: opts, Selected: &first}}
		if err := f.sendCode(ctx, s, first.ID); err != nil {
			return f.reject(log, s, err, StatusRejected, false)
		}
	}
	s.stage = StageMFA{MFAState{Step: StepCode, Options: opts, Selected: &first}}
	return StatusMFARequiredOneDevice
}

// sendCode asks the backend to send a code to a device and refreshes the
// interaction context from the reply.
func (f *Flow) sendCode(ctx context.Context, s *state, deviceID string) error {
	resp, err := f.api.SelectDevice(ctx, esapi.SelectDeviceRequest{
		DeviceID:         deviceID,
		InteractionID:    s.ictx.InteractionID,
		InteractionToken: s.ictx.InteractionToken,
		UserToken:        s.ictx.UserToken,
	})
	if err != nil {
		return err
	}
	if resp.InteractionID != "" {
		s.ictx.InteractionID = resp.InteractionID
		s.ictx.InteractionToken = resp.InteractionToken
	}
	return nil
}
