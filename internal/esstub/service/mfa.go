package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/aussiebroadwan/memberauth/internal/esstub/store"
	"github.com/aussiebroadwan/memberauth/pkg/cryptox"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

// SelectDevice sends a code to one of the member's devices. It is accepted
// while the interaction waits for a device choice or a device code, so a
// member can switch devices or ask for another code.
func (s *Service) SelectDevice(ctx context.Context, req esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error) {
	in, ok := s.interactions.take(req.InteractionID, req.InteractionToken, s.now())
	if !ok {
		return nil, errInteraction
	}
	defer in.mu.Unlock()

	if !cryptox.EqualTokens(in.userToken, req.UserToken) {
		return nil, errInteraction
	}
	if in.step != stepDeviceSelection && in.step != stepOTP {
		return nil, rejectInvalidRequest("no device challenge pending")
	}

	d, err := s.store.GetDevice(ctx, in.username, strings.TrimSpace(req.DeviceID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errDeviceUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	if err := s.dispatchDeviceCode(ctx, in, d); err != nil {
		return nil, err
	}
	in.step = stepOTP
	in.rotate()

	return &esapi.SelectDeviceResponse{
		InteractionID:    in.id,
		InteractionToken: in.token,
	}, nil
}

// ProvideOTP checks the code for the selected device.
func (s *Service) ProvideOTP(ctx context.Context, req esapi.ProvideOTPRequest) (*esapi.LoginResponse, error) {
	in, ok := s.interactions.take(req.InteractionID, req.InteractionToken, s.now())
	if !ok {
		return nil, errInteraction
	}
	defer in.mu.Unlock()

	if !cryptox.EqualTokens(in.userToken, req.UserToken) {
		return nil, errInteraction
	}
	if in.step != stepOTP || in.deviceID == "" {
		return nil, rejectInvalidRequest("no device code pending")
	}

	d, err := s.store.GetDevice(ctx, in.username, in.deviceID)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}

	if strings.EqualFold(d.Type, store.DeviceTOTP) {
		err = s.checkTOTP(in, d.TOTPSecret, req.OTP)
	} else {
		err = s.checkCode(in, req.OTP)
	}
	if err != nil {
		if errors.Is(err, errOTPLimit) {
			slogx.FromContext(ctx).Warn("device code attempts exhausted", "username", in.username)
		}
		return nil, err
	}

	in.mfaPassed = true
	return s.advance(ctx, in, false)
}

// checkCode compares a submitted code with the pending one, counting
// failures. Exhausting the attempts retires the interaction.
func (s *Service) checkCode(in *interaction, submitted string) error {
	if in.code == "" {
		return rejectInvalidRequest("no code pending")
	}
	if !s.now().Before(in.codeExpires) {
		return errOTPExpired
	}
	if cryptox.EqualTokens(in.code, strings.TrimSpace(submitted)) {
		in.clearCode()
		return nil
	}
	return s.failCode(in)
}

func (s *Service) checkTOTP(in *interaction, secret, submitted string) error {
	valid, err := totp.ValidateCustom(strings.TrimSpace(submitted), secret, s.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err == nil && valid {
		in.codeAttempts = 0
		return nil
	}
	return s.failCode(in)
}

func (s *Service) failCode(in *interaction) error {
	in.codeAttempts++
	if in.codeAttempts >= s.cfg.MaxCodeAttempts {
		s.interactions.remove(in.id)
		return errOTPLimit
	}
	return errInvalidOTP
}
