package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/memberauth/internal/esstub/store"
	"github.com/aussiebroadwan/memberauth/pkg/cryptox"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

// Login checks credentials and, when they hold, opens an interaction and
// reports the first step the member has to complete.
func (s *Service) Login(ctx context.Context, req esapi.LoginRequest) (*esapi.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, rejectInvalidRequest("username and password are required")
	}
	if s.cfg.PolicyID != "" && req.PolicyID != s.cfg.PolicyID {
		return nil, rejectInvalidRequest("unknown policy")
	}
	if s.cfg.AppID != "" && req.AppID != s.cfg.AppID {
		return nil, rejectInvalidRequest("unknown application")
	}

	now := s.now()
	if s.failures.locked(username, now) {
		return nil, errTooManyAttempts
	}

	acct, err := s.store.GetAccount(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, s.failLogin(ctx, username, now)
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := cryptox.VerifyPassword(req.Password, acct.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Warn("stored password hash unreadable", "username", acct.Username, "error", err)
		}
		return nil, s.failLogin(ctx, username, now)
	}
	s.failures.reset(username)

	if acct.Status == store.StatusInactive {
		return nil, errAccountInactive
	}
	switch acct.Risk {
	case store.RiskHigh:
		return nil, errHighRisk
	case store.RiskIndeterminate:
		return nil, errIndeterminateRisk
	}

	in := s.interactions.create(acct.Username, now.Add(s.cfg.InteractionTTL))
	in.mu.Lock()
	defer in.mu.Unlock()

	return s.advance(ctx, in, false)
}

func (s *Service) failLogin(ctx context.Context, username string, now time.Time) error {
	if s.failures.fail(username, now, s.cfg.MaxLoginFailures, s.cfg.LockoutDuration) {
		slogx.FromContext(ctx).Warn("login locked out", "username", username)
		return errTooManyAttempts
	}
	return errInvalidCredentials
}

// advance works out the next outstanding requirement for the interaction's
// account, in gate order: reactivation, password reset, duplicate accounts,
// email uniqueness, email verification, second factor. resumed marks a call
// that resolves a gate, where a second factor is reported as COMPLETED with
// a device list rather than as its own status.
func (s *Service) advance(ctx context.Context, in *interaction, resumed bool) (*esapi.LoginResponse, error) {
	acct, err := s.store.GetAccount(ctx, in.username)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	in.username = acct.Username
	in.clearCode()

	if acct.Status == store.StatusDeactivated {
		return s.challengeEmail(ctx, in, stepReactivationCode, esapi.MessageReactivationRequired, acct.Email)
	}

	if acct.PasswordResetRequired {
		in.step = stepPasswordReset
		return s.respond(in, esapi.MessagePasswordResetRequired), nil
	}

	if acct.DuplicateGroup != "" {
		dups, err := s.store.ListDuplicates(ctx, acct.DuplicateGroup)
		if err != nil {
			return nil, fmt.Errorf("list duplicates: %w", err)
		}
		if len(dups) > 1 {
			in.step = stepDuplicateAccount
			resp := s.respond(in, esapi.MessageDuplicateAccount)
			for _, d := range dups {
				resp.Accounts = append(resp.Accounts, esapi.LinkedAccount{
					Username:  d.Username,
					LastLogin: formatOptionalTime(d.LastLoginAt),
				})
			}
			return resp, nil
		}
	}

	if !acct.EmailUnique {
		in.step = stepUniqueEmail
		resp := s.respond(in, esapi.MessageEmailUniqueness)
		resp.Email = acct.Email
		return resp, nil
	}

	if !acct.EmailVerified {
		return s.challengeEmail(ctx, in, stepEmailCode, esapi.MessageEmailVerificationRequired, acct.Email)
	}

	if !in.mfaPassed && !acct.MFADisabled {
		devices, err := s.store.ListDevices(ctx, acct.Username)
		if err != nil {
			return nil, fmt.Errorf("list devices: %w", err)
		}
		if len(devices) > 0 {
			return s.challengeDevices(ctx, in, devices, resumed)
		}
	}

	return s.complete(ctx, in, acct)
}

// complete issues the session and retires the interaction.
func (s *Service) complete(ctx context.Context, in *interaction, acct store.Account) (*esapi.LoginResponse, error) {
	now := s.now()
	token, err := s.issueSession(acct.Username, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.TouchLogin(ctx, acct.Username, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to record login time", "username", acct.Username, "error", err)
	}

	message := esapi.MessageCompleted
	if acct.MFADisabled {
		message = esapi.MessageMFADisabled
	}

	in.step = stepNone
	resp := s.respond(in, message)
	resp.SessionToken = token
	s.interactions.remove(in.id)
	return resp, nil
}

func (s *Service) challengeDevices(ctx context.Context, in *interaction, devices []store.Device, resumed bool) (*esapi.LoginResponse, error) {
	list := make([]esapi.Device, 0, len(devices))
	for _, d := range devices {
		list = append(list, toAPIDevice(d))
	}

	message := esapi.MessageDeviceSelectionRequired
	if len(devices) == 1 {
		if err := s.dispatchDeviceCode(ctx, in, devices[0]); err != nil {
			return nil, err
		}
		in.step = stepOTP
		message = esapi.MessageOTPRequired
	} else {
		in.step = stepDeviceSelection
		in.deviceID = ""
	}
	if resumed {
		message = esapi.MessageCompleted
	}

	resp := s.respond(in, message)
	resp.MFADeviceList = list
	return resp, nil
}

// challengeEmail sends a code to email and parks the interaction on next.
func (s *Service) challengeEmail(ctx context.Context, in *interaction, next step, message, email string) (*esapi.LoginResponse, error) {
	if err := s.sendCode(ctx, in, ChannelEmail, email); err != nil {
		return nil, err
	}
	in.step = next

	resp := s.respond(in, message)
	resp.Email = email
	return resp, nil
}

// dispatchDeviceCode selects d for the interaction and sends it a code.
// Authenticator devices generate their own codes.
func (s *Service) dispatchDeviceCode(ctx context.Context, in *interaction, d store.Device) error {
	var (
		channel     Channel
		destination string
	)
	switch strings.ToUpper(d.Type) {
	case store.DeviceTOTP:
		in.deviceID = d.ID
		in.clearCode()
		return nil
	case store.DeviceSMS:
		channel, destination = ChannelSMS, d.Phone
	case store.DeviceVoice:
		channel, destination = ChannelVoice, d.Phone
	case store.DeviceEmail:
		channel, destination = ChannelEmail, d.Email
	default:
		return errDeviceUnavailable
	}
	if destination == "" {
		return errDeviceUnavailable
	}

	in.deviceID = d.ID
	return s.sendCode(ctx, in, channel, destination)
}

func (s *Service) sendCode(ctx context.Context, in *interaction, channel Channel, destination string) error {
	code, err := cryptox.GenerateNumericCode(s.cfg.CodeDigits)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	now := s.now()
	in.setCode(code, now.Add(s.cfg.CodeTTL))

	s.Outbox.Send(ctx, Delivery{
		Username:    in.username,
		Channel:     channel,
		Destination: destination,
		Code:        code,
		SentAt:      now,
	})
	return nil
}

func (s *Service) respond(in *interaction, message string) *esapi.LoginResponse {
	return &esapi.LoginResponse{
		Message:          message,
		InteractionID:    in.id,
		InteractionToken: in.token,
		UserToken:        in.userToken,
	}
}

func toAPIDevice(d store.Device) esapi.Device {
	return esapi.Device{
		DeviceID:   d.ID,
		DeviceType: d.Type,
		Phone:      d.Phone,
		Email:      d.Email,
		Name:       d.Name,
	}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
