package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/memberauth/internal/esstub/store"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// VerifyEmail confirms the member's current address.
func (s *Service) VerifyEmail(ctx context.Context, req esapi.VerifyEmailRequest) (*esapi.LoginResponse, error) {
	return s.confirmEmail(ctx, req, stepEmailCode, func(in *interaction) error {
		return s.store.MarkEmailVerified(ctx, in.username)
	})
}

// Reactivate confirms the code sent to a deactivated login and reactivates it.
func (s *Service) Reactivate(ctx context.Context, req esapi.VerifyEmailRequest) (*esapi.LoginResponse, error) {
	return s.confirmEmail(ctx, req, stepReactivationCode, func(in *interaction) error {
		return s.store.SetStatus(ctx, in.username, store.StatusActive)
	})
}

// VerifyUniqueEmail confirms the replacement address submitted with
// UpdateEmail and stores it.
func (s *Service) VerifyUniqueEmail(ctx context.Context, req esapi.VerifyEmailRequest) (*esapi.LoginResponse, error) {
	return s.confirmEmail(ctx, req, stepUniqueEmailCode, func(in *interaction) error {
		return s.store.ReplaceEmail(ctx, in.username, in.pendingEmail)
	})
}

func (s *Service) confirmEmail(ctx context.Context, req esapi.VerifyEmailRequest, want step, apply func(*interaction) error) (*esapi.LoginResponse, error) {
	in, ok := s.interactions.take(req.InteractionID, req.InteractionToken, s.now())
	if !ok {
		return nil, errInteraction
	}
	defer in.mu.Unlock()

	if !sameUser(in.username, req.Username) {
		return nil, rejectInvalidRequest("username does not match interaction")
	}
	if in.step != want {
		return nil, rejectInvalidRequest("no email code pending")
	}

	if err := s.checkCode(in, req.EmailOTP); err != nil {
		return nil, err
	}
	if err := apply(in); err != nil {
		return nil, fmt.Errorf("apply email confirmation: %w", err)
	}
	in.pendingEmail = ""

	return s.advance(ctx, in, true)
}

// UpdateEmail records a replacement for a non-unique address and sends a
// confirmation code to it. Calling it again with the same address resends.
func (s *Service) UpdateEmail(ctx context.Context, req esapi.UpdateEmailRequest) (*esapi.LoginResponse, error) {
	in, ok := s.interactions.take(req.InteractionID, req.InteractionToken, s.now())
	if !ok {
		return nil, errInteraction
	}
	defer in.mu.Unlock()

	if !sameUser(in.username, req.Username) {
		return nil, rejectInvalidRequest("username does not match interaction")
	}
	if in.step != stepUniqueEmail && in.step != stepUniqueEmailCode {
		return nil, rejectInvalidRequest("no email update pending")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return nil, errInvalidEmail
	}

	inUse, err := s.store.EmailInUse(ctx, email, in.username)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if inUse {
		return nil, errEmailInUse
	}

	in.pendingEmail = email
	return s.challengeEmail(ctx, in, stepUniqueEmailCode, esapi.MessageEmailVerificationRequired, email)
}
