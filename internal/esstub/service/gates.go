package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aussiebroadwan/memberauth/internal/esstub/store"
	"github.com/aussiebroadwan/memberauth/pkg/cryptox"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

const minPasswordLength = 8

// ResetPassword completes a forced password reset.
func (s *Service) ResetPassword(ctx context.Context, req esapi.ResetPasswordRequest) (*esapi.LoginResponse, error) {
	in, ok := s.interactions.take(req.InteractionID, req.InteractionToken, s.now())
	if !ok {
		return nil, errInteraction
	}
	defer in.mu.Unlock()

	if !sameUser(in.username, req.Username) {
		return nil, rejectInvalidRequest("username does not match interaction")
	}
	if in.step != stepPasswordReset {
		return nil, rejectInvalidRequest("no password reset pending")
	}
	if !meetsPolicy(req.NewPassword) {
		return nil, errPasswordPolicy
	}

	acct, err := s.store.GetAccount(ctx, in.username)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if cryptox.VerifyPassword(req.NewPassword, acct.PasswordHash) == nil {
		return nil, errPasswordReused
	}

	hash, err := cryptox.HashPassword(req.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, acct.Username, hash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	return s.advance(ctx, in, true)
}

// meetsPolicy requires at least eight characters with a letter and a digit.
func meetsPolicy(password string) bool {
	if len(password) < minPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// DeactivateAccount resolves a duplicate account collision: the member
// proves their identity with a date of birth, keeps one login and the rest
// are deactivated. The interaction continues as the kept login.
func (s *Service) DeactivateAccount(ctx context.Context, req esapi.DeactivateAccountRequest) (*esapi.LoginResponse, error) {
	in, ok := s.interactions.take(req.InteractionID, req.InteractionToken, s.now())
	if !ok {
		return nil, errInteraction
	}
	defer in.mu.Unlock()

	if in.step != stepDuplicateAccount {
		return nil, rejectInvalidRequest("no duplicate account pending")
	}

	current, err := s.store.GetAccount(ctx, in.username)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	keep, err := s.store.GetAccount(ctx, strings.TrimSpace(req.KeepUsername))
	if errors.Is(err, store.ErrNotFound) {
		return nil, errIdentityMismatch
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if keep.DuplicateGroup == "" || keep.DuplicateGroup != current.DuplicateGroup {
		return nil, errIdentityMismatch
	}
	if keep.DateOfBirth == "" || keep.DateOfBirth != strings.TrimSpace(req.DateOfBirth) {
		return nil, errIdentityMismatch
	}

	if err := s.store.ResolveDuplicates(ctx, current.DuplicateGroup, keep.Username); err != nil {
		return nil, fmt.Errorf("resolve duplicates: %w", err)
	}
	in.username = keep.Username

	return s.advance(ctx, in, true)
}
