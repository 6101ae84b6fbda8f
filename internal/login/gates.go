package login

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

// dobLayout is the date format the ES API expects.
const dobLayout = time.DateOnly

// ResetPassword completes a forced password reset. newPassword and confirm
// must be non-empty and equal.
func (f *Flow) ResetPassword(ctx context.Context, newPassword, confirm string) (Status, error) {
	return f.run(ctx, "reset_password", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		if _, ok := s.stage.(StagePasswordReset); !ok {
			return StatusUnspecified, ErrWrongStage
		}
		if err := requireInteraction(s); err != nil {
			return StatusUnspecified, err
		}
		if newPassword == "" || newPassword != confirm {
			return StatusValidationFailure, nil
		}

		s.apiErrors = nil
		resp, err := f.api.ResetPassword(ctx, esapi.ResetPasswordRequest{
			NewPassword:      newPassword,
			InteractionID:    s.ictx.InteractionID,
			InteractionToken: s.ictx.InteractionToken,
			Username:         s.creds.Username,
		})
		if err != nil {
			return f.reject(log, s, err, StatusRejected, false), nil
		}

		// Later soft restarts must use the new password.
		s.creds.Password = newPassword
		return f.complete(ctx, log, s, resp), nil
	})
}

// ResolveDuplicateAccount keeps one of the colliding logins and deactivates
// the rest. dob is the member's date of birth as YYYY-MM-DD.
func (f *Flow) ResolveDuplicateAccount(ctx context.Context, keepUsername, dob string) (Status, error) {
	return f.run(ctx, "resolve_duplicate", func(ctx context.Context, log *slog.Logger, s *state) (Status, error) {
		d, ok := s.stage.(StageDuplicateAccount)
		if !ok {
			return StatusUnspecified, ErrWrongStage
		}
		if err := requireInteraction(s); err != nil {
			return StatusUnspecified, err
		}

		keepUsername = strings.TrimSpace(keepUsername)
		dob = strings.TrimSpace(dob)
		if keepUsername == "" || dob == "" {
			return StatusValidationFailure, nil
		}
		if _, err := time.Parse(dobLayout, dob); err != nil {
			return StatusValidationFailure, nil
		}
		if len(d.Accounts) > 0 && !slices.ContainsFunc(d.Accounts, func(a LinkedAccount) bool {
			return strings.EqualFold(a.Username, keepUsername)
		}) {
			return StatusValidationFailure, nil
		}

		s.dob = dob
		s.apiErrors = nil
		resp, err := f.api.DeactivateAccount(ctx, esapi.DeactivateAccountRequest{
			KeepUsername:     keepUsername,
			DateOfBirth:      dob,
			InteractionID:    s.ictx.InteractionID,
			InteractionToken: s.ictx.InteractionToken,
		})
		if err != nil {
			return f.reject(log, s, err, StatusRejected, false), nil
		}

		s.creds.Username = keepUsername
		return f.complete(ctx, log, s, resp), nil
	})
}
