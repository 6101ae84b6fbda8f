package http

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Field contents are checked by the flow itself, which reports a
// VALIDATION_FAILURE status. The tags here only bound request sizes.

type LoginRequest struct {
	Username string `json:"username" validate:"max=128"`
	Password string `json:"password" validate:"max=256"`
}

type SelectDeviceRequest struct {
	DeviceID string `json:"deviceId" validate:"max=128"`
}

type CodeRequest struct {
	Code string `json:"code" validate:"max=16"`
}

type UniqueEmailRequest struct {
	Email string `json:"email" validate:"max=254"`
}

type PasswordRequest struct {
	NewPassword     string `json:"newPassword" validate:"max=256"`
	ConfirmPassword string `json:"confirmPassword" validate:"max=256"`
}

type DuplicateRequest struct {
	KeepUsername string `json:"keepUsername" validate:"max=128"`
	DateOfBirth  string `json:"dateOfBirth" validate:"omitempty,max=10"`
}

type emptyRequest struct{}
