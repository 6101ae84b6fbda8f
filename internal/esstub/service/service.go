// Package service implements the ES login API on top of the account store:
// password checks with lockout, interaction tracking, code dispatch, the
// account gates and session issuance.
package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/memberauth/internal/esstub/store"
	"github.com/aussiebroadwan/memberauth/pkg/cryptox"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/housekeeping"
)

// Config tunes the simulated backend.
type Config struct {
	Issuer        string
	SigningSecret []byte

	// PolicyID and AppID, when set, must match every login request.
	PolicyID string
	AppID    string

	SessionTTL       time.Duration
	InteractionTTL   time.Duration
	CodeTTL          time.Duration
	CodeDigits       int
	MaxLoginFailures int
	LockoutDuration  time.Duration
	MaxCodeAttempts  int
}

func (c Config) withDefaults() Config {
	if c.Issuer == "" {
		c.Issuer = "esstub"
	}
	if len(c.SigningSecret) == 0 {
		c.SigningSecret = []byte(cryptox.MustGenerateToken(cryptox.TokenSize256))
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = time.Hour
	}
	if c.InteractionTTL <= 0 {
		c.InteractionTTL = 15 * time.Minute
	}
	if c.CodeTTL <= 0 {
		c.CodeTTL = 5 * time.Minute
	}
	if c.CodeDigits <= 0 {
		c.CodeDigits = 6
	}
	if c.MaxLoginFailures <= 0 {
		c.MaxLoginFailures = 5
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 15 * time.Minute
	}
	if c.MaxCodeAttempts <= 0 {
		c.MaxCodeAttempts = 3
	}
	return c
}

// Service is the simulated ES backend.
type Service struct {
	store  *store.Store
	cfg    Config
	logger *slog.Logger

	Outbox *Outbox

	interactions *interactions
	failures     *failures

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithOutbox replaces the code outbox.
func WithOutbox(o *Outbox) Option {
	return func(s *Service) { s.Outbox = o }
}

func New(st *store.Store, cfg Config, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:        st,
		cfg:          cfg.withDefaults(),
		logger:       logger,
		interactions: newInteractions(),
		failures:     newFailures(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Outbox == nil {
		s.Outbox = NewOutbox(logger, false)
	}
	return s
}

// HousekeepingTasks returns the cleanup jobs for expired interactions and
// stale lockout counters.
func (s *Service) HousekeepingTasks() []housekeeping.Task {
	return []housekeeping.Task{
		{
			Name: "expired_interactions",
			Run: func(_ context.Context, now time.Time) (int, error) {
				return s.interactions.sweep(now), nil
			},
		},
		{
			Name: "stale_login_failures",
			Run: func(_ context.Context, now time.Time) (int, error) {
				return s.failures.sweep(now, s.cfg.LockoutDuration), nil
			},
		},
	}
}

// ============================================================================
// Rejections
// ============================================================================

func rejectInvalidRequest(desc string) *esapi.APIError {
	return esapi.NewAPIError(http.StatusBadRequest, esapi.CodeInvalidRequest, desc)
}

var (
	errInvalidCredentials = esapi.NewAPIError(http.StatusUnauthorized, esapi.CodeInvalidCredentials, "invalid username or password")
	errAccountInactive    = esapi.NewAPIError(http.StatusForbidden, esapi.CodeAccountInactive, "account is inactive")
	errTooManyAttempts    = esapi.NewAPIError(http.StatusTooManyRequests, esapi.CodeTooManyAttempts, "too many failed login attempts")
	errInteraction        = esapi.NewAPIError(http.StatusUnauthorized, esapi.CodeInteractionExpired, "interaction not found or expired")
	errInvalidOTP         = esapi.NewAPIError(http.StatusBadRequest, esapi.CodeInvalidOTP, "invalid code")
	errOTPExpired         = esapi.NewAPIError(http.StatusBadRequest, esapi.CodeOTPExpired, "code expired")
	errOTPLimit           = esapi.NewAPIError(http.StatusTooManyRequests, esapi.CodeOTPLimitReached, "code attempt limit reached")
	errDeviceUnavailable  = esapi.NewAPIError(http.StatusBadRequest, esapi.CodeDeviceUnavailable, "device unavailable")
	errEmailInUse         = esapi.NewAPIError(http.StatusConflict, esapi.CodeEmailInUse, "email address already in use")
	errInvalidEmail       = esapi.NewAPIError(http.StatusBadRequest, esapi.CodeInvalidEmail, "invalid email address")
	errPasswordPolicy     = esapi.NewAPIError(http.StatusBadRequest, esapi.CodePasswordPolicy, "password does not meet policy")
	errPasswordReused     = esapi.NewAPIError(http.StatusBadRequest, esapi.CodePasswordReused, "password was used before")
	errIdentityMismatch   = esapi.NewAPIError(http.StatusBadRequest, esapi.CodeIdentityMismatch, "identity could not be confirmed")
	errHighRisk           = esapi.NewAPIError(http.StatusForbidden, esapi.CodeHighRisk, "login blocked by risk assessment")
	errIndeterminateRisk  = esapi.NewAPIError(http.StatusForbidden, esapi.CodeIndeterminateRisk, "risk assessment inconclusive")
)

func sameUser(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
