package login

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/idx"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

var (
	// ErrBusy is returned when another action is still in flight.
	ErrBusy = errors.New("login: an action is already in progress")
	// ErrWrongStage is returned when an action is not valid in the current stage.
	ErrWrongStage = errors.New("login: action not valid in current stage")
	// ErrNoInteraction is returned when a follow-up call has no interaction context.
	ErrNoInteraction = errors.New("login: no interaction context")
	// ErrAbandoned is returned by an action whose result was discarded
	// because ResetToHome ran while it was in flight.
	ErrAbandoned = errors.New("login: attempt was reset while in flight")
	// ErrCanceled is returned by an action whose caller gave up before it
	// finished. The flow stays in the stage it was in.
	ErrCanceled = errors.New("login: action canceled by caller")
)

// API is the subset of the ES API the flow drives. *esapi.Client satisfies it.
type API interface {
	Login(ctx context.Context, req esapi.LoginRequest) (*esapi.LoginResponse, error)
	SelectDevice(ctx context.Context, req esapi.SelectDeviceRequest) (*esapi.SelectDeviceResponse, error)
	ProvideOTP(ctx context.Context, req esapi.ProvideOTPRequest) (*esapi.LoginResponse, error)
	VerifyEmail(ctx context.Context, req esapi.VerifyEmailRequest) (*esapi.LoginResponse, error)
	Reactivate(ctx context.Context, req esapi.VerifyEmailRequest) (*esapi.LoginResponse, error)
	VerifyUniqueEmail(ctx context.Context, req esapi.VerifyEmailRequest) (*esapi.LoginResponse, error)
	UpdateEmail(ctx context.Context, req esapi.UpdateEmailRequest) (*esapi.LoginResponse, error)
	ResetPassword(ctx context.Context, req esapi.ResetPasswordRequest) (*esapi.LoginResponse, error)
	DeactivateAccount(ctx context.Context, req esapi.DeactivateAccountRequest) (*esapi.LoginResponse, error)
}

var _ API = (*esapi.Client)(nil)

// Config holds the fixed identifiers sent with every attempt and the
// destinations for risk-engine redirects.
type Config struct {
	PolicyID             string
	AppID                string
	HighRiskURL          string
	IndeterminateRiskURL string
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger used for transitions. Without it the logger
// is taken from the action's context.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// InteractionContext correlates the calls of one attempt.
type InteractionContext struct {
	InteractionID    string
	InteractionToken string
	UserToken        string
	SessionToken     string
}

func (c InteractionContext) valid() bool {
	return c.InteractionID != "" && c.InteractionToken != ""
}

// DeviceFingerprint is passed through to the ES API untouched.
type DeviceFingerprint struct {
	IPAddress string
	UserAgent string
	Profile   string
}

// Credentials are kept for the attempt so resend and different-method can
// re-run the credential submission.
type Credentials struct {
	Username    string
	Password    string
	Fingerprint DeviceFingerprint
}

// state is everything one attempt owns. Actions work on a copy and the copy
// is committed in a single locked update.
type state struct {
	attemptID idx.ID
	creds     Credentials
	ictx      InteractionContext
	stage     Stage

	code         string
	dob          string
	pendingEmail string
	apiErrors    []InlineError
}

func freshState() state {
	return state{stage: StageCredentials{}}
}

func (s state) clone() state {
	out := s
	out.apiErrors = slices.Clone(s.apiErrors)
	return out
}

// Flow is one member's login attempt.
type Flow struct {
	api    API
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	state state
	busy  bool
	gen   uint64
}

// New returns a flow at the credentials stage.
func New(api API, cfg Config, opts ...Option) *Flow {
	f := &Flow{
		api:   api,
		cfg:   cfg,
		state: freshState(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot is a read-only view of a flow.
type Snapshot struct {
	AttemptID string
	Stage     Stage
	Flags     Flags
	APIErrors []InlineError
	Username  string
	Busy      bool
}

// MFA returns the MFA state when the flow is in the MFA stage.
func (s Snapshot) MFA() (MFAState, bool) {
	m, ok := s.Stage.(StageMFA)
	return m.MFAState, ok
}

// Snapshot returns the current view of the flow.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return Snapshot{
		AttemptID: f.state.attemptID.String(),
		Stage:     cloneStage(f.state.stage),
		Flags:     FlagsFor(f.state.stage),
		APIErrors: slices.Clone(f.state.apiErrors),
		Username:  f.state.creds.Username,
		Busy:      f.busy,
	}
}

// Flags returns the boolean view of the current stage.
func (f *Flow) Flags() Flags {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FlagsFor(f.state.stage)
}

// ResetToHome returns the flow to the pre-attempt state. Calling it twice
// is the same as calling it once. An action in flight when it is called
// has its result discarded.
func (f *Flow) ResetToHome() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		f.gen++
		f.busy = false
	}
	f.state = freshState()
}

// SetCode buffers the code being typed in the MFA code step.
func (f *Flow) SetCode(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return ErrBusy
	}
	if m, ok := f.state.stage.(StageMFA); !ok || m.Step != StepCode {
		return ErrWrongStage
	}
	f.state.code = code
	return nil
}

// action is the body of a flow operation. It may mutate s freely; s is
// committed only if the action returns without error and was not abandoned.
type action func(ctx context.Context, log *slog.Logger, s *state) (Status, error)

func (f *Flow) run(ctx context.Context, op string, fn action) (Status, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return StatusUnspecified, ErrBusy
	}
	f.busy = true
	gen := f.gen
	s := f.state.clone()
	f.mu.Unlock()

	log := f.logger
	if log == nil {
		log = slogx.FromContext(ctx)
	}
	log = log.With("op", op)

	from := s.stage.Kind()
	status, err := fn(ctx, log, &s)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen {
		log.Info("login action abandoned by reset", "attempt_id", s.attemptID)
		return StatusUnspecified, ErrAbandoned
	}
	f.busy = false
	if errors.Is(ctx.Err(), context.Canceled) {
		log.Info("login action abandoned by caller", "attempt_id", s.attemptID, "from", from)
		return StatusUnspecified, ErrCanceled
	}
	if err != nil {
		return StatusUnspecified, err
	}

	f.state = s

	level := slog.LevelInfo
	if status == StatusValidationFailure {
		level = slog.LevelDebug
	}
	log.Log(ctx, level, "login transition",
		"attempt_id", s.attemptID,
		"from", from,
		"to", s.stage.Kind(),
		"status", status.String(),
	)
	return status, nil
}

// reject routes a failed ES call. Inline rejections keep the current stage
// and return inline; everything else moves to the stage its class demands.
// codeStage enables the OTP-limit lockout.
func (f *Flow) reject(log *slog.Logger, s *state, err error, inline Status, codeStage bool) Status {
	class, apiErr := classify(err)
	switch class {
	case classLockout:
		s.stage = StageBlocked{Reason: BlockedTooManyAttempts}
		return StatusTooManyAttempts
	case classInactive:
		s.stage = StageBlocked{Reason: BlockedAccountInactive}
		return StatusAccountInactive
	case classRisk:
		level := riskCodes[apiErr.Code]
		s.stage = StageRiskRedirect{Level: level, RedirectURL: f.riskURL(level)}
		return StatusRiskRedirect
	case classOTPLimit:
		if codeStage {
			s.stage = StageMFALockout{}
			return StatusMFALockout
		}
	case classInline:
		s.apiErrors = []InlineError{{Code: apiErr.Code, Message: Messages[apiErr.Code]}}
		return inline
	}

	if apiErr != nil {
		log.Warn("unhandled es rejection", "attempt_id", s.attemptID, "code", apiErr.Code, "http_status", apiErr.StatusCode)
	} else {
		log.Error("es call failed", "attempt_id", s.attemptID, "err", err)
	}
	return unhandled(s)
}

func (f *Flow) riskURL(level RiskLevel) string {
	if level == RiskHigh {
		return f.cfg.HighRiskURL
	}
	return f.cfg.IndeterminateRiskURL
}

func unhandled(s *state) Status {
	s.stage = StageUnhandledError{}
	s.apiErrors = nil
	return StatusError
}

// requireInteraction guards every follow-up call.
func requireInteraction(s *state) error {
	if !s.ictx.valid() {
		return ErrNoInteraction
	}
	return nil
}
