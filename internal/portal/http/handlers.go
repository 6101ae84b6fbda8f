package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/httpx"
	"github.com/aussiebroadwan/memberauth/pkg/idx"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

const maxBodyBytes = 16 << 10

// step adapts a flow action to an HTTP handler. With start set a missing
// or unknown flow cookie gets a new flow; otherwise it is a 404.
func step[Req any](rt *Router, action string, start bool, fn func(context.Context, *http.Request, *login.Flow, Req) (login.Status, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		var req Req
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			log.Warn("failed to parse request", "action", action, "err", err)
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			log.Warn("request failed validation", "action", action, "err", err)
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Request field too long")
			return
		}

		id, f, ok := rt.resolveFlow(r, start)
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "flow_not_found", "No login in progress")
			return
		}

		ctx = httpx.WithFlowID(ctx, id.String())
		ctx = slogx.With(ctx, "flow_id", id.String())

		status, err := fn(ctx, r, f, req)
		if err != nil {
			rt.cookies.setFlow(w, id)
			rt.metrics.observeAction(action, flowErrorCode(err))
			writeFlowError(w, slogx.FromContext(ctx), action, err)
			return
		}
		rt.metrics.observeAction(action, status.String())

		rt.respond(ctx, w, id, f, &status)
	}
}

// respond renders the flow and refreshes the flow cookie so it lives as
// long as the idle flow does. Once the member is signed in it hands the
// session over in a cookie and retires the flow instead.
func (rt *Router) respond(ctx context.Context, w http.ResponseWriter, id idx.ID, f *login.Flow, status *login.Status) {
	log := slogx.FromContext(ctx)
	snap := f.Snapshot()
	resp := render(id.String(), snap, status)

	if status != nil && finished(snap.Stage) {
		rt.metrics.observeFinished(snap.Stage.Kind())
	}

	if terminal(snap.Stage) {
		auth := snap.Stage.(login.StageAuthenticated)
		if auth.SessionToken != "" {
			sub := rt.cookies.setSession(w, auth.SessionToken)
			log.Info("member signed in", "attempt_id", snap.AttemptID, "subject", sub)
		}
		rt.flows.Delete(id)
		rt.cookies.clearFlow(w)
		resp.FlowID = ""
	} else {
		rt.cookies.setFlow(w, id)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (rt *Router) resolveFlow(r *http.Request, start bool) (idx.ID, *login.Flow, bool) {
	if id, ok := flowIDFromRequest(r); ok {
		if f, ok := rt.flows.Get(id); ok {
			return id, f, true
		}
	}
	if !start {
		return idx.Zero, nil, false
	}
	id, f := rt.flows.Create()
	return id, f, true
}

func flowErrorCode(err error) string {
	switch {
	case errors.Is(err, login.ErrBusy):
		return "flow_busy"
	case errors.Is(err, login.ErrWrongStage):
		return "wrong_stage"
	case errors.Is(err, login.ErrNoInteraction):
		return "no_interaction"
	case errors.Is(err, login.ErrAbandoned):
		return "flow_reset"
	case errors.Is(err, login.ErrCanceled):
		return "request_canceled"
	default:
		return "server_error"
	}
}

var flowErrorDescriptions = map[string]string{
	"flow_busy":        "Another step of this login is still in progress",
	"wrong_stage":      "This step is not available right now",
	"no_interaction":   "The login has no active interaction; start again",
	"flow_reset":       "The login was restarted while this step was running",
	"request_canceled": "The request was cancelled before this step finished",
}

func writeFlowError(w http.ResponseWriter, log *slog.Logger, action string, err error) {
	code := flowErrorCode(err)
	desc, ok := flowErrorDescriptions[code]
	if !ok {
		log.Error("flow action failed", "action", action, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}
	log.Info("flow action refused", "action", action, "reason", code)
	httpx.WriteError(w, http.StatusConflict, code, desc)
}

func fingerprint(r *http.Request) login.DeviceFingerprint {
	return login.DeviceFingerprint{
		IPAddress: httpx.IPKeyExtractor(r),
		UserAgent: r.UserAgent(),
		Profile:   r.Header.Get("X-Device-Profile"),
	}
}

// handleLogin handles POST /v1/login
//
//	@Summary		Submit credentials
//	@Description	Starts a new attempt. Any attempt already running for this browser is abandoned.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Request body"
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login [post].
func handleLogin(ctx context.Context, r *http.Request, f *login.Flow, req LoginRequest) (login.Status, error) {
	// A fresh submission abandons whatever the flow was doing, like reloading the sign-in page.
	f.ResetToHome()
	return f.Login(ctx, req.Username, req.Password, fingerprint(r))
}

// handleSelectDevice handles POST /v1/login/mfa/device
//
//	@Summary		Select an MFA device
//	@Description	Sends a security code to the chosen device.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SelectDeviceRequest	true	"Request body"
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/mfa/device [post].
func handleSelectDevice(ctx context.Context, _ *http.Request, f *login.Flow, req SelectDeviceRequest) (login.Status, error) {
	return f.SelectDevice(ctx, req.DeviceID)
}

// handleSubmitCode handles POST /v1/login/mfa/code
//
//	@Summary		Submit an MFA code
//	@Description	Submits the security code. An empty code submits the buffered one.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CodeRequest	true	"Request body"
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/mfa/code [post].
func handleSubmitCode(ctx context.Context, _ *http.Request, f *login.Flow, req CodeRequest) (login.Status, error) {
	return f.SubmitCode(ctx, req.Code)
}

// handleResendCode handles POST /v1/login/mfa/resend
//
//	@Summary		Resend the MFA code
//	@Description	Sends a fresh code to the selected device.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/mfa/resend [post].
func handleResendCode(ctx context.Context, _ *http.Request, f *login.Flow, _ emptyRequest) (login.Status, error) {
	return f.ResendCode(ctx)
}

// handleDifferentMethod handles POST /v1/login/mfa/different
//
//	@Summary		Use a different MFA method
//	@Description	Returns to device selection with a fresh device list.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/mfa/different [post].
func handleDifferentMethod(ctx context.Context, _ *http.Request, f *login.Flow, _ emptyRequest) (login.Status, error) {
	return f.UseDifferentMethod(ctx)
}

// handleVerifyEmail handles POST /v1/login/email/verify
//
//	@Summary		Submit an email code
//	@Description	Confirms the email address the code was sent to.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CodeRequest	true	"Request body"
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/email/verify [post].
func handleVerifyEmail(ctx context.Context, _ *http.Request, f *login.Flow, req CodeRequest) (login.Status, error) {
	return f.VerifyEmail(ctx, req.Code)
}

// handleResendEmail handles POST /v1/login/email/resend
//
//	@Summary		Resend the email code
//	@Description	Sends a fresh email code.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/email/resend [post].
func handleResendEmail(ctx context.Context, _ *http.Request, f *login.Flow, _ emptyRequest) (login.Status, error) {
	return f.ResendEmailCode(ctx)
}

// handleUniqueEmail handles POST /v1/login/email/unique
//
//	@Summary		Replace a shared email address
//	@Description	Submits a new email address and sends a code to it.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		UniqueEmailRequest	true	"Request body"
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/email/unique [post].
func handleUniqueEmail(ctx context.Context, _ *http.Request, f *login.Flow, req UniqueEmailRequest) (login.Status, error) {
	return f.SubmitUniqueEmail(ctx, req.Email)
}

// handlePassword handles POST /v1/login/password
//
//	@Summary		Complete a forced password reset
//	@Description	Sets a new password before the attempt continues.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PasswordRequest	true	"Request body"
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/password [post].
func handlePassword(ctx context.Context, _ *http.Request, f *login.Flow, req PasswordRequest) (login.Status, error) {
	return f.ResetPassword(ctx, req.NewPassword, req.ConfirmPassword)
}

// handleDuplicate handles POST /v1/login/duplicate
//
//	@Summary		Resolve duplicate accounts
//	@Description	Keeps one login and deactivates the others.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		DuplicateRequest	true	"Request body"
//	@Success		200	{object}	StateResponse		"Rendered flow state"
//	@Failure		409	{object}	httpx.ErrorResponse	"Step not available or another step in flight"
//	@Router			/v1/login/duplicate [post].
func handleDuplicate(ctx context.Context, _ *http.Request, f *login.Flow, req DuplicateRequest) (login.Status, error) {
	return f.ResolveDuplicateAccount(ctx, req.KeepUsername, req.DateOfBirth)
}

// StateHandler handles GET /v1/login/state
//
//	@Summary		Read the flow state
//	@Description	Renders the current flow without changing it.
//	@Tags			Login
//	@Produce		json
//	@Success		200	{object}	StateResponse	"Rendered flow state"
//	@Router			/v1/login/state [get].
func (rt *Router) StateHandler(w http.ResponseWriter, r *http.Request) {
	id, f, ok := rt.resolveFlow(r, false)
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, idleState())
		return
	}
	rt.respond(r.Context(), w, id, f, nil)
}

// ResetHandler handles POST /v1/login/reset
//
//	@Summary		Start over
//	@Description	Abandons the attempt and clears the flow cookie.
//	@Tags			Login
//	@Produce		json
//	@Success		200	{object}	StateResponse	"Idle flow state"
//	@Router			/v1/login/reset [post].
func (rt *Router) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if id, ok := flowIDFromRequest(r); ok {
		rt.flows.Delete(id)
	}
	rt.cookies.clearFlow(w)
	httpx.WriteJSON(w, http.StatusOK, idleState())
}
