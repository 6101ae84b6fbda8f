package http

import (
	"github.com/aussiebroadwan/memberauth/internal/login"
)

// StateResponse is the rendered flow. Every portal endpoint answers with it.
type StateResponse struct {
	FlowID    string              `json:"flowId,omitempty"`
	AttemptID string              `json:"attemptId,omitempty"`
	Status    string              `json:"status,omitempty"`
	Stage     string              `json:"stage"`
	Flags     login.Flags         `json:"flags"`
	Errors    []login.InlineError `json:"errors,omitempty"`
	Username  string              `json:"username,omitempty"`
	Busy      bool                `json:"busy,omitempty"`

	MFA      *login.MFAState `json:"mfa,omitempty"`
	Email    *EmailView      `json:"email,omitempty"`
	Accounts []AccountView   `json:"accounts,omitempty"`
	Blocked  string          `json:"blockedReason,omitempty"`
	Redirect *RedirectView   `json:"redirect,omitempty"`
}

type EmailView struct {
	Variant     login.EmailVariant `json:"variant,omitempty"`
	MaskedEmail string             `json:"maskedEmail"`
}

type AccountView struct {
	Username  string `json:"username"`
	LastLogin string `json:"lastLogin,omitempty"`
}

type RedirectView struct {
	Level login.RiskLevel `json:"level"`
	URL   string          `json:"url"`
}

// render builds the response for a snapshot. The session token of an
// authenticated stage is never rendered; it travels in a cookie.
func render(flowID string, snap login.Snapshot, status *login.Status) StateResponse {
	resp := StateResponse{
		FlowID:    flowID,
		AttemptID: snap.AttemptID,
		Stage:     snap.Stage.Kind(),
		Flags:     snap.Flags,
		Errors:    snap.APIErrors,
		Username:  snap.Username,
		Busy:      snap.Busy,
	}
	if status != nil {
		resp.Status = status.String()
	}

	switch st := snap.Stage.(type) {
	case login.StageMFA:
		m := st.MFAState
		resp.MFA = &m
	case login.StageVerifyEmail:
		resp.Email = &EmailView{Variant: st.Variant, MaskedEmail: st.MaskedEmail}
	case login.StageEmailUniqueness:
		resp.Email = &EmailView{MaskedEmail: st.MaskedEmail}
	case login.StageDuplicateAccount:
		for _, a := range st.Accounts {
			resp.Accounts = append(resp.Accounts, AccountView{Username: a.Username, LastLogin: a.LastLogin})
		}
	case login.StageBlocked:
		resp.Blocked = string(st.Reason)
	case login.StageRiskRedirect:
		resp.Redirect = &RedirectView{Level: st.Level, URL: st.RedirectURL}
	}
	return resp
}

// idleState is the view when no flow exists yet.
func idleState() StateResponse {
	st := login.StageCredentials{}
	return StateResponse{Stage: st.Kind(), Flags: login.FlagsFor(st)}
}

// terminal reports whether the attempt is over and the flow can be dropped.
func terminal(st login.Stage) bool {
	_, ok := st.(login.StageAuthenticated)
	return ok
}

// finished reports stages that end an attempt, for metrics.
func finished(st login.Stage) bool {
	switch st.(type) {
	case login.StageAuthenticated, login.StageBlocked, login.StageMFALockout,
		login.StageRiskRedirect, login.StageUnhandledError:
		return true
	}
	return false
}
