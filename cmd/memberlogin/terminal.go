package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/aussiebroadwan/memberauth/internal/login"
)

var (
	errBlocked   = errors.New("sign-in is blocked, try again later")
	errLockedOut = errors.New("too many wrong codes, start a new sign-in")
	errRedirect  = errors.New("sign-in needs to continue in the browser")
	errUnhandled = errors.New("sign-in failed")
)

// terminal prompts on out and reads answers from in, one per line.
// Passwords are read without echo when in is a terminal.
type terminal struct {
	in     *bufio.Scanner
	secret func() ([]byte, error)
	out    io.Writer
	opts   options
}

func newTerminal(in io.Reader, out io.Writer, opts options) *terminal {
	t := &terminal{in: bufio.NewScanner(in), out: out, opts: opts}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		t.secret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return t
}

func (t *terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) ask(prompt string) (string, error) {
	t.printf("%s: ", prompt)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

// askSecret is ask for passwords. Piped input falls back to ask.
func (t *terminal) askSecret(prompt string) (string, error) {
	if t.secret == nil {
		return t.ask(prompt)
	}
	t.printf("%s: ", prompt)
	b, err := t.secret()
	t.printf("\n")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// run drives the flow until it reaches a terminal stage.
func (t *terminal) run(ctx context.Context, flow *login.Flow) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap := flow.Snapshot()
		for _, e := range snap.APIErrors {
			t.printf("! %s\n", e.Message)
		}

		var (
			status login.Status
			err    error
		)
		switch st := snap.Stage.(type) {
		case login.StageCredentials:
			status, err = t.credentials(ctx, flow)
		case login.StageMFA:
			status, err = t.mfa(ctx, flow, st.MFAState)
		case login.StageVerifyEmail:
			status, err = t.verifyEmail(ctx, flow, st)
		case login.StageEmailUniqueness:
			t.printf("The email %s is shared with another account.\n", st.MaskedEmail)
			var email string
			if email, err = t.ask("New email address"); err == nil {
				status, err = flow.SubmitUniqueEmail(ctx, email)
			}
		case login.StagePasswordReset:
			status, err = t.passwordReset(ctx, flow)
		case login.StageDuplicateAccount:
			status, err = t.duplicate(ctx, flow, st)
		case login.StageAuthenticated:
			t.printf("Signed in as %s.\n", snap.Username)
			if t.opts.ShowToken && st.SessionToken != "" {
				t.printf("%s\n", st.SessionToken)
			}
			return nil
		case login.StageBlocked:
			return fmt.Errorf("%w (%s)", errBlocked, st.Reason)
		case login.StageMFALockout:
			return errLockedOut
		case login.StageRiskRedirect:
			return fmt.Errorf("%w (%s risk)", errRedirect, st.Level)
		case login.StageUnhandledError:
			return errUnhandled
		}
		if err != nil {
			return err
		}
		if status == login.StatusValidationFailure {
			t.printf("! That doesn't look right, try again.\n")
		}
	}
}

func (t *terminal) credentials(ctx context.Context, flow *login.Flow) (login.Status, error) {
	username, password := t.opts.Username, t.opts.Password
	var err error
	if username == "" {
		if username, err = t.ask("Username"); err != nil {
			return login.StatusUnspecified, err
		}
	}
	if password == "" {
		if password, err = t.askSecret("Password"); err != nil {
			return login.StatusUnspecified, err
		}
	}
	// Given credentials are used once; a failed attempt prompts.
	t.opts.Username, t.opts.Password = "", ""

	return flow.Login(ctx, username, password, login.DeviceFingerprint{UserAgent: "memberlogin"})
}

func (t *terminal) mfa(ctx context.Context, flow *login.Flow, m login.MFAState) (login.Status, error) {
	if m.Step == login.StepSelection {
		t.printf("Where should we send your security code?\n")
		for i, o := range m.Options {
			t.printf("  %d) %s %s\n", i+1, o.SelectionText, o.Device)
		}
		choice, err := t.choose("Choice", len(m.Options))
		if err != nil {
			return login.StatusUnspecified, err
		}
		return flow.SelectDevice(ctx, m.Options[choice].ID)
	}

	if m.Selected != nil {
		t.printf("Code sent via %s.\n", m.Selected.SelectionText)
	}
	answer, err := t.ask("Security code (r to resend, d for a different method)")
	if err != nil {
		return login.StatusUnspecified, err
	}
	switch strings.ToLower(answer) {
	case "r":
		return flow.ResendCode(ctx)
	case "d":
		return flow.UseDifferentMethod(ctx)
	default:
		return flow.SubmitCode(ctx, answer)
	}
}

func (t *terminal) verifyEmail(ctx context.Context, flow *login.Flow, v login.StageVerifyEmail) (login.Status, error) {
	t.printf("We emailed a code to %s.\n", v.MaskedEmail)
	answer, err := t.ask("Email code (r to resend)")
	if err != nil {
		return login.StatusUnspecified, err
	}
	if strings.EqualFold(answer, "r") {
		return flow.ResendEmailCode(ctx)
	}
	return flow.VerifyEmail(ctx, answer)
}

func (t *terminal) passwordReset(ctx context.Context, flow *login.Flow) (login.Status, error) {
	t.printf("Your password must be changed before you continue.\n")
	pw, err := t.askSecret("New password")
	if err != nil {
		return login.StatusUnspecified, err
	}
	confirm, err := t.askSecret("Confirm new password")
	if err != nil {
		return login.StatusUnspecified, err
	}
	return flow.ResetPassword(ctx, pw, confirm)
}

func (t *terminal) duplicate(ctx context.Context, flow *login.Flow, d login.StageDuplicateAccount) (login.Status, error) {
	t.printf("More than one account belongs to you. Which one do you want to keep?\n")
	for i, a := range d.Accounts {
		last := a.LastLogin
		if last == "" {
			last = "never"
		}
		t.printf("  %d) %s (last sign-in %s)\n", i+1, a.Username, last)
	}
	choice, err := t.choose("Choice", len(d.Accounts))
	if err != nil {
		return login.StatusUnspecified, err
	}
	dob, err := t.ask("Date of birth (YYYY-MM-DD)")
	if err != nil {
		return login.StatusUnspecified, err
	}
	return flow.ResolveDuplicateAccount(ctx, d.Accounts[choice].Username, dob)
}

// choose reads a 1-based menu choice and returns it 0-based.
func (t *terminal) choose(prompt string, n int) (int, error) {
	for {
		answer, err := t.ask(prompt)
		if err != nil {
			return 0, err
		}
		i, err := strconv.Atoi(answer)
		if err == nil && i >= 1 && i <= n {
			return i - 1, nil
		}
		t.printf("! Pick a number from 1 to %d.\n", n)
	}
}
