package login

import (
	"slices"
	"strings"

	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

// MFAMode is the kind of second factor a device provides.
type MFAMode string

const (
	ModeAuthenticator MFAMode = "authenticator"
	ModeText          MFAMode = "textNum"
	ModeCall          MFAMode = "callNum"
	ModeEmail         MFAMode = "email"
)

// deviceModes maps ES device types to modes. Lookups are upper-cased.
var deviceModes = map[string]MFAMode{
	"TOTP":          ModeAuthenticator,
	"AUTHENTICATOR": ModeAuthenticator,
	"SMS":           ModeText,
	"TEXT":          ModeText,
	"VOICE":         ModeCall,
	"CALL":          ModeCall,
	"EMAIL":         ModeEmail,
}

// ModeForDeviceType maps an ES device type to its mode.
func ModeForDeviceType(deviceType string) (MFAMode, bool) {
	m, ok := deviceModes[strings.ToUpper(strings.TrimSpace(deviceType))]
	return m, ok
}

// MFAStep is the position inside the MFA stage.
type MFAStep string

const (
	StepSelection MFAStep = "selection"
	StepCode      MFAStep = "code"
)

// MFAOption is a device the member may receive a code on. Device is
// masked; raw contact details are not kept.
type MFAOption struct {
	ID            string  `json:"id"`
	Mode          MFAMode `json:"type"`
	SelectionText string  `json:"selectionText"`
	Device        string  `json:"device"`
}

// MFAState is the MFA sub-flow. The code being typed lives on the Flow.
type MFAState struct {
	Step            MFAStep     `json:"stage"`
	Options         []MFAOption `json:"availMfaModes"`
	Selected        *MFAOption  `json:"selectedMfa"`
	ResendRequested bool        `json:"resendRequested"`
}

func (m MFAState) clone() MFAState {
	out := m
	out.Options = slices.Clone(m.Options)
	if m.Selected != nil {
		sel := *m.Selected
		out.Selected = &sel
	}
	return out
}

// option returns the offered option with the given id.
func (m MFAState) option(id string) (MFAOption, bool) {
	i := slices.IndexFunc(m.Options, func(o MFAOption) bool { return o.ID == id })
	if i < 0 {
		return MFAOption{}, false
	}
	return m.Options[i], true
}

// buildOptions turns the ES device list into display options. Devices with
// an unknown type are returned separately so callers can log them.
func buildOptions(devices []esapi.Device) (opts []MFAOption, skipped []string) {
	for _, d := range devices {
		mode, ok := ModeForDeviceType(d.DeviceType)
		if !ok || d.DeviceID == "" {
			skipped = append(skipped, d.DeviceType)
			continue
		}

		opt := MFAOption{ID: d.DeviceID, Mode: mode}
		switch mode {
		case ModeText:
			opt.SelectionText = "Text me at"
			opt.Device = MaskPhone(d.Phone)
		case ModeCall:
			opt.SelectionText = "Call me at"
			opt.Device = MaskPhone(d.Phone)
		case ModeEmail:
			opt.SelectionText = "Email me at"
			opt.Device = MaskEmail(d.Email)
		case ModeAuthenticator:
			opt.SelectionText = "Use my authenticator app"
			opt.Device = d.Name
			if opt.Device == "" {
				opt.Device = "Authenticator app"
			}
		}
		opts = append(opts, opt)
	}
	return opts, skipped
}
