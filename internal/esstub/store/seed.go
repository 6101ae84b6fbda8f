package store

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/memberauth/pkg/cryptox"
	"github.com/aussiebroadwan/memberauth/pkg/idx"
)

// Demo credentials shared by every seeded account.
const (
	DemoPassword   = "Password1!"
	DemoTOTPSecret = "JBSWY3DPEHPK3PXP"
	DemoDOB        = "1980-01-02"
)

type demoAccount struct {
	account Account
	devices []Device
}

// demoAccounts exercises each branch of the login flow, one login per branch.
var demoAccounts = []demoAccount{
	{account: Account{Username: "member01", Email: "member01@example.com"}},
	{
		account: Account{Username: "member02", Email: "member02@example.com"},
		devices: []Device{{Type: DeviceSMS, Phone: "+61400000002"}},
	},
	{
		account: Account{Username: "member03", Email: "member03@example.com"},
		devices: []Device{
			{Type: DeviceSMS, Phone: "+61400000003"},
			{Type: DeviceEmail, Email: "member03@example.com"},
			{Type: DeviceTOTP, Name: "Authenticator app", TOTPSecret: DemoTOTPSecret},
		},
	},
	{
		account: Account{Username: "member04", Email: "member04@example.com"},
		devices: []Device{{Type: DeviceVoice, Phone: "+61400000004"}},
	},
	{account: Account{Username: "member05", Email: "member05@example.com", PasswordResetRequired: true}},
	{account: Account{Username: "member06", Email: "member06@example.com", DuplicateGroup: "member06", DateOfBirth: DemoDOB}},
	{account: Account{Username: "member06b", Email: "member06b@example.com", DuplicateGroup: "member06", DateOfBirth: DemoDOB}},
	{account: Account{Username: "member07", Email: "member01@example.com"}},
	{account: Account{Username: "member08", Email: "member08@example.com", Status: StatusInactive}},
	{account: Account{Username: "member09", Email: "member09@example.com", Status: StatusDeactivated}},
	{account: Account{Username: "member10", Email: "member10@example.com", Risk: RiskHigh}},
	{account: Account{Username: "member11", Email: "member11@example.com", Risk: RiskIndeterminate}},
	{
		account: Account{Username: "member12", Email: "member12@example.com", MFADisabled: true},
		devices: []Device{{Type: DeviceSMS, Phone: "+61400000012"}},
	},
}

// Demo accounts whose email flags start out false.
var (
	unverified = map[string]bool{"member04": true}
	notUnique  = map[string]bool{"member07": true}
)

// SeedDemo inserts the demo accounts into an empty store. A store that
// already holds accounts is left untouched.
func (s *Store) SeedDemo(ctx context.Context) (int, error) {
	n, err := s.CountAccounts(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	hash, err := cryptox.HashPassword(DemoPassword)
	if err != nil {
		return 0, fmt.Errorf("hash demo password: %w", err)
	}

	for _, demo := range demoAccounts {
		a := demo.account
		a.PasswordHash = hash
		a.EmailVerified = !unverified[a.Username]
		a.EmailUnique = !notUnique[a.Username]
		if err := s.CreateAccount(ctx, a); err != nil {
			return 0, fmt.Errorf("seed account %s: %w", a.Username, err)
		}
		for _, d := range demo.devices {
			d.ID = idx.New().String()
			d.Username = a.Username
			if err := s.CreateDevice(ctx, d); err != nil {
				return 0, fmt.Errorf("seed device for %s: %w", a.Username, err)
			}
		}
	}
	return len(demoAccounts), nil
}
