package store

import (
	"context"
	"database/sql"
	"time"
)

// AccountStatus is the lifecycle state of a login.
type AccountStatus string

const (
	StatusActive      AccountStatus = "active"
	StatusInactive    AccountStatus = "inactive"
	StatusDeactivated AccountStatus = "deactivated"
)

// Risk is the fraud-scoring verdict the stub returns for an account.
type Risk string

const (
	RiskLow           Risk = "low"
	RiskHigh          Risk = "high"
	RiskIndeterminate Risk = "indeterminate"
)

// Account is one member login.
type Account struct {
	Username              string
	PasswordHash          string
	Email                 string
	EmailVerified         bool
	EmailUnique           bool
	Status                AccountStatus
	PasswordResetRequired bool
	DuplicateGroup        string // logins sharing a group belong to the same member
	DateOfBirth           string // YYYY-MM-DD
	Risk                  Risk
	MFADisabled           bool
	LastLoginAt           *time.Time
}

const accountColumns = `username, password_hash, email, email_verified, email_unique, status,
	password_reset_required, duplicate_group, date_of_birth, risk, mfa_disabled, last_login_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var (
		a         Account
		lastLogin string
	)
	err := row.Scan(
		&a.Username, &a.PasswordHash, &a.Email, &a.EmailVerified, &a.EmailUnique, &a.Status,
		&a.PasswordResetRequired, &a.DuplicateGroup, &a.DateOfBirth, &a.Risk, &a.MFADisabled, &lastLogin,
	)
	if err != nil {
		return Account{}, err
	}
	if lastLogin != "" {
		if t, err := time.Parse(time.RFC3339, lastLogin); err == nil {
			a.LastLoginAt = &t
		}
	}
	return a, nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// CreateAccount inserts a new account. Zero Status and Risk default to
// active and low.
func (s *Store) CreateAccount(ctx context.Context, a Account) error {
	if a.Status == "" {
		a.Status = StatusActive
	}
	if a.Risk == "" {
		a.Risk = RiskLow
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Username, a.PasswordHash, a.Email, a.EmailVerified, a.EmailUnique, string(a.Status),
		a.PasswordResetRequired, a.DuplicateGroup, a.DateOfBirth, string(a.Risk), a.MFADisabled,
		formatOptionalTime(a.LastLoginAt),
	)
	return mapConstraint(err)
}

// GetAccount looks an account up by username, case-insensitively.
func (s *Store) GetAccount(ctx context.Context, username string) (Account, error) {
	return getAccount(ctx, s.db, username)
}

func getAccount(ctx context.Context, q querier, username string) (Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, mapNotFound(err)
	}
	return a, nil
}

// ListDuplicates returns every account in the given duplicate group ordered
// by username. An empty group matches nothing.
func (s *Store) ListDuplicates(ctx context.Context, group string) ([]Account, error) {
	if group == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE duplicate_group = ? ORDER BY username`, group)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountAccounts returns the number of stored accounts.
func (s *Store) CountAccounts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

// EmailInUse reports whether any account other than username uses email.
func (s *Store) EmailInUse(ctx context.Context, email, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE email = ? AND username <> ?`, email, username).Scan(&n)
	return n > 0, err
}

// UpdatePassword stores a new hash and clears any forced reset.
func (s *Store) UpdatePassword(ctx context.Context, username, hash string) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE accounts
		SET password_hash = ?, password_reset_required = 0, updated_at = CURRENT_TIMESTAMP
		WHERE username = ?`, hash, username))
}

// MarkEmailVerified records that the member confirmed their current address.
func (s *Store) MarkEmailVerified(ctx context.Context, username string) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE accounts
		SET email_verified = 1, updated_at = CURRENT_TIMESTAMP
		WHERE username = ?`, username))
}

// ReplaceEmail stores a confirmed replacement address, which is verified
// and unique by construction.
func (s *Store) ReplaceEmail(ctx context.Context, username, email string) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE accounts
		SET email = ?, email_verified = 1, email_unique = 1, updated_at = CURRENT_TIMESTAMP
		WHERE username = ?`, email, username))
}

// SetStatus changes the lifecycle state of an account.
func (s *Store) SetStatus(ctx context.Context, username string, status AccountStatus) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE accounts
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE username = ?`, string(status), username))
}

// TouchLogin records a completed login.
func (s *Store) TouchLogin(ctx context.Context, username string, at time.Time) error {
	return requireAffected(s.db.ExecContext(ctx, `
		UPDATE accounts
		SET last_login_at = ?
		WHERE username = ?`, at.UTC().Format(time.RFC3339), username))
}

// ResolveDuplicates keeps one login of a duplicate group and deactivates the
// rest. Every member of the group leaves it.
func (s *Store) ResolveDuplicates(ctx context.Context, group, keep string) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		kept, err := getAccount(ctx, tx, keep)
		if err != nil {
			return err
		}
		if kept.DuplicateGroup != group {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET status = 'deactivated', duplicate_group = '', updated_at = CURRENT_TIMESTAMP
			WHERE duplicate_group = ? AND username <> ?`, group, kept.Username); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE accounts
			SET duplicate_group = '', updated_at = CURRENT_TIMESTAMP
			WHERE username = ?`, kept.Username)
		return err
	})
}
