package store

import "context"

// Device types as the ES API reports them.
const (
	DeviceSMS   = "SMS"
	DeviceVoice = "VOICE"
	DeviceEmail = "EMAIL"
	DeviceTOTP  = "TOTP"
)

// Device is a registered second factor.
type Device struct {
	ID         string
	Username   string
	Type       string
	Phone      string
	Email      string
	Name       string
	TOTPSecret string // base32, authenticator devices only
}

const deviceColumns = `id, username, device_type, phone, email, name, totp_secret`

func scanDevice(row interface{ Scan(...any) error }) (Device, error) {
	var d Device
	err := row.Scan(&d.ID, &d.Username, &d.Type, &d.Phone, &d.Email, &d.Name, &d.TOTPSecret)
	return d, err
}

func (s *Store) CreateDevice(ctx context.Context, d Device) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (`+deviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Username, d.Type, d.Phone, d.Email, d.Name, d.TOTPSecret,
	)
	return mapConstraint(err)
}

// GetDevice returns a device only if it belongs to username.
func (s *Store) GetDevice(ctx context.Context, username, id string) (Device, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = ? AND username = ?`, id, username)
	d, err := scanDevice(row)
	if err != nil {
		return Device{}, mapNotFound(err)
	}
	return d, nil
}

// ListDevices returns the devices registered to username in creation order.
func (s *Store) ListDevices(ctx context.Context, username string) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE username = ? ORDER BY rowid`, username)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
