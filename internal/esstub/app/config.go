package app

import (
	"time"

	"github.com/aussiebroadwan/memberauth/pkg/envx"
)

type Config struct {
	DatabaseFile  string // Optional: path to SQLite database file, ":memory:" for throwaway runs (default: ./esstub.db)
	SigningSecret string // Optional: HS256 secret for session tokens (default: random per process)
	Seed          bool   // Optional: insert the demo accounts into an empty database (default: true)
	PolicyID      string // Optional: policy id every login must carry
	AppID         string // Optional: application id every login must carry
	LogCodes      bool   // Optional: log dispatched codes in the clear (default: false)
	ExposeOutbox  bool   // Optional: serve GET /_dev/outbox/{username} (default: true in dev)

	SessionTTL       time.Duration // Session token lifetime (default: 1h)
	InteractionTTL   time.Duration // Interaction lifetime (default: 15m)
	CodeTTL          time.Duration // One-time code lifetime (default: 5m)
	MaxLoginFailures int           // Failed logins before lockout (default: 5)
	LockoutDuration  time.Duration // Lockout length (default: 15m)
	MaxCodeAttempts  int           // Wrong codes per interaction before UI-412 (default: 3)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8081)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1m)
}

func LoadConfig() Config {
	envx.LoadDotEnv()

	env := envx.GetOrDefault("ENV", "dev")
	return Config{
		DatabaseFile:  envx.GetOrDefault("ESSTUB_DATABASE_FILE", "esstub.db"),
		SigningSecret: envx.GetOrDefault("ESSTUB_SIGNING_SECRET", ""),
		Seed:          envx.BoolOrDefault("ESSTUB_SEED", true),
		PolicyID:      envx.GetOrDefault("ESSTUB_POLICY_ID", ""),
		AppID:         envx.GetOrDefault("ESSTUB_APP_ID", ""),
		LogCodes:      envx.BoolOrDefault("ESSTUB_LOG_CODES", false),
		ExposeOutbox:  envx.BoolOrDefault("ESSTUB_EXPOSE_OUTBOX", env == "dev"),

		SessionTTL:       envx.DurationOrDefault("ESSTUB_SESSION_TTL", time.Hour),
		InteractionTTL:   envx.DurationOrDefault("ESSTUB_INTERACTION_TTL", 15*time.Minute),
		CodeTTL:          envx.DurationOrDefault("ESSTUB_CODE_TTL", 5*time.Minute),
		MaxLoginFailures: envx.IntOrDefault("ESSTUB_MAX_LOGIN_FAILURES", 5),
		LockoutDuration:  envx.DurationOrDefault("ESSTUB_LOCKOUT_DURATION", 15*time.Minute),
		MaxCodeAttempts:  envx.IntOrDefault("ESSTUB_MAX_CODE_ATTEMPTS", 3),

		Env:                  env,
		LogLevel:             envx.GetOrDefault("LOG_LEVEL", "info"),
		LogFormat:            envx.GetOrDefault("LOG_FORMAT", "json"),
		Port:                 envx.IntOrDefault("PORT", 8081),
		ShutdownGracePeriod:  envx.DurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: envx.DurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}
