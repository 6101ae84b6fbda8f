package app

import (
	"time"

	"github.com/aussiebroadwan/memberauth/pkg/envx"
)

type Config struct {
	ESBaseURL            string        // Required: base URL of the ES API (default: http://localhost:8081)
	ESTimeout            time.Duration // Per-request timeout for ES calls (default: 10s)
	PolicyID             string        // Optional: policy id sent with every login
	AppID                string        // Optional: application id sent with every login
	HighRiskURL          string        // Optional: redirect for high risk logins
	IndeterminateRiskURL string        // Optional: redirect for indeterminate risk logins
	FlowTTL              time.Duration // Idle lifetime of a login flow (default: 15m)
	CookieSecure         bool          // Set the Secure attribute on cookies (default: true outside dev)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Idle flow sweep interval (default: 1m)
}

func LoadConfig() Config {
	envx.LoadDotEnv()

	env := envx.GetOrDefault("ENV", "dev")
	return Config{
		ESBaseURL:            envx.GetOrDefault("PORTAL_ES_BASE_URL", "http://localhost:8081"),
		ESTimeout:            envx.DurationOrDefault("PORTAL_ES_TIMEOUT", 10*time.Second),
		PolicyID:             envx.GetOrDefault("PORTAL_POLICY_ID", ""),
		AppID:                envx.GetOrDefault("PORTAL_APP_ID", ""),
		HighRiskURL:          envx.GetOrDefault("PORTAL_HIGH_RISK_URL", "/help/verify-identity"),
		IndeterminateRiskURL: envx.GetOrDefault("PORTAL_INDETERMINATE_RISK_URL", "/help/contact-us"),
		FlowTTL:              envx.DurationOrDefault("PORTAL_FLOW_TTL", 15*time.Minute),
		CookieSecure:         envx.BoolOrDefault("PORTAL_COOKIE_SECURE", env != "dev"),

		Env:                  env,
		LogLevel:             envx.GetOrDefault("LOG_LEVEL", "info"),
		LogFormat:            envx.GetOrDefault("LOG_FORMAT", "json"),
		Port:                 envx.IntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  envx.DurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: envx.DurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}
}
