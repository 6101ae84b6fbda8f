package httpx_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/memberauth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	t.Parallel()

	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	t.Parallel()

	t.Run("extracts and normalises field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":" Member01 ","password":"x"}`))
		require.Equal(t, "member01", httpx.JSONFieldKeyExtractor("username")(req))
	})

	t.Run("restores body for downstream handlers", func(t *testing.T) {
		body := `{"username":"member01"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		_ = httpx.JSONFieldKeyExtractor("username")(req)

		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(raw))
	})

	t.Run("returns empty for missing or non-string field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":42}`))
		require.Empty(t, httpx.JSONFieldKeyExtractor("username")(req))

		req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`))
		require.Empty(t, httpx.JSONFieldKeyExtractor("username")(req))
	})
}

func TestFlowAndCookieKeyExtractors(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, httpx.FlowIDKeyExtractor(req))
	require.Empty(t, httpx.CookieKeyExtractor("portal_flow")(req))

	req = req.WithContext(httpx.WithFlowID(context.Background(), "01FLOW"))
	req.AddCookie(&http.Cookie{Name: "portal_flow", Value: "01COOKIE"})
	require.Equal(t, "01FLOW", httpx.FlowIDKeyExtractor(req))
	require.Equal(t, "01COOKIE", httpx.CookieKeyExtractor("portal_flow")(req))
}

func TestCompositeKeyExtractor(t *testing.T) {
	t.Parallel()

	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.JSONFieldKeyExtractor("username"),
	)

	t.Run("combines multiple extractors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"alice"}`))
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1:alice", extractor(req))
	})

	t.Run("skips empty values", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", extractor(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("blocks requests over limit", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		limited := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler())

		for i := range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		limited := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler())

		for _, tc := range []struct {
			addr string
			want int
		}{
			{"192.168.1.1:1", http.StatusOK},
			{"192.168.1.1:1", http.StatusTooManyRequests},
			{"192.168.1.2:1", http.StatusOK},
		} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.addr
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code, tc.addr)
		}
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		empty := func(*http.Request) string { return "" }
		limited := httpx.RateLimitMiddleware(config, empty)(okHandler())

		for range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	t.Parallel()

	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	var seen []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = append(seen, string(raw))
		w.WriteHeader(http.StatusOK)
	})
	limited := httpx.RateLimitByIPAndJSONField(config, "username")(handler)

	send := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(fmt.Sprintf(`{"username":%q}`, user)))
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("alice"))
	require.Equal(t, http.StatusOK, send("alice"))
	require.Equal(t, http.StatusTooManyRequests, send("alice"))
	require.Equal(t, http.StatusOK, send("bob"))
	require.Len(t, seen, 3)
	require.Equal(t, `{"username":"alice"}`, seen[0])
}

func TestRateLimitByFlow(t *testing.T) {
	t.Parallel()

	config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	limited := httpx.RateLimitByFlow(config)(okHandler())

	send := func(flowID string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/login/mfa/code", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req = req.WithContext(httpx.WithFlowID(req.Context(), flowID))
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("flow-a"))
	require.Equal(t, http.StatusTooManyRequests, send("flow-a"))
	require.Equal(t, http.StatusOK, send("flow-b"))
}

func TestRateLimitProfiles(t *testing.T) {
	t.Parallel()

	profiles := map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
		"public":   httpx.PublicLimit,
	}

	for name, config := range profiles {
		t.Run(name, func(t *testing.T) {
			require.Greater(t, config.RequestsPerWindow, 0)
			require.Greater(t, config.Window, time.Duration(0))
			require.Greater(t, config.Burst, 0)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	defaultConfig := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("NoEnvVarsUsesDefaults", func(t *testing.T) {
		require.Equal(t, defaultConfig, httpx.ParseRateLimitFromEnv("PORTALTEST", defaultConfig))
	})

	t.Run("OverrideAllParameters", func(t *testing.T) {
		t.Setenv("RATELIMIT_PORTALTEST_REQUESTS", "200")
		t.Setenv("RATELIMIT_PORTALTEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_PORTALTEST_BURST", "250")

		config := httpx.ParseRateLimitFromEnv("PORTALTEST", defaultConfig)
		require.Equal(t, 200, config.RequestsPerWindow)
		require.Equal(t, 30*time.Second, config.Window)
		require.Equal(t, 250, config.Burst)
	})

	t.Run("InvalidValuesUseDefaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_PORTALTEST_REQUESTS", "invalid")
		t.Setenv("RATELIMIT_PORTALTEST_WINDOW_SEC", "-10")
		t.Setenv("RATELIMIT_PORTALTEST_BURST", "0")

		require.Equal(t, defaultConfig, httpx.ParseRateLimitFromEnv("PORTALTEST", defaultConfig))
	})
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000}
	limited := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	for b.Loop() {
		limited.ServeHTTP(httptest.NewRecorder(), req)
	}
}
