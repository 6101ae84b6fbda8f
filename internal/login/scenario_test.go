package login_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/stretchr/testify/require"
)

// scriptedES serves one canned status and body per path.
func scriptedES(t *testing.T, routes map[string]func() (int, any)) *esapi.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		status, body := route()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return esapi.NewClient(srv.URL)
}

func respond(status int, body any) func() (int, any) {
	return func() (int, any) { return status, body }
}

func TestScenarios(t *testing.T) {
	t.Parallel()

	t.Run("A completed login", func(t *testing.T) {
		t.Parallel()

		api := scriptedES(t, map[string]func() (int, any){
			esapi.PathLogin: respond(http.StatusOK, map[string]any{"message": "COMPLETED", "interactionId": "i1", "interactionToken": "t1"}),
		})
		f := login.New(api, testConfig)

		status, err := f.Login(context.Background(), "u", "p", login.DeviceFingerprint{})
		require.NoError(t, err)
		require.Equal(t, login.StatusLoginOK, status)
		require.Equal(t, login.Flags{LoggedUser: true}, f.Flags())
	})

	t.Run("B one SMS device", func(t *testing.T) {
		t.Parallel()

		api := scriptedES(t, map[string]func() (int, any){
			esapi.PathLogin: respond(http.StatusOK, map[string]any{
				"message": "OTP_REQUIRED", "interactionId": "i1", "interactionToken": "t1",
				"mfaDeviceList": []map[string]any{{"deviceType": "SMS", "phone": "5551234567", "deviceId": "d1"}},
			}),
		})
		f := login.New(api, testConfig)

		status, err := f.Login(context.Background(), "u", "p", login.DeviceFingerprint{})
		require.NoError(t, err)
		require.Equal(t, login.StatusMFARequiredOneDevice, status)
		require.True(t, f.Flags().MFANeeded)

		m := mfaState(t, f)
		require.Equal(t, login.StepCode, m.Step)
		require.Equal(t, "d1", m.Selected.ID)
	})

	t.Run("C two devices", func(t *testing.T) {
		t.Parallel()

		api := scriptedES(t, map[string]func() (int, any){
			esapi.PathLogin: respond(http.StatusOK, map[string]any{
				"message": "DEVICE_SELECTION_REQUIRED", "interactionId": "i1", "interactionToken": "t1",
				"mfaDeviceList": []map[string]any{
					{"deviceType": "SMS", "phone": "5551234567", "deviceId": "d1"},
					{"deviceType": "EMAIL", "email": "jane@example.com", "deviceId": "d2"},
				},
			}),
		})
		f := login.New(api, testConfig)

		status, err := f.Login(context.Background(), "u", "p", login.DeviceFingerprint{})
		require.NoError(t, err)
		require.Equal(t, login.StatusMFARequiredMultipleDevices, status)

		m := mfaState(t, f)
		require.Equal(t, login.StepSelection, m.Step)
		require.Len(t, m.Options, 2)
		require.Equal(t, "d1", m.Options[0].ID)
		require.Equal(t, "d2", m.Options[1].ID)
	})

	t.Run("D invalid credentials", func(t *testing.T) {
		t.Parallel()

		api := scriptedES(t, map[string]func() (int, any){
			esapi.PathLogin: respond(http.StatusUnauthorized, map[string]any{"errorCode": "UI-401"}),
		})
		f := login.New(api, testConfig)

		status, err := f.Login(context.Background(), "u", "p", login.DeviceFingerprint{})
		require.NoError(t, err)
		require.Equal(t, login.StatusInvalidCredentials, status)

		snap := f.Snapshot()
		require.Equal(t, []login.InlineError{{Code: "UI-401", Message: login.Messages["UI-401"]}}, snap.APIErrors)
		require.False(t, snap.Flags.LoggedUser)
		require.False(t, snap.Flags.MultipleLoginAttempts)
	})

	t.Run("E too many attempts", func(t *testing.T) {
		t.Parallel()

		api := scriptedES(t, map[string]func() (int, any){
			esapi.PathLogin: respond(http.StatusTooManyRequests, map[string]any{"errorCode": "UI-405"}),
		})
		f := login.New(api, testConfig)

		status, err := f.Login(context.Background(), "u", "p", login.DeviceFingerprint{})
		require.NoError(t, err)
		require.Equal(t, login.StatusTooManyAttempts, status)

		snap := f.Snapshot()
		require.True(t, snap.Flags.MultipleLoginAttempts)
		require.Empty(t, snap.APIErrors)
	})

	t.Run("non-JSON error page is unhandled", func(t *testing.T) {
		t.Parallel()

		api := scriptedES(t, map[string]func() (int, any){
			esapi.PathLogin: respond(http.StatusBadGateway, "upstream down"),
		})
		f := login.New(api, testConfig)

		status, err := f.Login(context.Background(), "u", "p", login.DeviceFingerprint{})
		require.NoError(t, err)
		require.Equal(t, login.StatusError, status)
		require.True(t, f.Flags().UnhandledErrors)
	})
}
