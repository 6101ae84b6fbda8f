//go:build e2e

package esstub_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
)

/*
 * Container setup and helpers for the ES stub end-to-end tests. The stub
 * runs from its Docker image; the login flow runs in the test process.
 */

const (
	testImageName = "memberauth-esstub-test:latest"

	demoPassword = "Password1!"
	policyID     = "e2e-policy"
	appID        = "e2e-portal"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building ES stub Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up ES stub Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/esstub/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // Ignore errors - image might not exist
}

// setupStubContainer starts a seeded stub with the dev outbox exposed and
// returns its base URL.
func setupStubContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8081/tcp"},
		Env: map[string]string{
			"ENV":                   "test",
			"LOG_LEVEL":             "info",
			"LOG_FORMAT":            "json",
			"ESSTUB_SEED":           "true",
			"ESSTUB_EXPOSE_OUTBOX":  "true",
			"ESSTUB_POLICY_ID":      policyID,
			"ESSTUB_APP_ID":         appID,
			"ESSTUB_SIGNING_SECRET": "e2e-signing-secret",
			// Tests log in far more often than a member would
			"RATELIMIT_MODERATE_REQUESTS": "1000",
			"RATELIMIT_MODERATE_BURST":    "1000",
		},
		WaitingFor: wait.ForHTTP("/readyz").
			WithPort("8081/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8081")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

func newFlow(baseURL string) *login.Flow {
	return login.New(esapi.NewClient(baseURL), login.Config{
		PolicyID:             policyID,
		AppID:                appID,
		HighRiskURL:          "https://example.test/high-risk",
		IndeterminateRiskURL: "https://example.test/verify-identity",
	})
}

// lastCode reads the most recent code dispatched to username.
func lastCode(t *testing.T, baseURL, username string) string {
	t.Helper()

	resp, err := http.Get(baseURL + "/_dev/outbox/" + username)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode, "no code sent to %s", username)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Code
}

func submit(t *testing.T, f *login.Flow, username, password string) login.Status {
	t.Helper()
	status, err := f.Login(t.Context(), username, password, login.DeviceFingerprint{
		IPAddress: "198.51.100.20",
		UserAgent: "memberauth-e2e",
	})
	require.NoError(t, err)
	return status
}
