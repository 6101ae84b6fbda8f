// Command memberlogin signs a member in from the terminal. It drives the
// same login flow as the portal, prompting for whatever the current stage
// needs.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/aussiebroadwan/memberauth/internal/login"
	"github.com/aussiebroadwan/memberauth/pkg/envx"
	"github.com/aussiebroadwan/memberauth/pkg/esapi"
	"github.com/aussiebroadwan/memberauth/pkg/slogx"
)

type options struct {
	ESBaseURL string        `long:"es-url" env:"PORTAL_ES_BASE_URL" default:"http://localhost:8081" description:"Base URL of the ES API"`
	Timeout   time.Duration `long:"timeout" env:"PORTAL_ES_TIMEOUT" default:"10s" description:"Per-request timeout"`
	PolicyID  string        `long:"policy-id" env:"PORTAL_POLICY_ID" description:"Policy id sent with the login"`
	AppID     string        `long:"app-id" env:"PORTAL_APP_ID" description:"Application id sent with the login"`
	Username  string        `short:"u" long:"username" env:"MEMBERLOGIN_USERNAME" description:"Username; prompted for when empty"`
	Password  string        `long:"password" env:"MEMBERLOGIN_PASSWORD" description:"Password; prompted for when empty"`
	ShowToken bool          `long:"show-token" description:"Print the session token once signed in"`
	LogLevel  string        `long:"log-level" env:"LOG_LEVEL" default:"error" description:"Log level (debug, info, warn, error)"`
}

func main() {
	envx.LoadDotEnv()

	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slogx.New(slogx.Config{
		Service: "memberlogin",
		Level:   opts.LogLevel,
		Format:  "text",
		Output:  os.Stderr,
	})
	ctx = slogx.WithContext(ctx, logger)

	es := esapi.NewClient(opts.ESBaseURL)
	es.HTTPClient.Timeout = opts.Timeout

	flow := login.New(es, login.Config{
		PolicyID: opts.PolicyID,
		AppID:    opts.AppID,
	}, login.WithLogger(logger))

	t := newTerminal(os.Stdin, os.Stdout, opts)
	if err := t.run(ctx, flow); err != nil {
		fmt.Fprintln(os.Stderr, "memberlogin:", err)
		os.Exit(1)
	}
}
