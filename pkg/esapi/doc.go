/*
Package esapi provides a client SDK for the enterprise authentication (ES) API that backs the
member portal login.

# Overview

A member login is a sequence of calls tied together by an interaction context. The first call
(Login) returns an interaction id and token; every later call in the same attempt echoes them
back:

	client := esapi.NewClient("https://es.example.com/es/v1")

	resp, err := client.Login(ctx, esapi.LoginRequest{
		Username: "member",
		Password: "secret",
		PolicyID: "member-portal",
		AppID:    "portal-web",
	})

	switch resp.Outcome() {
	case esapi.OutcomeCompleted, esapi.OutcomeMFADisabled:
		// authenticated, resp.SessionToken carries the session
	case esapi.OutcomeOTPRequired, esapi.OutcomeDeviceSelectionRequired:
		// resp.MFADeviceList holds the second-factor devices
	}

# Outcomes

The ES API reports the state of an attempt as a status keyword in the "message" field. The SDK
decodes it once into the closed Outcome type so callers can switch over a finite set of variants.
Keywords the SDK does not know decode to OutcomeUnknown.

# Error Handling

Structured rejections are returned as *APIError carrying the ES error code:

	resp, err := client.ProvideOTP(ctx, req)
	var apiErr *esapi.APIError
	if errors.As(err, &apiErr) {
		fmt.Println("rejected:", apiErr.Code)
	}

Any other error (network failure, undecodable body) is returned wrapped and should be treated as
fatal for the attempt.

# Thread Safety

Client holds no per-attempt state and is safe for concurrent use.
*/
package esapi
