package esapi

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the ES authentication API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new ES API client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithHTTP creates a client that sends requests through hc.
// Useful for tests (httptest.Server.Client) and for custom transports.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	c := NewClient(baseURL)
	if hc != nil {
		c.HTTPClient = hc
	}
	return c
}
