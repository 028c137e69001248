// Package hydra is a minimal client for the ORY Hydra admin API, covering
// only the login request flow this service participates in.
package hydra

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/verusid/login-consent/internal/util"
)

const loginRequestPath = "/oauth2/auth/requests/login"

// ErrMissingRedirect indicates the provider completed an accept or reject
// call without returning a redirect URL. Treated as a provider error rather
// than silently redirecting the browser to a garbage location.
var ErrMissingRedirect = errors.New("provider response missing redirect_to")

// Client calls the hydra admin API.
type Client struct {
	HTTPClient         *http.Client
	adminURL           string
	mockTLSTermination bool
}

// NewClient builds an admin API client. mockTLSTermination adds
// X-Forwarded-Proto: https to every call, for hydra deployments that expect
// TLS to be terminated upstream.
func NewClient(adminURL string, mockTLSTermination bool) (*Client, error) {
	if adminURL == "" {
		return nil, errors.New("hydra admin url cannot be empty")
	}
	return &Client{
		HTTPClient:         &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		adminURL:           adminURL,
		mockTLSTermination: mockTLSTermination,
	}, nil
}

// GetLoginRequest fetches the login request for a challenge id.
func (c *Client) GetLoginRequest(ctx context.Context, challenge string) (*LoginRequest, error) {
	var loginRequest LoginRequest
	if err := c.do(ctx, http.MethodGet, loginRequestPath, challenge, nil, &loginRequest); err != nil {
		return nil, errors.Wrap(err, "getting login request")
	}
	return &loginRequest, nil
}

// AcceptLoginRequest marks a login request accepted and returns where to
// send the browser.
func (c *Client) AcceptLoginRequest(ctx context.Context, challenge string, accept AcceptLoginRequest) (*CompletedRequest, error) {
	var completed CompletedRequest
	if err := c.do(ctx, http.MethodPut, loginRequestPath+"/accept", challenge, accept, &completed); err != nil {
		return nil, errors.Wrap(err, "accepting login request")
	}
	if completed.RedirectTo == "" {
		return nil, ErrMissingRedirect
	}
	return &completed, nil
}

// RejectLoginRequest marks a login request rejected and returns where to
// send the browser.
func (c *Client) RejectLoginRequest(ctx context.Context, challenge string, reject RejectLoginRequest) (*CompletedRequest, error) {
	var completed CompletedRequest
	if err := c.do(ctx, http.MethodPut, loginRequestPath+"/reject", challenge, reject, &completed); err != nil {
		return nil, errors.Wrap(err, "rejecting login request")
	}
	if completed.RedirectTo == "" {
		return nil, ErrMissingRedirect
	}
	return &completed, nil
}

func (c *Client) do(ctx context.Context, method, path, challenge string, body, out any) error {
	if challenge == "" {
		return errors.New("login challenge cannot be empty")
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshalling request body")
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.adminURL + path + "?login_challenge=" + url.QueryEscape(challenge)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return errors.Wrap(err, "creating admin api request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.mockTLSTermination {
		req.Header.Set("X-Forwarded-Proto", "https")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "performing admin api call")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(bufio.NewReader(resp.Body))
	if err != nil {
		return errors.Wrap(err, "reading admin api response")
	}
	if !util.Is2xxResponse(resp.StatusCode) {
		return errors.Errorf("admin api call returned status<%d>: %s", resp.StatusCode, util.SanitizeLog(string(respBody)))
	}
	if err = json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "unmarshalling admin api response")
	}
	return nil
}
