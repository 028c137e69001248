package signer

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/verusid/login-consent/internal/util"
)

const (
	methodSignMessage   = "signmessage"
	methodVerifyMessage = "verifymessage"
)

// RPCClient talks JSON-RPC 2.0 to a Verus daemon over authenticated HTTP.
type RPCClient struct {
	HTTPClient *http.Client
	endpoint   string
	username   string
	password   string
	chainID    string
}

var _ Signer = (*RPCClient)(nil)

// NewRPCClient builds a signer for one chain's RPC endpoint. Credentials are
// sent as HTTP basic auth, matching the daemon's rpcuser/rpcpassword setup.
func NewRPCClient(chainID, endpoint, username, password string) (*RPCClient, error) {
	if chainID == "" {
		return nil, errors.New("chain id cannot be empty")
	}
	if endpoint == "" {
		return nil, errors.New("rpc endpoint cannot be empty")
	}
	return &RPCClient{
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		endpoint:   endpoint,
		username:   username,
		password:   password,
		chainID:    chainID,
	}, nil
}

// ChainID returns the chain this client signs on.
func (c *RPCClient) ChainID() string {
	return c.chainID
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type signResult struct {
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

// Sign asks the daemon to sign message under identity. ErrUnavailable wraps
// transport failures; ErrRejected wraps daemon-side refusals.
func (c *RPCClient) Sign(ctx context.Context, identity string, message []byte) (string, error) {
	resp, err := c.call(ctx, methodSignMessage, []any{identity, string(message)})
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", errors.Wrapf(ErrRejected, "signmessage for identity<%s>: %s", identity, resp.Error.Message)
	}
	var result signResult
	if err = json.Unmarshal(resp.Result, &result); err != nil {
		return "", errors.Wrap(ErrUnavailable, "malformed signmessage result")
	}
	if result.Signature == "" {
		return "", errors.Wrapf(ErrRejected, "signmessage for identity<%s> returned no signature", identity)
	}
	return result.Signature, nil
}

// Verify checks a signature over message for identity. It never returns an
// error alongside a usable verdict: transport and daemon trouble map to
// Unreachable, a clean negative answer maps to Invalid.
func (c *RPCClient) Verify(ctx context.Context, identity, signature string, message []byte) (Verification, error) {
	resp, err := c.call(ctx, methodVerifyMessage, []any{identity, signature, string(message)})
	if err != nil {
		logrus.WithError(err).Warnf("verifymessage unreachable on chain<%s>", c.chainID)
		return Unreachable, nil
	}
	if resp.Error != nil {
		logrus.Warnf("verifymessage error on chain<%s>: %s", c.chainID, util.SanitizeLog(resp.Error.Message))
		return Invalid, nil
	}
	var valid bool
	if err = json.Unmarshal(resp.Result, &valid); err != nil {
		logrus.WithError(err).Warnf("malformed verifymessage result on chain<%s>", c.chainID)
		return Unreachable, nil
	}
	if valid {
		return Valid, nil
	}
	return Invalid, nil
}

func (c *RPCClient) call(ctx context.Context, method string, params []any) (*rpcResponse, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "login-consent",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshalling rpc request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "creating rpc request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "performing rpc call: %s", err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(bufio.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, "reading rpc response")
	}

	var rpcResp rpcResponse
	if err = json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "unmarshalling rpc response with status<%d>", resp.StatusCode)
	}
	// the daemon answers errors with non-2xx codes and a populated error
	// object; only a body with neither is treated as transport trouble
	if !util.Is2xxResponse(resp.StatusCode) && rpcResp.Error == nil {
		return nil, errors.Wrapf(ErrUnavailable, "rpc call returned status<%d>", resp.StatusCode)
	}
	return &rpcResp, nil
}
