package signer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"
)

const testRPCURL = "http://verus-daemon.example.com:25779/"

func testRPCClient(t *testing.T) *RPCClient {
	client, err := NewRPCClient("VRSCTEST", testRPCURL, "user", "password")
	require.NoError(t, err)
	gock.InterceptClient(client.HTTPClient)
	return client
}

func TestNewRPCClientValidation(t *testing.T) {
	_, err := NewRPCClient("", testRPCURL, "user", "password")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chain id cannot be empty")

	_, err = NewRPCClient("VRSCTEST", "", "user", "password")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rpc endpoint cannot be empty")
}

func TestSign(t *testing.T) {
	defer gock.Off()
	client := testRPCClient(t)

	gock.New(testRPCURL).
		Post("/").
		MatchHeader("Content-Type", "application/json").
		JSON(map[string]any{
			"jsonrpc": "2.0",
			"id":      "login-consent",
			"method":  "signmessage",
			"params":  []any{"consent.node@", "message bytes"},
		}).
		Reply(200).
		JSON(map[string]any{
			"result": map[string]any{"hash": "abc123", "signature": "AYGmhQABQR8="},
			"error":  nil,
		})

	signature, err := client.Sign(context.Background(), "consent.node@", []byte("message bytes"))
	assert.NoError(t, err)
	assert.Equal(t, "AYGmhQABQR8=", signature)
}

func TestSignRejected(t *testing.T) {
	defer gock.Off()
	client := testRPCClient(t)

	gock.New(testRPCURL).
		Post("/").
		Reply(500).
		JSON(map[string]any{
			"result": nil,
			"error":  map[string]any{"code": -5, "message": "Invalid identity"},
		})

	_, err := client.Sign(context.Background(), "unknown@", []byte("message"))
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Invalid identity")
}

func TestSignEmptySignature(t *testing.T) {
	defer gock.Off()
	client := testRPCClient(t)

	gock.New(testRPCURL).
		Post("/").
		Reply(200).
		JSON(map[string]any{
			"result": map[string]any{"hash": "abc123", "signature": ""},
			"error":  nil,
		})

	_, err := client.Sign(context.Background(), "consent.node@", []byte("message"))
	assert.ErrorIs(t, err, ErrRejected)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name     string
		result   any
		expected Verification
	}{
		{name: "valid signature", result: true, expected: Valid},
		{name: "invalid signature", result: false, expected: Invalid},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer gock.Off()
			client := testRPCClient(t)

			gock.New(testRPCURL).
				Post("/").
				JSON(map[string]any{
					"jsonrpc": "2.0",
					"id":      "login-consent",
					"method":  "verifymessage",
					"params":  []any{"iAlice", "AYGmhQABQR8=", "message bytes"},
				}).
				Reply(200).
				JSON(map[string]any{"result": test.result, "error": nil})

			verification, err := client.Verify(context.Background(), "iAlice", "AYGmhQABQR8=", []byte("message bytes"))
			assert.NoError(t, err)
			assert.Equal(t, test.expected, verification)
		})
	}
}

func TestVerifyDaemonError(t *testing.T) {
	defer gock.Off()
	client := testRPCClient(t)

	gock.New(testRPCURL).
		Post("/").
		Reply(500).
		JSON(map[string]any{
			"result": nil,
			"error":  map[string]any{"code": -5, "message": "Invalid address or identity"},
		})

	verification, err := client.Verify(context.Background(), "not-an-identity", "sig", []byte("message"))
	assert.NoError(t, err)
	assert.Equal(t, Invalid, verification)
}

func TestVerifyUnreachable(t *testing.T) {
	defer gock.Off()
	client := testRPCClient(t)

	gock.New(testRPCURL).
		Post("/").
		ReplyError(context.DeadlineExceeded)

	verification, err := client.Verify(context.Background(), "iAlice", "sig", []byte("message"))
	assert.NoError(t, err)
	assert.Equal(t, Unreachable, verification)
}

func TestVerifyMalformedResult(t *testing.T) {
	defer gock.Off()
	client := testRPCClient(t)

	gock.New(testRPCURL).
		Post("/").
		Reply(200).
		BodyString("not json at all")

	verification, err := client.Verify(context.Background(), "iAlice", "sig", []byte("message"))
	assert.NoError(t, err)
	assert.Equal(t, Unreachable, verification)
}

func TestVerificationString(t *testing.T) {
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "unreachable", Unreachable.String())
	assert.Equal(t, "unknown", Verification(42).String())
}

func TestChainSet(t *testing.T) {
	chains := NewChainSet()
	assert.Empty(t, chains.ChainIDs())

	_, err := chains.Get("VRSCTEST")
	assert.Error(t, err)

	client, err := NewRPCClient("VRSCTEST", testRPCURL, "user", "password")
	require.NoError(t, err)
	chains.Register("VRSCTEST", client)

	got, err := chains.Get("VRSCTEST")
	assert.NoError(t, err)
	assert.Equal(t, client, got)
	assert.Equal(t, []string{"VRSCTEST"}, chains.ChainIDs())
}
