package consent

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verusid/login-consent/pkg/service/vdxf"
)

func testChallenge() Challenge {
	return Challenge{
		UUID:           uuid.New().String(),
		RequestedScope: []string{"iScopeID"},
		Subject:        "",
		RequestURL:     "https://provider.example.com/oauth2/auth?client_id=app",
		SessionID:      "session-1",
		Client: Client{
			ClientID: "app",
			Name:     "Example App",
			RedirectURIs: []RedirectURI{{
				Type: vdxf.MustKey(vdxf.LoginConsentRedirectKey).ID,
				URI:  "https://consent.example.com/verify",
			}},
			Scope: []string{"iScopeID"},
		},
	}
}

func testRequest(challenge Challenge) LoginConsentRequest {
	return LoginConsentRequest{
		ChainID:   "VRSCTEST",
		SigningID: "consent.node@",
		Signature: NewRequestSignature("AYGmhQABQR8="),
		Challenge: challenge,
	}
}

func TestChallengeCanonicalizeDeterministic(t *testing.T) {
	challenge := testChallenge()

	first, err := challenge.Canonicalize()
	require.NoError(t, err)
	second, err := challenge.Canonicalize()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// any field change must change the canonical bytes
	tampered := challenge
	tampered.UUID = uuid.New().String()
	tamperedBytes, err := tampered.Canonicalize()
	require.NoError(t, err)
	assert.NotEqual(t, first, tamperedBytes)
}

func TestRequestCanonicalizeExcludesSignature(t *testing.T) {
	request := testRequest(testChallenge())

	signed, err := request.Canonicalize()
	require.NoError(t, err)

	unsigned := request
	unsigned.Signature = nil
	unsignedBytes, err := unsigned.Canonicalize()
	require.NoError(t, err)

	// the signature covers these bytes so it cannot be part of them
	assert.Equal(t, signed, unsignedBytes)
}

func TestRequestCanonicalizeCoversAllSignedFields(t *testing.T) {
	request := testRequest(testChallenge())
	original, err := request.Canonicalize()
	require.NoError(t, err)

	differentChain := request
	differentChain.ChainID = "VRSC"
	differentChainBytes, err := differentChain.Canonicalize()
	require.NoError(t, err)
	assert.NotEqual(t, original, differentChainBytes)

	differentSigner := request
	differentSigner.SigningID = "other.node@"
	differentSignerBytes, err := differentSigner.Canonicalize()
	require.NoError(t, err)
	assert.NotEqual(t, original, differentSignerBytes)

	differentChallenge := request
	differentChallenge.Challenge.Client.ClientID = "evil-app"
	differentChallengeBytes, err := differentChallenge.Canonicalize()
	require.NoError(t, err)
	assert.NotEqual(t, original, differentChallengeBytes)
}

func TestWalletRedirectURL(t *testing.T) {
	request := testRequest(testChallenge())

	redirectURL, err := request.WalletRedirectURL()
	require.NoError(t, err)

	walletID := vdxf.MustKey(vdxf.WalletKey).ID
	requestID := vdxf.MustKey(vdxf.LoginConsentRequestKey).ID
	assert.True(t, strings.HasPrefix(redirectURL, walletID+"://x-callback-url/"+requestID+"/?"+requestID+"="))

	// payload round-trips back to the request
	payload := redirectURL[strings.Index(redirectURL, "=")+1:]
	data, err := base64.RawURLEncoding.DecodeString(payload)
	require.NoError(t, err)

	var decoded LoginConsentRequest
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, request, decoded)
}

func TestRememberForSeconds(t *testing.T) {
	decision := LoginConsentDecision{Remember: true}
	assert.Equal(t, DefaultRememberFor, decision.RememberForSeconds())

	rememberFor := 7200
	decision.RememberFor = &rememberFor
	assert.Equal(t, 7200, decision.RememberForSeconds())

	zero := 0
	decision.RememberFor = &zero
	assert.Equal(t, 0, decision.RememberForSeconds())
}

func TestParseLoginConsentResponse(t *testing.T) {
	response := LoginConsentResponse{
		SigningID: "iAlice",
		Signature: &IdentitySignature{
			Signature: "AYGmhQABQR8=",
			Key:       vdxf.MustKey(vdxf.LoginConsentResponseSigKey).ID,
		},
		Decision: LoginConsentDecision{
			Remember: true,
			Request:  testRequest(testChallenge()),
		},
	}

	payload, err := response.Encode()
	require.NoError(t, err)

	parsed, err := ParseLoginConsentResponse(payload)
	require.NoError(t, err)
	assert.Equal(t, response, *parsed)
	assert.Equal(t, response.Decision.Request.Challenge.UUID, parsed.ChallengeUUID())
}

func TestParseLoginConsentResponsePadded(t *testing.T) {
	response := LoginConsentResponse{
		SigningID: "iAlice",
		Decision:  LoginConsentDecision{Request: testRequest(testChallenge())},
	}
	data, err := json.Marshal(response)
	require.NoError(t, err)

	// some wallets send standard padded url-safe base64
	parsed, err := ParseLoginConsentResponse(base64.URLEncoding.EncodeToString(data))
	require.NoError(t, err)
	assert.Equal(t, response.ChallengeUUID(), parsed.ChallengeUUID())
}

func TestParseLoginConsentResponseMalformed(t *testing.T) {
	_, err := ParseLoginConsentResponse("this is not base64!!")
	assert.Error(t, err)

	_, err = ParseLoginConsentResponse(base64.RawURLEncoding.EncodeToString([]byte("not json")))
	assert.Error(t, err)

	// decodes but carries no challenge uuid to correlate against
	empty, err := json.Marshal(LoginConsentResponse{SigningID: "iAlice"})
	require.NoError(t, err)
	_, err = ParseLoginConsentResponse(base64.RawURLEncoding.EncodeToString(empty))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing challenge uuid")
}

func TestSignedDataMatchesRequestCanonicalBytes(t *testing.T) {
	request := testRequest(testChallenge())
	response := LoginConsentResponse{
		SigningID: "iAlice",
		Decision:  LoginConsentDecision{Request: request},
	}

	signedData, err := response.SignedData()
	require.NoError(t, err)
	requestBytes, err := request.Canonicalize()
	require.NoError(t, err)
	assert.Equal(t, requestBytes, signedData)
}
