// Package consent implements the login consent challenge protocol between
// an OIDC provider and the Verus identity wallet: issuing signed challenges,
// verifying signed wallet responses, and relaying the resulting decision.
package consent

import (
	"encoding/base64"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/verusid/login-consent/pkg/service/vdxf"
)

// DefaultRememberFor is the session duration, in seconds, applied when a
// wallet decision does not carry one.
const DefaultRememberFor = 3600

// canonicalVersion tags the canonical byte encoding. Signatures are computed
// over canonical bytes, so any change to the field set below must bump this
// to avoid breaking verification of in-flight challenges.
const canonicalVersion = 1

// RedirectURI is a typed redirect target: Type is a vdxf key id describing
// how the wallet should use the URI.
type RedirectURI struct {
	Type string `json:"type" validate:"required"`
	URI  string `json:"uri" validate:"required"`
}

// Client describes the application requesting login, built from the
// provider's login request payload. Immutable once constructed; owned by its
// Challenge.
type Client struct {
	ClientID                  string        `json:"client_id" validate:"required"`
	Name                      string        `json:"name,omitempty"`
	RedirectURIs              []RedirectURI `json:"redirect_uris,omitempty"`
	GrantTypes                []string      `json:"grant_types,omitempty"`
	ResponseTypes             []string      `json:"response_types,omitempty"`
	Scope                     []string      `json:"scope,omitempty"`
	Audience                  []string      `json:"audience,omitempty"`
	Owner                     string        `json:"owner,omitempty"`
	PolicyURI                 string        `json:"policy_uri,omitempty"`
	AllowedCORSOrigins        []string      `json:"allowed_cors_origins,omitempty"`
	TOSURI                    string        `json:"tos_uri,omitempty"`
	ClientURI                 string        `json:"client_uri,omitempty"`
	LogoURI                   string        `json:"logo_uri,omitempty"`
	Contacts                  []string      `json:"contacts,omitempty"`
	SubjectType               string        `json:"subject_type,omitempty"`
	TokenEndpointAuthMethod   string        `json:"token_endpoint_auth_method,omitempty"`
	UserinfoSignedResponseAlg string        `json:"userinfo_signed_response_alg,omitempty"`
	CreatedAt                 string        `json:"created_at,omitempty"`
	UpdatedAt                 string        `json:"updated_at,omitempty"`
}

// Challenge is the canonical, signable representation of one login attempt.
// UUID is the provider's login challenge id and is the correlation key that
// round-trips unchanged through signing, wallet transport, and verification.
type Challenge struct {
	UUID                         string   `json:"uuid" validate:"required"`
	RequestedScope               []string `json:"requested_scope,omitempty"`
	RequestedAccessTokenAudience []string `json:"requested_access_token_audience,omitempty"`
	Subject                      string   `json:"subject,omitempty"`
	RequestURL                   string   `json:"request_url,omitempty"`
	SessionID                    string   `json:"session_id,omitempty"`
	AcrValues                    []string `json:"acr_values,omitempty"`
	Client                       Client   `json:"client"`
}

// Canonicalize returns the deterministic byte encoding of the challenge.
// Field order is fixed by the struct definitions, so the same challenge
// always canonicalizes to the same bytes across processes. These bytes are
// the message the consent node signs.
func (c Challenge) Canonicalize() ([]byte, error) {
	envelope := struct {
		Version   int       `json:"version"`
		Challenge Challenge `json:"challenge"`
	}{
		Version:   canonicalVersion,
		Challenge: c,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, errors.Wrap(err, "canonicalizing challenge")
	}
	return data, nil
}

// IdentitySignature is a signature over canonical bytes, tagged with the
// vdxf key id of the semantic field it covers.
type IdentitySignature struct {
	Signature string `json:"signature" validate:"required"`
	Key       string `json:"key" validate:"required"`
}

// NewRequestSignature tags a raw signature as covering a login consent
// request.
func NewRequestSignature(signature string) *IdentitySignature {
	return &IdentitySignature{
		Signature: signature,
		Key:       vdxf.MustKey(vdxf.LoginConsentRequestSigKey).ID,
	}
}

// LoginConsentRequest is the signed challenge delivered to the wallet.
// Created once per login attempt and never mutated. ChainID selects the
// signer the signature was produced on.
type LoginConsentRequest struct {
	ChainID   string             `json:"chain_id" validate:"required"`
	SigningID string             `json:"signing_id" validate:"required"`
	Signature *IdentitySignature `json:"signature,omitempty"`
	Challenge Challenge          `json:"challenge"`
}

// Canonicalize returns the bytes a signature over this request must cover:
// chain id, signing id, and the challenge's canonical bytes. The signature
// itself is excluded. A wallet response signs these exact same bytes, which
// is what makes cross-field tampering detectable.
func (r LoginConsentRequest) Canonicalize() ([]byte, error) {
	challengeBytes, err := r.Challenge.Canonicalize()
	if err != nil {
		return nil, err
	}
	envelope := struct {
		Version   int    `json:"version"`
		ChainID   string `json:"chain_id"`
		SigningID string `json:"signing_id"`
		Challenge string `json:"challenge"`
	}{
		Version:   canonicalVersion,
		ChainID:   r.ChainID,
		SigningID: r.SigningID,
		Challenge: string(challengeBytes),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, errors.Wrap(err, "canonicalizing login consent request")
	}
	return data, nil
}

// Encode serializes the full request, signature included, as unpadded
// url-safe base64 for wallet transport.
func (r LoginConsentRequest) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "marshalling login consent request")
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// WalletRedirectURL renders the request as a wallet deep link:
// <wallet-id>://x-callback-url/<request-id>/?<request-id>=<payload>
func (r LoginConsentRequest) WalletRedirectURL() (string, error) {
	payload, err := r.Encode()
	if err != nil {
		return "", err
	}
	walletID := vdxf.MustKey(vdxf.WalletKey).ID
	requestID := vdxf.MustKey(vdxf.LoginConsentRequestKey).ID
	return fmt.Sprintf("%s://x-callback-url/%s/?%s=%s", walletID, requestID, requestID, payload), nil
}

// LoginConsentDecision is the wallet's answer to a challenge. It embeds the
// full original request, which is how the protocol stays stateless between
// issuance and verification.
type LoginConsentDecision struct {
	Remember    bool                `json:"remember"`
	RememberFor *int                `json:"remember_for,omitempty"`
	Request     LoginConsentRequest `json:"request"`
}

// RememberForSeconds returns the decision's session duration, defaulted when
// the wallet omitted one.
func (d LoginConsentDecision) RememberForSeconds() int {
	if d.RememberFor == nil {
		return DefaultRememberFor
	}
	return *d.RememberFor
}

// LoginConsentResponse is the wallet's signed decision. Deserialized once
// from the inbound redirect payload and read-only thereafter.
type LoginConsentResponse struct {
	SigningID string               `json:"signing_id" validate:"required"`
	Signature *IdentitySignature   `json:"signature" validate:"required"`
	Decision  LoginConsentDecision `json:"decision"`
}

// SignedData returns the canonical bytes the response signature must cover:
// exactly the embedded request's canonical bytes.
func (r LoginConsentResponse) SignedData() ([]byte, error) {
	return r.Decision.Request.Canonicalize()
}

// ChallengeUUID is the correlation id back to the provider's login request.
func (r LoginConsentResponse) ChallengeUUID() string {
	return r.Decision.Request.Challenge.UUID
}

// Encode serializes the full response as unpadded url-safe base64, the form
// a wallet delivers it in.
func (r LoginConsentResponse) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "marshalling login consent response")
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// ParseLoginConsentResponse decodes an inbound url-safe base64 response
// payload. Any malformed payload is a decode error; callers map it to the
// reject path.
func ParseLoginConsentResponse(payload string) (*LoginConsentResponse, error) {
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		// wallets have been seen padding their payloads
		data, err = base64.URLEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(err, "decoding login consent response payload")
		}
	}
	var response LoginConsentResponse
	if err = json.Unmarshal(data, &response); err != nil {
		return nil, errors.Wrap(err, "unmarshalling login consent response")
	}
	// a missing uuid leaves nothing to correlate a rejection against; a
	// missing signature or signing id is left for verification to fail
	if response.ChallengeUUID() == "" {
		return nil, errors.New("login consent response missing challenge uuid")
	}
	return &response, nil
}
