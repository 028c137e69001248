package consent

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/verusid/login-consent/config"
	"github.com/verusid/login-consent/internal/util"
	"github.com/verusid/login-consent/pkg/hydra"
	"github.com/verusid/login-consent/pkg/service/framework"
	"github.com/verusid/login-consent/pkg/service/registry"
	"github.com/verusid/login-consent/pkg/service/signer"
	"github.com/verusid/login-consent/pkg/service/vdxf"
)

const (
	rejectError       = "access_denied"
	rejectDescription = "not valid"
)

// ErrMissingChallenge indicates an inbound request without a login challenge
// correlation id. Nothing can be done for such a request, not even a
// redirect.
var ErrMissingChallenge = errors.New("expected a login challenge to be set but received none")

// ErrMalformedResponse indicates a wallet response payload that could not be
// decoded far enough to recover a challenge uuid, so the provider cannot
// even be notified of a rejection.
var ErrMalformedResponse = errors.New("malformed login consent response")

// Service issues signed login challenges, verifies wallet responses, and
// relays the resulting decision to the provider. It holds no per-request
// state: every login attempt round-trips inside its own signed payload.
type Service struct {
	cfg       config.ConsentConfig
	hydra     *hydra.Client
	chains    *signer.ChainSet
	registry  *registry.Service
	acrPolicy AcrPolicy
}

func (s *Service) Type() framework.Type {
	return framework.Consent
}

func (s *Service) Status() framework.Status {
	var problems []string
	if s.hydra == nil {
		problems = append(problems, "no hydra client configured")
	}
	if s.chains == nil || len(s.chains.ChainIDs()) == 0 {
		problems = append(problems, "no signing chains configured")
	}
	if s.cfg.NodeIdentity == "" {
		problems = append(problems, "no consent node identity configured")
	}
	if len(problems) > 0 {
		return framework.Status{
			Status:  framework.StatusNotReady,
			Message: fmt.Sprintf("consent service is not ready: %v", problems),
		}
	}
	return framework.Status{Status: framework.StatusReady}
}

func NewConsentService(cfg config.ConsentConfig, hydraClient *hydra.Client, chains *signer.ChainSet, registryService *registry.Service) (*Service, error) {
	if registryService == nil {
		return nil, errors.New("registry service cannot be nil")
	}

	var acrPolicy AcrPolicy = StaticAcrPolicy{Value: DefaultACR}
	if cfg.ConformanceACR {
		logrus.Warn("conformance ACR policy enabled; only appropriate for the OIDC conformance suite")
		acrPolicy = ConformanceAcrPolicy{Fallback: DefaultACR}
	}

	service := Service{
		cfg:       cfg,
		hydra:     hydraClient,
		chains:    chains,
		registry:  registryService,
		acrPolicy: acrPolicy,
	}
	if !service.Status().IsReady() {
		return nil, errors.New(service.Status().Message)
	}
	return &service, nil
}

type StartLoginRequest struct {
	LoginChallenge string
}

type StartLoginResponse struct {
	// RedirectTo is either the wallet deep link carrying the signed
	// challenge, or the provider's redirect when the session was skipped.
	RedirectTo string
	Skipped    bool
}

// StartLogin turns a provider login request into a signed, wallet
// deliverable challenge. When the provider indicates the session can be
// skipped it is accepted directly with the existing subject and no challenge
// is issued. A signing failure is fatal for the attempt: an unsigned
// challenge is never produced.
func (s *Service) StartLogin(ctx context.Context, request StartLoginRequest) (*StartLoginResponse, error) {
	if request.LoginChallenge == "" {
		return nil, ErrMissingChallenge
	}

	loginRequest, err := s.hydra.GetLoginRequest(ctx, request.LoginChallenge)
	if err != nil {
		return nil, errors.Wrap(err, "fetching login request")
	}

	// the provider could already authenticate the user; confirm and bounce
	// straight back
	if loginRequest.Skip {
		completed, err := s.hydra.AcceptLoginRequest(ctx, request.LoginChallenge, hydra.AcceptLoginRequest{
			Subject: loginRequest.Subject,
		})
		if err != nil {
			return nil, errors.Wrap(err, "accepting skipped login request")
		}
		logrus.Debugf("login request<%s> skipped for subject<%s>", util.SanitizeLog(request.LoginChallenge), util.SanitizeLog(loginRequest.Subject))
		return &StartLoginResponse{RedirectTo: completed.RedirectTo, Skipped: true}, nil
	}

	requestedScope, err := s.registry.ResolveScope(ctx, loginRequest.Client.ClientID, s.cfg.DefaultScope)
	if err != nil {
		return nil, errors.Wrap(err, "resolving client scope")
	}

	challenge := s.buildChallenge(loginRequest, requestedScope)
	canonical, err := challenge.Canonicalize()
	if err != nil {
		return nil, errors.Wrap(err, "canonicalizing challenge")
	}

	chainSigner, err := s.chains.Get(s.cfg.DefaultChainID)
	if err != nil {
		return nil, errors.Wrap(err, "selecting signing chain")
	}
	signature, err := chainSigner.Sign(ctx, s.cfg.NodeIdentity, canonical)
	if err != nil {
		return nil, errors.Wrap(err, "signing challenge")
	}

	consentRequest := LoginConsentRequest{
		ChainID:   s.cfg.DefaultChainID,
		SigningID: s.cfg.NodeIdentity,
		Signature: NewRequestSignature(signature),
		Challenge: challenge,
	}
	walletURL, err := consentRequest.WalletRedirectURL()
	if err != nil {
		return nil, errors.Wrap(err, "encoding wallet redirect")
	}

	logrus.Debugf("issued login consent request for challenge<%s>", util.SanitizeLog(challenge.UUID))
	return &StartLoginResponse{RedirectTo: walletURL}, nil
}

type CompleteLoginRequest struct {
	// Payload is the url-safe base64 value of the consent response query
	// parameter.
	Payload string
}

type CompleteLoginResponse struct {
	RedirectTo string
	Accepted   bool
	Subject    string
}

// CompleteLogin verifies a wallet's signed response and relays the decision
// to the provider. The decision is honored solely on the basis of a passing
// signature check over the canonical bytes that were signed: decode
// failures, invalid signatures, and an unreachable signer all resolve to the
// reject path.
func (s *Service) CompleteLogin(ctx context.Context, request CompleteLoginRequest) (*CompleteLoginResponse, error) {
	if request.Payload == "" {
		return nil, ErrMissingChallenge
	}

	response, err := ParseLoginConsentResponse(request.Payload)
	if err != nil {
		// nothing recoverable, not even a challenge id to reject against
		return nil, errors.Wrap(ErrMalformedResponse, err.Error())
	}

	uuid := response.ChallengeUUID()
	verification := s.verifyResponse(ctx, response)
	if verification != signer.Valid {
		logrus.Warnf("login consent response for challenge<%s> not valid: %s", util.SanitizeLog(uuid), verification)
		completed, err := s.hydra.RejectLoginRequest(ctx, uuid, hydra.RejectLoginRequest{
			Error:            rejectError,
			ErrorDescription: rejectDescription,
		})
		if err != nil {
			return nil, errors.Wrap(err, "rejecting login request")
		}
		return &CompleteLoginResponse{RedirectTo: completed.RedirectTo}, nil
	}

	// re-fetch the original request from the provider; it is the system of
	// record for this uuid and the source of the ACR decision input
	loginRequest, err := s.hydra.GetLoginRequest(ctx, uuid)
	if err != nil {
		return nil, errors.Wrap(err, "fetching login request")
	}

	completed, err := s.hydra.AcceptLoginRequest(ctx, uuid, hydra.AcceptLoginRequest{
		Subject:     response.SigningID,
		Remember:    response.Decision.Remember,
		RememberFor: response.Decision.RememberForSeconds(),
		ACR:         s.acrPolicy.ACR(loginRequest),
	})
	if err != nil {
		return nil, errors.Wrap(err, "accepting login request")
	}

	logrus.Debugf("login request<%s> accepted for subject<%s>", util.SanitizeLog(uuid), util.SanitizeLog(response.SigningID))
	return &CompleteLoginResponse{
		RedirectTo: completed.RedirectTo,
		Accepted:   true,
		Subject:    response.SigningID,
	}, nil
}

// verifyResponse checks the wallet signature over the canonical request
// bytes. Every failure mode maps onto a non-Valid verification; a signer
// outage must never read as an authenticated user.
func (s *Service) verifyResponse(ctx context.Context, response *LoginConsentResponse) signer.Verification {
	if response.SigningID == "" || response.Signature == nil || response.Signature.Signature == "" {
		return signer.Invalid
	}

	signedData, err := response.SignedData()
	if err != nil {
		logrus.WithError(err).Warn("could not canonicalize response for verification")
		return signer.Invalid
	}

	chainSigner, err := s.chains.Get(response.Decision.Request.ChainID)
	if err != nil {
		logrus.WithError(err).Warn("response names an unconfigured chain")
		return signer.Invalid
	}

	verification, err := chainSigner.Verify(ctx, response.SigningID, response.Signature.Signature, signedData)
	if err != nil {
		// belt and suspenders: the signer contract says this cannot happen
		logrus.WithError(err).Error("verify returned an error, treating as unreachable")
		return signer.Unreachable
	}
	return verification
}

// buildChallenge maps a provider login request onto the signable challenge,
// with the registry-resolved scope in place of whatever the login link
// claimed.
func (s *Service) buildChallenge(loginRequest *hydra.LoginRequest, requestedScope []string) Challenge {
	client := Client{
		ClientID:                  loginRequest.Client.ClientID,
		Name:                      loginRequest.Client.ClientName,
		RedirectURIs:              []RedirectURI{{Type: vdxf.MustKey(vdxf.LoginConsentRedirectKey).ID, URI: s.cfg.VerifyRedirectURI}},
		GrantTypes:                loginRequest.Client.GrantTypes,
		ResponseTypes:             loginRequest.Client.ResponseTypes,
		Scope:                     requestedScope,
		Audience:                  loginRequest.Client.Audience,
		Owner:                     loginRequest.Client.Owner,
		PolicyURI:                 loginRequest.Client.PolicyURI,
		AllowedCORSOrigins:        loginRequest.Client.AllowedCORSOrigins,
		TOSURI:                    loginRequest.Client.TOSURI,
		ClientURI:                 loginRequest.Client.ClientURI,
		LogoURI:                   loginRequest.Client.LogoURI,
		Contacts:                  loginRequest.Client.Contacts,
		SubjectType:               loginRequest.Client.SubjectType,
		TokenEndpointAuthMethod:   loginRequest.Client.TokenEndpointAuthMethod,
		UserinfoSignedResponseAlg: loginRequest.Client.UserinfoSignedResponseAlg,
		CreatedAt:                 loginRequest.Client.CreatedAt,
		UpdatedAt:                 loginRequest.Client.UpdatedAt,
	}

	var acrValues []string
	if loginRequest.OIDCContext != nil {
		acrValues = loginRequest.OIDCContext.AcrValues
	}

	return Challenge{
		UUID:                         loginRequest.Challenge,
		RequestedScope:               requestedScope,
		RequestedAccessTokenAudience: loginRequest.RequestedAccessTokenAudience,
		Subject:                      loginRequest.Subject,
		RequestURL:                   loginRequest.RequestURL,
		SessionID:                    loginRequest.SessionID,
		AcrValues:                    acrValues,
		Client:                       client,
	}
}
