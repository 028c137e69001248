package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/verusid/login-consent/pkg/server/framework"
	"github.com/verusid/login-consent/pkg/service/consent"
	svcframework "github.com/verusid/login-consent/pkg/service/framework"
	"github.com/verusid/login-consent/pkg/service/vdxf"
)

const LoginChallengeParam = "login_challenge"

// LoginRouter represents the dependencies required to instantiate the
// login-consent HTTP flow.
type LoginRouter struct {
	service *consent.Service
}

// NewLoginRouter creates an HTTP router for the consent service.
func NewLoginRouter(s svcframework.Service) (*LoginRouter, error) {
	if s == nil {
		return nil, errors.New("service cannot be nil")
	}
	consentService, ok := s.(*consent.Service)
	if !ok {
		return nil, fmt.Errorf("could not create login router with service type: %s", s.Type())
	}
	return &LoginRouter{service: consentService}, nil
}

// StartLogin godoc
//
// @Summary     Start Login
// @Description Fetches the provider's login request for the given challenge
// @Description and redirects the browser: straight back to the provider when
// @Description the session can be skipped, otherwise into the Verus wallet
// @Description carrying a signed login consent challenge.
// @Tags        LoginConsentAPI
// @Produce     json
// @Param       login_challenge query    string true "Login Challenge"
// @Success     302
// @Failure     400 {string} string "Bad request"
// @Failure     500 {string} string "Internal server error"
// @Router      /login [get]
func (lr LoginRouter) StartLogin(c *gin.Context) {
	challenge := framework.GetQueryValue(c, LoginChallengeParam)
	if challenge == nil {
		framework.RespondLoggingError(c, framework.NewRequestError(consent.ErrMissingChallenge, http.StatusBadRequest))
		return
	}

	startLoginResponse, err := lr.service.StartLogin(c, consent.StartLoginRequest{LoginChallenge: *challenge})
	if err != nil {
		errMsg := fmt.Sprintf("could not start login for challenge<%s>", *challenge)
		framework.RespondLoggingError(c, framework.NewRequestErrorWithMsg(err, errMsg, http.StatusInternalServerError))
		return
	}

	framework.Redirect(c, startLoginResponse.RedirectTo)
}

// CompleteLogin godoc
//
// @Summary     Complete Login
// @Description Consumes the wallet's signed login consent response, relays
// @Description the accept or reject decision to the provider, and redirects
// @Description the browser back to it.
// @Tags        LoginConsentAPI
// @Produce     json
// @Success     302
// @Failure     400 {string} string "Bad request"
// @Failure     500 {string} string "Internal server error"
// @Router      /verify [get]
func (lr LoginRouter) CompleteLogin(c *gin.Context) {
	responseKey := vdxf.MustKey(vdxf.LoginConsentResponseKey).ID
	payload := framework.GetQueryValue(c, responseKey)
	if payload == nil {
		errMsg := "expected a login consent response parameter but received none"
		framework.RespondLoggingError(c, framework.NewRequestErrorMsg(errMsg, http.StatusBadRequest))
		return
	}

	completeLoginResponse, err := lr.service.CompleteLogin(c, consent.CompleteLoginRequest{Payload: *payload})
	if err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, consent.ErrMalformedResponse) {
			statusCode = http.StatusBadRequest
		}
		framework.RespondLoggingError(c, framework.NewRequestErrorWithMsg(err, "could not complete login", statusCode))
		return
	}

	framework.Redirect(c, completeLoginResponse.RedirectTo)
}
