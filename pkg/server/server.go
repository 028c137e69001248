// Package server contains the full set of handler functions and routes
// supported by the http api
package server

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/verusid/login-consent/config"
	"github.com/verusid/login-consent/internal/util"
	"github.com/verusid/login-consent/pkg/server/framework"
	"github.com/verusid/login-consent/pkg/server/middleware"
	"github.com/verusid/login-consent/pkg/server/router"
	"github.com/verusid/login-consent/pkg/service"
	"github.com/verusid/login-consent/pkg/service/consent"
	"github.com/verusid/login-consent/pkg/service/registry"
)

const (
	HealthPrefix    = "/health"
	ReadinessPrefix = "/readiness"
	LoginPrefix     = "/login"
	VerifyPrefix    = "/verify"
	V1Prefix        = "/v1"
	ClientsPrefix   = "/clients"
)

// LoginConsentServer exposes all dependencies needed to run a http server
// and all its services
type LoginConsentServer struct {
	*config.ServerConfig
	*service.LoginConsentService
	*framework.Server
}

// NewLoginConsentServer does two things: instantiates all services and
// registers their HTTP bindings
func NewLoginConsentServer(shutdown chan os.Signal, cfg config.LoginConsentConfig) (*LoginConsentServer, error) {
	engine := setUpEngine(cfg.Server)
	httpServer := framework.NewServer(cfg.Server, engine, shutdown)
	svc, err := service.InstantiateLoginConsentService(cfg.Services)
	if err != nil {
		return nil, util.LoggingErrorMsg(err, "unable to instantiate login consent service")
	}

	// service-level routers
	engine.GET(HealthPrefix, router.Health)
	engine.GET(ReadinessPrefix, router.Readiness(svc.GetServices()))

	if err = LoginAPI(engine, svc.Consent); err != nil {
		return nil, util.LoggingErrorMsg(err, "unable to instantiate Login API")
	}

	v1 := engine.Group(V1Prefix)
	if err = ClientRegistryAPI(v1, svc.Registry); err != nil {
		return nil, util.LoggingErrorMsg(err, "unable to instantiate Client Registry API")
	}

	return &LoginConsentServer{
		Server:              httpServer,
		LoginConsentService: svc,
		ServerConfig:        &cfg.Server,
	}, nil
}

// PreShutdownHooks closes the storage-backed services before the listener
// stops accepting connections.
func (s *LoginConsentServer) PreShutdownHooks(_ context.Context) error {
	return s.LoginConsentService.Close()
}

// setUpEngine creates the gin engine and sets up the middleware based on config
func setUpEngine(cfg config.ServerConfig) *gin.Engine {
	middlewares := gin.HandlersChain{
		gin.Recovery(),
		middleware.Errors(),
		middleware.Logger(logrus.StandardLogger()),
		middleware.Metrics(),
	}
	if cfg.JagerEnabled {
		middlewares = append(middlewares, otelgin.Middleware(config.ServiceName))
	}
	if cfg.EnableAllowAllCORS {
		middlewares = append(middlewares, middleware.CORS())
	}

	engine := gin.New()
	engine.Use(middlewares...)

	switch cfg.Environment {
	case config.EnvironmentDev:
		gin.SetMode(gin.DebugMode)
	case config.EnvironmentTest:
		gin.SetMode(gin.TestMode)
	case config.EnvironmentProd:
		gin.SetMode(gin.ReleaseMode)
	}
	return engine
}

// LoginAPI registers the browser-facing login and verify routes. They live
// at the engine root so the paths match what the OAuth2 provider and the
// wallet redirect back to.
func LoginAPI(engine *gin.Engine, service *consent.Service) (err error) {
	loginRouter, err := router.NewLoginRouter(service)
	if err != nil {
		return util.LoggingErrorMsg(err, "creating login router")
	}

	engine.GET(LoginPrefix, loginRouter.StartLogin)
	engine.GET(VerifyPrefix, loginRouter.CompleteLogin)
	return
}

// ClientRegistryAPI registers all HTTP routes for the client registry service
func ClientRegistryAPI(rg *gin.RouterGroup, service *registry.Service) (err error) {
	clientRouter, err := router.NewClientRouter(service)
	if err != nil {
		return util.LoggingErrorMsg(err, "creating client router")
	}

	clientAPI := rg.Group(ClientsPrefix)
	clientAPI.PUT("", clientRouter.StoreClient)
	clientAPI.GET("", clientRouter.ListClients)
	clientAPI.GET("/:id", clientRouter.GetClient)
	clientAPI.DELETE("/:id", clientRouter.DeleteClient)
	return
}
