package service

import (
	"fmt"

	"github.com/verusid/login-consent/config"
	"github.com/verusid/login-consent/internal/util"
	"github.com/verusid/login-consent/pkg/hydra"
	"github.com/verusid/login-consent/pkg/service/consent"
	"github.com/verusid/login-consent/pkg/service/framework"
	"github.com/verusid/login-consent/pkg/service/registry"
	"github.com/verusid/login-consent/pkg/service/signer"
	"github.com/verusid/login-consent/pkg/storage"
)

// LoginConsentService represents all services and their dependencies
// independent of transport
type LoginConsentService struct {
	Consent  *consent.Service
	Registry *registry.Service

	storage storage.ServiceStorage
}

// GetServices returns all services for status reporting
func (s *LoginConsentService) GetServices() []framework.Service {
	return []framework.Service{s.Consent, s.Registry}
}

// Close releases the storage held by the services.
func (s *LoginConsentService) Close() error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Close(); err != nil {
		return util.LoggingError(err)
	}
	return nil
}

// InstantiateLoginConsentService creates all services and their dependencies
// independent of transport.
func InstantiateLoginConsentService(cfg config.ServicesConfig) (*LoginConsentService, error) {
	if err := validateServiceConfig(cfg); err != nil {
		return nil, util.LoggingErrorMsg(err, "could not instantiate login consent service, invalid config")
	}

	storageProvider, err := storage.NewStorage(storage.Type(cfg.StorageProvider), storage.Option{
		BoltFile:      cfg.StorageOptions.DBFile,
		RedisAddress:  cfg.StorageOptions.RedisAddress,
		RedisPassword: cfg.StorageOptions.RedisPassword,
	})
	if err != nil {
		return nil, util.LoggingErrorMsgf(err, "could not instantiate storage provider: %s", cfg.StorageProvider)
	}

	registryService, err := registry.NewRegistryService(storageProvider)
	if err != nil {
		return nil, util.LoggingErrorMsg(err, "could not instantiate the registry service")
	}

	hydraClient, err := hydra.NewClient(cfg.HydraConfig.AdminURL, cfg.HydraConfig.MockTLSTermination)
	if err != nil {
		return nil, util.LoggingErrorMsg(err, "could not instantiate the hydra admin client")
	}

	chains := signer.NewChainSet()
	for _, chainConfig := range cfg.ChainConfigs {
		rpcClient, err := signer.NewRPCClient(chainConfig.ChainID, chainConfig.RPCURL, chainConfig.RPCUser, chainConfig.RPCPassword)
		if err != nil {
			return nil, util.LoggingErrorMsgf(err, "could not instantiate the signer for chain<%s>", chainConfig.ChainID)
		}
		chains.Register(chainConfig.ChainID, rpcClient)
	}

	consentService, err := consent.NewConsentService(cfg.ConsentConfig, hydraClient, chains, registryService)
	if err != nil {
		return nil, util.LoggingErrorMsg(err, "could not instantiate the consent service")
	}

	return &LoginConsentService{
		Consent:  consentService,
		Registry: registryService,
		storage:  storageProvider,
	}, nil
}

func validateServiceConfig(cfg config.ServicesConfig) error {
	if cfg.HydraConfig.IsEmpty() || cfg.HydraConfig.AdminURL == "" {
		return fmt.Errorf("%s no hydra admin url provided", framework.Consent)
	}
	if cfg.ConsentConfig.IsEmpty() {
		return fmt.Errorf("%s no config provided", framework.Consent)
	}
	if len(cfg.ChainConfigs) == 0 {
		return fmt.Errorf("%s no signing chains provided", framework.Consent)
	}
	return nil
}
