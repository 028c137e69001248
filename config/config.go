package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ardanlabs/conf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultConfigPath = "config/config.toml"
	ConfigFileName    = "config.toml"
	ServiceName       = "login-consent"
	ConfigExtension   = ".toml"

	DefaultServiceEndpoint = "http://localhost:3000"

	EnvironmentDev  Environment = "dev"
	EnvironmentTest Environment = "test"
	EnvironmentProd Environment = "prod"

	ConfigPath EnvironmentVariable = "CONFIG_PATH"
)

type (
	Environment         string
	EnvironmentVariable string
)

func (e EnvironmentVariable) String() string {
	return string(e)
}

type LoginConsentConfig struct {
	conf.Version
	Server   ServerConfig   `toml:"server"`
	Services ServicesConfig `toml:"services"`
}

// ServerConfig represents configurable properties for the HTTP server
type ServerConfig struct {
	Environment        Environment   `toml:"env" conf:"default:dev"`
	APIHost            string        `toml:"api_host" conf:"default:0.0.0.0:3000"`
	JagerHost          string        `toml:"jager_host" conf:"http://jaeger:14268/api/traces"`
	JagerEnabled       bool          `toml:"jager_enabled" conf:"default:false"`
	ReadTimeout        time.Duration `toml:"read_timeout" conf:"default:5s"`
	WriteTimeout       time.Duration `toml:"write_timeout" conf:"default:5s"`
	ShutdownTimeout    time.Duration `toml:"shutdown_timeout" conf:"default:5s"`
	LogLocation        string        `toml:"log_location" conf:"default:log"`
	LogLevel           string        `toml:"log_level" conf:"default:debug"`
	EnableAllowAllCORS bool          `toml:"enable_allow_all_cors" conf:"default:false"`
}

// ServicesConfig represents configurable properties for the components of
// the login consent service
type ServicesConfig struct {
	// at present, it is assumed that a single storage provider works for all
	// services. in the future it may make sense to have per-service storage
	// providers.
	StorageProvider string         `toml:"storage"`
	StorageOptions  StorageOptions `toml:"storage_option"`
	ServiceEndpoint string         `toml:"service_endpoint"`

	HydraConfig    HydraConfig    `toml:"hydra,omitempty"`
	ConsentConfig  ConsentConfig  `toml:"consent,omitempty"`
	ChainConfigs   []ChainConfig  `toml:"chains,omitempty"`
	RegistryConfig RegistryConfig `toml:"registry,omitempty"`
}

type StorageOptions struct {
	DBFile        string `toml:"db_file"`
	RedisAddress  string `toml:"redis_address"`
	RedisPassword string `toml:"redis_password"`
}

// BaseServiceConfig represents configurable properties for a specific
// component of the service
type BaseServiceConfig struct {
	Name            string `toml:"name"`
	ServiceEndpoint string `toml:"service_endpoint"`
}

// HydraConfig points at the OIDC provider's admin API.
type HydraConfig struct {
	*BaseServiceConfig
	AdminURL string `toml:"admin_url"`
	// MockTLSTermination adds X-Forwarded-Proto: https to admin calls, for
	// hydra deployments that insist on TLS being terminated upstream.
	MockTLSTermination bool `toml:"mock_tls_termination"`
}

func (h *HydraConfig) IsEmpty() bool {
	if h == nil {
		return true
	}
	return reflect.DeepEqual(h, &HydraConfig{})
}

// ChainConfig describes one Verus PBaaS chain's signing RPC endpoint.
type ChainConfig struct {
	ChainID     string `toml:"chain_id"`
	RPCURL      string `toml:"rpc_url"`
	RPCUser     string `toml:"rpc_user"`
	RPCPassword string `toml:"rpc_password"`
}

// ConsentConfig configures challenge issuance and response verification.
type ConsentConfig struct {
	*BaseServiceConfig
	// NodeIdentity is the identity this service signs challenges as.
	NodeIdentity string `toml:"node_identity"`
	// DefaultChainID selects which configured chain signs and verifies.
	DefaultChainID string `toml:"default_chain_id"`
	// VerifyRedirectURI is where the wallet sends the signed response.
	VerifyRedirectURI string `toml:"verify_redirect_uri"`
	// DefaultScope applies to clients without a registry record, for
	// single-tenant deployments.
	DefaultScope []string `toml:"default_scope"`
	// ConformanceACR fakes ACR values for the OIDC conformance suite.
	ConformanceACR bool `toml:"conformance_acr"`
}

func (c *ConsentConfig) IsEmpty() bool {
	if c == nil {
		return true
	}
	return reflect.DeepEqual(c, &ConsentConfig{})
}

type RegistryConfig struct {
	*BaseServiceConfig
}

func (r *RegistryConfig) IsEmpty() bool {
	if r == nil {
		return true
	}
	return reflect.DeepEqual(r, &RegistryConfig{})
}

// LoadConfig attempts to load a TOML config file from the given path, and
// coerce it into our object model. Before loading, defaults are applied on
// certain properties, which are overwritten if specified in the TOML file.
func LoadConfig(path string) (*LoginConsentConfig, error) {
	// no path, load default config
	defaultConfig := false
	if path == "" {
		logrus.Info("no config path provided, loading default config...")
		defaultConfig = true
	} else if filepath.Ext(path) != ConfigExtension {
		return nil, fmt.Errorf("path<%s> did not match the expected TOML format", path)
	}

	// create the config object
	var config LoginConsentConfig

	// parse and apply defaults
	if err := conf.Parse(os.Args[1:], ServiceName, &config); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(ServiceName, &config)
			if err != nil {
				return nil, errors.Wrap(err, "parsing config")
			}
			fmt.Println(usage)

			return nil, nil

		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(ServiceName, &config)
			if err != nil {
				return nil, errors.Wrap(err, "generating config version")
			}

			fmt.Println(version)
			return nil, nil
		}

		return nil, errors.Wrap(err, "parsing config")
	}

	if defaultConfig {
		config.Services = DefaultServicesConfig()
	} else {
		// load from TOML file
		if _, err := toml.DecodeFile(path, &config); err != nil {
			return nil, errors.Wrapf(err, "could not load config: %s", path)
		}

		// apply defaults if not included in toml file
		if config.Services.ConsentConfig.BaseServiceConfig != nil && config.Services.ConsentConfig.ServiceEndpoint == "" {
			config.Services.ConsentConfig.ServiceEndpoint = config.Services.ServiceEndpoint
		}
	}

	return &config, nil
}

// DefaultServicesConfig is the single-tenant dev setup: bolt storage, a
// local hydra admin endpoint, and the VRSCTEST chain.
func DefaultServicesConfig() ServicesConfig {
	return ServicesConfig{
		StorageProvider: "bolt",
		ServiceEndpoint: DefaultServiceEndpoint,
		HydraConfig: HydraConfig{
			BaseServiceConfig: &BaseServiceConfig{Name: "hydra"},
			AdminURL:          "http://localhost:4445",
		},
		ConsentConfig: ConsentConfig{
			BaseServiceConfig: &BaseServiceConfig{Name: "consent", ServiceEndpoint: DefaultServiceEndpoint},
			DefaultChainID:    "VRSCTEST",
			VerifyRedirectURI: DefaultServiceEndpoint + "/verify",
		},
		ChainConfigs: []ChainConfig{
			{ChainID: "VRSCTEST", RPCURL: "http://localhost:25779"},
		},
		RegistryConfig: RegistryConfig{
			BaseServiceConfig: &BaseServiceConfig{Name: "registry"},
		},
	}
}
