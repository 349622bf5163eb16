// Package config loads the backend settings of the CLI.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"dario.cat/mergo"
	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/aws"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/mock"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/openstack"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in the backend field
const (
	BackendOpenStack = "openstack"
	BackendAWS       = "aws"
	BackendMock      = "mock"
)

// Config selects a backend and holds its settings
type Config struct {
	Backend   string           `yaml:"backend" validate:"required,oneof=openstack aws mock"`
	OpenStack *OpenStackConfig `yaml:"openstack,omitempty"`
	AWS       *AWSConfig       `yaml:"aws,omitempty"`
	Mock      *MockConfig      `yaml:"mock,omitempty"`
}

// OpenStackConfig holds the Keystone credentials of a project
type OpenStackConfig struct {
	AuthURL    string `yaml:"authURL" validate:"required,url"`
	Tenant     string `yaml:"tenant" validate:"required"`
	Username   string `yaml:"username" validate:"required"`
	Password   string `yaml:"password" validate:"required"`
	Region     string `yaml:"region,omitempty"`
	DomainName string `yaml:"domainName,omitempty"`
}

// AWSConfig selects the shared config profile and region
type AWSConfig struct {
	Profile string `yaml:"profile,omitempty"`
	Region  string `yaml:"region,omitempty"`
}

// MockConfig lists the items an in-memory backend starts with
type MockConfig struct {
	Images   []string          `yaml:"images,omitempty" validate:"dive,required"`
	Flavors  []string          `yaml:"flavors,omitempty" validate:"dive,required"`
	Networks []string          `yaml:"networks,omitempty" validate:"dive,required"`
	Keypairs map[string]string `yaml:"keypairs,omitempty" validate:"dive,keys,required,endkeys,ssh_public_key"`
}

// Load reads the config file at path, fills unset values from the
// environment and validates the result. An empty path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		var err error
		if cfg, err = ParseFile(path); err != nil {
			return nil, err
		}
	}

	if err := mergo.Merge(cfg, FromEnv(os.Getenv)); err != nil {
		return nil, fmt.Errorf("failed to merge environment: %w", err)
	}
	cfg.keepSelected()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	return cfg, nil
}

// keepSelected drops the sections of the backends that are not selected
func (c *Config) keepSelected() {
	if c.Backend != BackendOpenStack {
		c.OpenStack = nil
	}
	if c.Backend != BackendAWS {
		c.AWS = nil
	}
	if c.Backend != BackendMock {
		c.Mock = nil
	}
}

// LoadEnvFile sets the variables of a .env file that are not already set
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ParseFile decodes the config file at path
func ParseFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseBytes decodes a config from a byte slice
func ParseBytes(data []byte) (*Config, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader decodes a config from an io.Reader. Unknown fields are rejected.
func ParseReader(reader io.Reader) (*Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a config from the standard OpenStack and AWS variables
func FromEnv(getenv func(string) string) *Config {
	cfg := &Config{Backend: getenv("CLOUDKEEPER_BACKEND")}

	osCfg := OpenStackConfig{
		AuthURL:    getenv("OS_AUTH_URL"),
		Tenant:     firstSet(getenv("OS_PROJECT_NAME"), getenv("OS_TENANT_NAME")),
		Username:   getenv("OS_USERNAME"),
		Password:   getenv("OS_PASSWORD"),
		Region:     getenv("OS_REGION_NAME"),
		DomainName: getenv("OS_USER_DOMAIN_NAME"),
	}
	if osCfg != (OpenStackConfig{}) {
		cfg.OpenStack = &osCfg
	}

	awsCfg := AWSConfig{
		Profile: getenv("AWS_PROFILE"),
		Region:  firstSet(getenv("AWS_REGION"), getenv("AWS_DEFAULT_REGION")),
	}
	if awsCfg != (AWSConfig{}) {
		cfg.AWS = &awsCfg
	}

	return cfg
}

// Connector builds the connector of the selected backend. A mock backend gets
// a fresh store seeded with the configured items.
func (c *Config) Connector(ctx context.Context) (cr.Connector, error) {
	switch c.Backend {
	case BackendOpenStack:
		if c.OpenStack == nil {
			return nil, fmt.Errorf("%w: missing openstack section", cr.ErrInvalidInput)
		}
		return &openstack.Connector{
			AuthURL:    c.OpenStack.AuthURL,
			Tenant:     c.OpenStack.Tenant,
			Username:   c.OpenStack.Username,
			Password:   c.OpenStack.Password,
			Region:     c.OpenStack.Region,
			DomainName: c.OpenStack.DomainName,
		}, nil

	case BackendAWS:
		var opts []aws.Option
		if c.AWS != nil {
			opts = append(opts, aws.WithProfile(c.AWS.Profile), aws.WithRegion(c.AWS.Region))
		}
		return aws.NewConnector(opts...), nil

	case BackendMock:
		conn := mock.NewConnector(mock.NewStore())
		if c.Mock != nil {
			seed := mock.Seed{
				Images:   c.Mock.Images,
				Flavors:  c.Mock.Flavors,
				Networks: c.Mock.Networks,
				Keypairs: c.Mock.Keypairs,
			}
			if err := seed.Apply(ctx, conn); err != nil {
				return nil, err
			}
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", cr.ErrInvalidInput, c.Backend)
	}
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
