package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
)

// Connector holds the settings of an AWS account and region
type Connector struct {
	Profile string
	Region  string

	client EC2Client
}

// Option is a function that configures the AWS connector
type Option func(*Connector)

// WithProfile sets the AWS profile to use for authentication
func WithProfile(profile string) Option {
	return func(c *Connector) {
		c.Profile = profile
	}
}

// WithRegion sets the AWS region to use for API calls
func WithRegion(region string) Option {
	return func(c *Connector) {
		c.Region = region
	}
}

// WithClient sets the EC2 client instead of loading one from the shared config
func WithClient(client EC2Client) Option {
	return func(c *Connector) {
		c.client = client
	}
}

// NewConnector creates a new AWS connector with the specified options
func NewConnector(opts ...Option) *Connector {
	c := &Connector{}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Variant returns VariantAWS
func (c *Connector) Variant() cr.Variant {
	return cr.VariantAWS
}

// session returns a handle that loads the EC2 client on first use
func (c *Connector) session() *lazy.Value[EC2Client] {
	if c.client != nil {
		return lazy.Ready(c.client)
	}
	return lazy.New(c.loadClient)
}

func (c *Connector) loadClient(ctx context.Context) (EC2Client, error) {
	var awsLoadOpts []func(*config.LoadOptions) error
	if c.Profile != "" {
		awsLoadOpts = append(awsLoadOpts, config.WithSharedConfigProfile(c.Profile))
	}
	if c.Region != "" {
		awsLoadOpts = append(awsLoadOpts, config.WithRegion(c.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, awsLoadOpts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	return ec2.NewFromConfig(awsCfg), nil
}
