package minio

import "errors"

// Config represents the configuration for the object storage client
type Config struct {
	// Endpoint is the S3-compatible object storage endpoint
	// Examples: "play.min.io", "s3.amazonaws.com", "localhost:9000"
	Endpoint string `mapstructure:"endpoint"`

	// AccessKeyID is the access key for authentication
	AccessKeyID string `mapstructure:"access_key"`

	// SecretAccessKey is the secret key for authentication
	SecretAccessKey string `mapstructure:"secret_key"`

	// Region is the region of the object storage (optional)
	Region string `mapstructure:"region"`

	// UseSSL determines whether to use HTTPS (true) or HTTP (false)
	UseSSL bool `mapstructure:"use_ssl"`

	// Bucket is the bucket holding wardrobe images
	Bucket string `mapstructure:"bucket"`

	// PublicBaseURL is the externally reachable URL prefix for stored objects
	// Example: "https://cdn.closetmind.app"
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return errors.New("minio credentials are required")
	}
	if c.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	return nil
}
