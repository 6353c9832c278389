package minio

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Client wraps the MinIO client with additional functionality
type Client struct {
	client *minio.Client
	config *Config
	logger *zap.Logger
}

// NewClient creates a new MinIO client
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("minio: config is required")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("minio: invalid configuration: %w", err)
	}

	// Create MinIO client options
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	}

	// Set region if provided
	if cfg.Region != "" {
		opts.Region = cfg.Region
	}

	// Create MinIO client
	minioClient, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("minio: failed to create client: %w", err)
	}

	client := &Client{
		client: minioClient,
		config: cfg,
		logger: logger,
	}

	// Log successful initialization
	if logger != nil {
		logger.Info("minio client initialized successfully",
			zap.String("endpoint", cfg.Endpoint),
			zap.String("bucket", cfg.Bucket),
			zap.Bool("use_ssl", cfg.UseSSL),
		)
	}

	return client, nil
}

// EnsureBucket creates the configured bucket if it does not already exist
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return fmt.Errorf("minio: failed to check bucket %q: %w", c.config.Bucket, err)
	}
	if exists {
		return nil
	}

	opts := minio.MakeBucketOptions{Region: c.config.Region}
	if err := c.client.MakeBucket(ctx, c.config.Bucket, opts); err != nil {
		return fmt.Errorf("minio: failed to create bucket %q: %w", c.config.Bucket, err)
	}

	if c.logger != nil {
		c.logger.Info("minio bucket created", zap.String("bucket", c.config.Bucket))
	}

	return nil
}

// Ping checks if the MinIO server is accessible by listing buckets
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListBuckets(ctx); err != nil {
		return fmt.Errorf("minio: failed to connect to server: %w", err)
	}
	return nil
}

// GetUnderlyingClient returns the underlying MinIO client
// This is useful for advanced operations not covered by this wrapper
func (c *Client) GetUnderlyingClient() *minio.Client {
	return c.client
}
