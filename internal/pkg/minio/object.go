package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// UploadInfo represents information about an uploaded object
type UploadInfo struct {
	Bucket string
	Key    string
	ETag   string
	Size   int64
	// URL is the externally reachable address of the uploaded object
	URL string
}

// PutObject uploads an object to the configured bucket and returns
// its public URL
func (c *Client) PutObject(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) (UploadInfo, error) {
	if objectName == "" {
		return UploadInfo{}, fmt.Errorf("minio: object name is required")
	}

	opts := minio.PutObjectOptions{ContentType: contentType}

	info, err := c.client.PutObject(ctx, c.config.Bucket, objectName, reader, objectSize, opts)
	if err != nil {
		return UploadInfo{}, fmt.Errorf("minio: failed to upload object %q: %w", objectName, err)
	}

	if c.logger != nil {
		c.logger.Info("object uploaded successfully",
			zap.String("bucket", c.config.Bucket),
			zap.String("object", objectName),
			zap.Int64("size", info.Size),
		)
	}

	return UploadInfo{
		Bucket: info.Bucket,
		Key:    info.Key,
		ETag:   info.ETag,
		Size:   info.Size,
		URL:    c.ObjectURL(objectName),
	}, nil
}

// RemoveObject removes an object from the configured bucket
func (c *Client) RemoveObject(ctx context.Context, objectName string) error {
	if objectName == "" {
		return fmt.Errorf("minio: object name is required")
	}

	err := c.client.RemoveObject(ctx, c.config.Bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("minio: failed to remove object %q: %w", objectName, err)
	}

	return nil
}

// ObjectURL returns the externally reachable URL for an object. The
// configured public base URL takes precedence over the raw endpoint.
func (c *Client) ObjectURL(objectName string) string {
	if c.config.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.config.PublicBaseURL, "/"), c.config.Bucket, objectName)
	}

	scheme := "http"
	if c.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.config.Endpoint, c.config.Bucket, objectName)
}
