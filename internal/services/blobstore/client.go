package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rotulo/internal/config"
	"rotulo/internal/services"
)

// Store is the blob upload surface used by submission and sync.
type Store interface {
	// Upload stores a blob at the given object path and returns a
	// download URL for it. Uploading the same path twice overwrites the
	// object, which makes retries safe.
	Upload(ctx context.Context, objectPath string, blob []byte, contentType string) (string, error)
}

// Client is a minio-backed implementation of Store.
type Client struct {
	client        *minio.Client
	bucket        string
	urlExpiry     time.Duration
	uploadTimeout time.Duration
}

// NewClient builds a blob store client from storage configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Storage.Endpoint)
	if endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "blobstore", "new", "storage endpoint is not configured", nil)
	}
	bucket := strings.TrimSpace(cfg.Storage.Bucket)
	if bucket == "" {
		return nil, services.Wrap(services.ErrConfiguration, "blobstore", "new", "storage bucket is not configured", nil)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "blobstore", "new", "build object storage client", err)
	}

	urlExpiry := time.Duration(cfg.Storage.URLExpiryHours) * time.Hour
	if urlExpiry <= 0 {
		urlExpiry = 24 * time.Hour
	}
	uploadTimeout := time.Duration(cfg.Storage.UploadTimeout) * time.Second
	if uploadTimeout <= 0 {
		uploadTimeout = 60 * time.Second
	}

	return &Client{
		client:        client,
		bucket:        bucket,
		urlExpiry:     urlExpiry,
		uploadTimeout: uploadTimeout,
	}, nil
}

// EnsureBucket checks the configured bucket exists, creating it when absent.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return services.Wrap(services.ErrStorage, "blobstore", "ensure-bucket", "check bucket existence", err)
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return services.Wrap(services.ErrStorage, "blobstore", "ensure-bucket",
			fmt.Sprintf("create bucket %s", c.bucket), err)
	}
	return nil
}

// Upload stores the blob under objectPath and returns a presigned URL.
func (c *Client) Upload(ctx context.Context, objectPath string, blob []byte, contentType string) (string, error) {
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return "", services.Wrap(services.ErrValidation, "blobstore", "upload", "object path is required", nil)
	}

	putCtx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	_, err := c.client.PutObject(putCtx, c.bucket, objectPath,
		bytes.NewReader(blob), int64(len(blob)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", classify(err, "upload", fmt.Sprintf("upload %s", objectPath))
	}

	url, err := c.client.PresignedGetObject(ctx, c.bucket, objectPath, c.urlExpiry, nil)
	if err != nil {
		return "", services.Wrap(services.ErrUpload, "blobstore", "upload",
			fmt.Sprintf("presign download URL for %s", objectPath), err)
	}
	return url.String(), nil
}

func classify(err error, operation, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "blobstore", operation, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, "blobstore", operation, message, err)
	}
	return services.Wrap(services.ErrUpload, "blobstore", operation, message, err)
}
