// Package storage keeps File contents in a MinIO bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rtCamp/next-crm/internal/config"
	"github.com/rtCamp/next-crm/internal/domain/ports"
	"github.com/rtCamp/next-crm/pkg/utils"
)

// ErrDisabled is returned when storage is not configured.
var ErrDisabled = errors.New("storage service not configured")

var _ ports.BlobStore = (*Client)(nil)

// Client wraps MinIO with a single bucket for every File
type Client struct {
	mc      *minio.Client
	bucket  string
	enabled bool
}

// NewClient creates a storage client. An empty endpoint gives a disabled
// client whose operations return ErrDisabled.
func NewClient(cfg *config.Config) (*Client, error) {
	if !cfg.StorageEnabled() {
		return &Client{enabled: false}, nil
	}
	mc, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Client{mc: mc, bucket: cfg.StorageBucket, enabled: true}, nil
}

// Enabled reports whether the storage client is configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

// ObjectKey builds a unique key for a file name; private files live under private/
func ObjectKey(fileName string, private bool) string {
	prefix := "files"
	if private {
		prefix = "private/files"
	}
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return path.Join(prefix, utils.GenerateName(), base)
}

// EnsureBucket creates the bucket if it does not exist (idempotent).
func (c *Client) EnsureBucket(ctx context.Context) error {
	if !c.enabled {
		return ErrDisabled
	}
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{})
}

// Put uploads an object
func (c *Client) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if !c.enabled {
		return ErrDisabled
	}
	if err := c.EnsureBucket(ctx); err != nil {
		return err
	}
	_, err := c.mc.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// Copy duplicates an object server side
func (c *Client) Copy(ctx context.Context, srcKey, dstKey string) error {
	if !c.enabled {
		return ErrDisabled
	}
	_, err := c.mc.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: c.bucket, Object: srcKey},
	)
	return err
}

// Delete removes an object. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if !c.enabled {
		return ErrDisabled
	}
	err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return err
}
