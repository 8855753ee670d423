package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCSConfig struct {
	Bucket          string
	CredentialsFile string
}

// GCSClient implements ObjectStorage for Google Cloud Storage.
type GCSClient struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// NewGCSClient uses the credentials file when set, otherwise application default credentials.
func NewGCSClient(ctx context.Context, cfg GCSConfig) (*GCSClient, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket must be provided")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSClient{client: client, bucket: client.Bucket(cfg.Bucket)}, nil
}

func (c *GCSClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	results := make([]ObjectInfo, 0)
	it := c.bucket.Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list failed: %w", err)
		}
		results = append(results, ObjectInfo{Key: attrs.Name, Size: attrs.Size})
	}
	return results, nil
}

func (c *GCSClient) DownloadObject(ctx context.Context, key, destPath string) error {
	reader, err := c.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("gcs open %s failed: %w", key, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed creating %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("gcs download %s failed: %w", key, err)
	}
	return nil
}

func (c *GCSClient) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	w := c.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs upload %s failed: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs upload %s failed: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (c *GCSClient) Close() error {
	return c.client.Close()
}

var _ ObjectStorage = (*GCSClient)(nil)
