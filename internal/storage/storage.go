package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal operations report export and dataset sync need.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// New returns the configured backend, or nil when no provider is set.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "minio", "s3":
		client, err := NewMinioClient(MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gcs":
		client, err := NewGCSClient(ctx, GCSConfig{
			Bucket:          cfg.Bucket,
			CredentialsFile: cfg.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case "local":
		client, err := NewLocalStorage(cfg.Bucket)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ResolveObjectKey joins a prefix and a key without doubling slashes or the prefix.
func ResolveObjectKey(prefix, key string) string {
	prefixTrimmed := strings.Trim(strings.TrimSpace(prefix), "/")
	keyTrimmed := strings.TrimPrefix(strings.TrimSpace(key), "/")

	if prefixTrimmed == "" {
		return keyTrimmed
	}
	if strings.HasPrefix(keyTrimmed, prefixTrimmed+"/") {
		return keyTrimmed
	}
	return prefixTrimmed + "/" + keyTrimmed
}
