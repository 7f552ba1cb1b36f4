// Package blob stores uploaded image files on the local filesystem or in an
// S3 compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"whatsfresh/pkg/config"
)

// Driver identifies a blob storage backend
type Driver string

const (
	DriverLocal  Driver = "local"
	DriverS3     Driver = "s3"
	DriverMemory Driver = "memory"
)

// ErrExists is returned by Put when the key is already taken
var ErrExists = errors.New("blob already exists")

// Info describes a stored blob
type Info struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}

// Store is the storage backend for image files
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Driver() Driver
}

// New builds the store selected by cfg.Driver
func New(ctx context.Context, cfg *config.BlobConfig) (Store, error) {
	switch Driver(cfg.Driver) {
	case DriverLocal, "":
		return NewLocal(cfg.LocalDir, cfg.MediaURL)
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			PublicURL:       cfg.S3PublicURL,
			KeyPrefix:       cfg.S3KeyPrefix,
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			SessionToken:    cfg.SessionToken,
		})
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Driver)
	}
}

// CleanKey rejects keys that could escape the storage root
func CleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
