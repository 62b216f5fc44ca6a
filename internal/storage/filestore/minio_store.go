package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/docbridge-labs/docbridge-go/internal/platform/objectstore"
	"github.com/minio/minio-go/v7"
)

// MinioStore keeps attachment files in one S3-compatible bucket. Stored paths
// are object keys within that bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg objectstore.Config) (*MinioStore, error) {
	client, err := objectstore.NewMinIOClient(cfg)
	if err != nil {
		return nil, err
	}
	return &MinioStore{client: client, bucket: cfg.BucketAttachments}, nil
}

func NewMinioStoreWithClient(client *minio.Client, bucket string) (*MinioStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (s *MinioStore) FileExists(ctx context.Context, path string) (bool, error) {
	if s == nil || s.client == nil {
		return false, fmt.Errorf("minio store not initialized")
	}
	_, err := s.client.StatObject(ctx, s.bucket, normalizeKey(path), minio.StatObjectOptions{})
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

func (s *MinioStore) GetFile(ctx context.Context, path string) (io.ReadCloser, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("minio store not initialized")
	}
	obj, err := s.client.GetObject(ctx, s.bucket, normalizeKey(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return obj, nil
}

func (s *MinioStore) SaveFile(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("minio store not initialized")
	}
	key := normalizeKey(path)
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, key, body, size, opts); err != nil {
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	return key, nil
}

func normalizeKey(path string) string {
	return strings.TrimLeft(strings.ReplaceAll(path, "\\", "/"), "/")
}
