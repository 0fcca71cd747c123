// Package recordings archives call recordings from the voice platform's
// short-lived URLs into our own object storage.
package recordings

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"propertyvoice_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// presignedURLTTL is how long a recording download link stays valid.
const presignedURLTTL = 15 * time.Minute

// Store is the object storage for call recordings.
type Store struct {
	client *minio.Client
	bucket string
}

// NewStore creates a MinIO-backed recording store.
func NewStore(cfg config.StorageConfig) (*Store, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Store{
		client: client,
		bucket: cfg.GetMinioBucketRecordings(),
	}, nil
}

// EnsureBucket creates the recordings bucket if it doesn't exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Upload streams a recording into the bucket and returns the object key.
// Size may be -1 when the source doesn't report a content length.
func (s *Store) Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload recording %s: %w", key, err)
	}
	return key, nil
}

// DownloadURL returns a presigned link for listening to an archived recording.
func (s *Store) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	expiresAt := time.Now().Add(presignedURLTTL)
	reqParams := make(url.Values)
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, presignedURLTTL, reqParams)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate recording download URL: %w", err)
	}
	return presigned.String(), expiresAt, nil
}
